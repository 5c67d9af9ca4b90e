package daytree

import (
	"strings"
	"testing"
	"time"

	"github.com/gratitree/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryAt(id string, parentID string, sec int) models.Entry {
	e := models.Entry{ID: id, DayID: "2024-06-15", Text: "entry " + id}
	if parentID != "" {
		e.ParentID = &parentID
	}
	if sec >= 0 {
		ts := time.Date(2024, 6, 15, 10, 0, sec, 0, time.UTC)
		e.CreatedAt = &ts
	}
	return e
}

func forestIDs(forest []*TreeNode) []string {
	ids := make([]string, 0, len(forest))
	for _, n := range forest {
		ids = append(ids, n.Entry.ID)
	}
	return ids
}

func TestBuildForestRootsSortedByTimestamp(t *testing.T) {
	entries := []models.Entry{
		entryAt("1", "", 10),
		entryAt("2", "1", 20),
		entryAt("3", "", 5),
	}

	forest := BuildForest(entries)
	require.Len(t, forest, 2)

	// Root 3 (earlier) comes first even though root 1 was inserted first.
	assert.Equal(t, []string{"3", "1"}, forestIDs(forest))

	one := forest[1]
	require.Len(t, one.Children, 1)
	assert.Equal(t, "2", one.Children[0].Entry.ID)
}

func TestBuildForestOrphanBecomesRoot(t *testing.T) {
	entries := []models.Entry{
		entryAt("1", "", 1),
		entryAt("2", "missing", 2),
	}

	forest := BuildForest(entries)
	assert.Equal(t, []string{"1", "2"}, forestIDs(forest))
	assert.Empty(t, forest[1].Children)
}

func TestBuildForestPendingTimestampSortsFirst(t *testing.T) {
	entries := []models.Entry{
		entryAt("1", "", 10),
		entryAt("pending", "", -1),
	}

	forest := BuildForest(entries)
	assert.Equal(t, []string{"pending", "1"}, forestIDs(forest))
}

func TestBuildForestChildrenKeepInsertionOrder(t *testing.T) {
	// Children are not re-sorted by timestamp: the later-inserted child
	// stays second even with an earlier creation time.
	entries := []models.Entry{
		entryAt("root", "", 1),
		entryAt("a", "root", 30),
		entryAt("b", "root", 20),
	}

	forest := BuildForest(entries)
	require.Len(t, forest, 1)
	require.Len(t, forest[0].Children, 2)
	assert.Equal(t, "a", forest[0].Children[0].Entry.ID)
	assert.Equal(t, "b", forest[0].Children[1].Entry.ID)
}

func TestBuildForestDeterministic(t *testing.T) {
	entries := []models.Entry{
		entryAt("1", "", 10),
		entryAt("2", "1", 20),
		entryAt("3", "", 5),
		entryAt("4", "3", 25),
	}

	first := Flatten(BuildForest(entries))
	second := Flatten(BuildForest(entries))

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Entry.ID, second[i].Entry.ID)
	}
}

func sameShape(t *testing.T, a, b []*TreeNode) {
	t.Helper()
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Entry.ID, b[i].Entry.ID)
		sameShape(t, a[i].Children, b[i].Children)
	}
}

func TestBuildForestFlattenRoundTrip(t *testing.T) {
	entries := []models.Entry{
		entryAt("1", "", 10),
		entryAt("2", "1", 20),
		entryAt("3", "", 5),
		entryAt("4", "3", 25),
		entryAt("5", "2", 30),
	}

	forest := BuildForest(entries)

	// Flattening a built forest and rebuilding from the flattened order
	// reproduces the same shape: parent links and ordering survive the
	// round trip.
	flat := Flatten(forest)
	reflattened := make([]models.Entry, 0, len(flat))
	for _, n := range flat {
		reflattened = append(reflattened, n.Entry)
	}

	sameShape(t, forest, BuildForest(reflattened))
}

func TestFlattenPreOrder(t *testing.T) {
	entries := []models.Entry{
		entryAt("1", "", 1),
		entryAt("2", "1", 2),
		entryAt("3", "2", 3),
		entryAt("4", "", 4),
	}

	flat := Flatten(BuildForest(entries))
	ids := make([]string, 0, len(flat))
	for _, n := range flat {
		ids = append(ids, n.Entry.ID)
	}
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids)
}

func TestReplyOptions(t *testing.T) {
	long := strings.Repeat("x", 60)
	entries := []models.Entry{
		{ID: "1", Text: long},
		{ID: "2", Text: ""},
	}
	ts := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	for i := range entries {
		entries[i].CreatedAt = &ts
	}

	opts := ReplyOptions(BuildForest(entries))
	require.Len(t, opts, 2)

	assert.Equal(t, strings.Repeat("x", 50)+"…", opts[0].Preview)
	assert.Equal(t, "(no text)", opts[1].Preview)
}

func TestPreviewRuneSafe(t *testing.T) {
	assert.Equal(t, "héllo", Preview("héllo", 10))
	assert.Equal(t, "hél…", Preview("héllo", 3))
}
