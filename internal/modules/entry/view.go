package entry

import (
	"time"

	"github.com/gratitree/core/internal/models"
	"github.com/gratitree/core/internal/modules/daytree"
)

// EntryView is the render shape of an entry. Anonymous entries carry the
// fixed placeholder label and never expose the stored display name.
type EntryView struct {
	ID        string     `json:"id"`
	Author    string     `json:"author"`
	Anonymous bool       `json:"anonymous"`
	Text      string     `json:"text"`
	ParentID  *string    `json:"parent_id,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	// Pending marks entries whose server timestamp has not resolved yet.
	Pending bool `json:"pending,omitempty"`
}

// NodeView is a rendered forest node.
type NodeView struct {
	EntryView
	Children []NodeView `json:"children"`
}

// DaySnapshot is the full view of one day's tree.
type DaySnapshot struct {
	DayID        string                `json:"day_id"`
	Open         bool                  `json:"open"`
	LockAt       time.Time             `json:"lock_at"`
	Entries      []EntryView           `json:"entries"`
	Forest       []NodeView            `json:"forest"`
	ReplyOptions []daytree.ReplyOption `json:"reply_options"`
}

// NewEntryView maps a stored entry to its render shape.
func NewEntryView(e models.Entry) EntryView {
	return EntryView{
		ID:        e.ID,
		Author:    e.AuthorLabel(),
		Anonymous: e.Anonymous,
		Text:      e.Text,
		ParentID:  e.ParentID,
		CreatedAt: e.CreatedAt,
		Pending:   e.CreatedAt == nil,
	}
}

// NewEntryViews maps a flat entry slice.
func NewEntryViews(entries []models.Entry) []EntryView {
	out := make([]EntryView, len(entries))
	for i, e := range entries {
		out[i] = NewEntryView(e)
	}
	return out
}

// NewNodeViews maps a built forest to its render shape.
func NewNodeViews(forest []*daytree.TreeNode) []NodeView {
	out := make([]NodeView, len(forest))
	for i, n := range forest {
		out[i] = NodeView{
			EntryView: NewEntryView(n.Entry),
			Children:  NewNodeViews(n.Children),
		}
	}
	return out
}
