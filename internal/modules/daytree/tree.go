package daytree

import (
	"sort"
	"unicode/utf8"

	"github.com/gratitree/core/internal/models"
)

// PreviewMaxRunes is the cap on reply-target preview text.
const PreviewMaxRunes = 50

// TreeNode is a view-only derived structure: an entry plus its ordered
// replies. Rebuilt from the flat entry set on every snapshot, never persisted.
type TreeNode struct {
	Entry    models.Entry
	Children []*TreeNode
}

// ReplyOption is one choice in the reply-target selector.
type ReplyOption struct {
	ID      string `json:"id"`
	Preview string `json:"preview"`
}

// BuildForest reconstructs the reply forest from a flat entry set.
//
// An entry whose ParentID is nil or references an id absent from the input
// (e.g. a partially loaded set) becomes a root; orphans are demoted silently,
// never treated as an error. Roots sort ascending by CreatedAt with pending
// timestamps first (they count as the zero instant). Children keep the
// insertion order of the input, which callers supply pre-sorted by
// CreatedAt; the builder intentionally does not re-sort them. That root vs.
// child ordering asymmetry is inherited behavior and is kept as-is.
//
// Deterministic and idempotent: the same input always yields a structurally
// identical forest.
func BuildForest(entries []models.Entry) []*TreeNode {
	index := make(map[string]*TreeNode, len(entries))
	nodes := make([]*TreeNode, 0, len(entries))
	for _, e := range entries {
		n := &TreeNode{Entry: e}
		index[e.ID] = n
		nodes = append(nodes, n)
	}

	roots := make([]*TreeNode, 0, len(nodes))
	for _, n := range nodes {
		pid := n.Entry.ParentID
		if pid == nil || *pid == "" {
			roots = append(roots, n)
			continue
		}
		parent, ok := index[*pid]
		if !ok {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].Entry.CreatedAtOrZero().Before(roots[j].Entry.CreatedAtOrZero())
	})
	return roots
}

// Flatten returns the forest's nodes in pre-order: each root followed by its
// subtree, depth first.
func Flatten(forest []*TreeNode) []*TreeNode {
	out := make([]*TreeNode, 0)
	var walk func(*TreeNode)
	walk = func(n *TreeNode) {
		out = append(out, n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range forest {
		walk(r)
	}
	return out
}

// ReplyOptions derives the reply-target selector choices from a forest:
// one option per node in pre-order, with a truncated text preview.
func ReplyOptions(forest []*TreeNode) []ReplyOption {
	flat := Flatten(forest)
	opts := make([]ReplyOption, 0, len(flat))
	for _, n := range flat {
		preview := Preview(n.Entry.Text, PreviewMaxRunes)
		if preview == "" {
			preview = "(no text)"
		}
		opts = append(opts, ReplyOption{ID: n.Entry.ID, Preview: preview})
	}
	return opts
}

// Preview truncates text to max runes, appending an ellipsis when truncated.
func Preview(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + "…"
}
