package models

import "time"

// AnonymousLabel replaces the display name whenever an entry is anonymous.
const AnonymousLabel = "Anonymous"

// Entry is one gratitude post, scoped to exactly one day.
// Entries are append-only: never mutated or deleted after creation.
type Entry struct {
	ID          string     `bson:"_id"                    json:"id"`
	DayID       string     `bson:"day_id"                 json:"day_id"`
	AuthorID    string     `bson:"author_id"              json:"author_id"`
	DisplayName *string    `bson:"display_name,omitempty" json:"display_name,omitempty"`
	Anonymous   bool       `bson:"anonymous"              json:"anonymous"`
	Text        string     `bson:"text"                   json:"text"`
	ParentID    *string    `bson:"parent_id,omitempty"    json:"parent_id,omitempty"`
	// CreatedAt is assigned by the store at insert time. A nil value is the
	// "pending" sentinel and sorts as the zero instant.
	CreatedAt *time.Time `bson:"created_at,omitempty" json:"created_at,omitempty"`
}

// AuthorLabel resolves the name to render for this entry. Anonymous entries
// always get the fixed placeholder, regardless of DisplayName.
func (e *Entry) AuthorLabel() string {
	if e.Anonymous {
		return AnonymousLabel
	}
	if e.DisplayName != nil && *e.DisplayName != "" {
		return *e.DisplayName
	}
	return AnonymousLabel
}

// CreatedAtOrZero returns the creation instant, or the zero time while the
// server timestamp is still pending.
func (e *Entry) CreatedAtOrZero() time.Time {
	if e.CreatedAt == nil {
		return time.Time{}
	}
	return *e.CreatedAt
}
