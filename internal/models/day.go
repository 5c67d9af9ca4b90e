package models

import "time"

// Day is a named bucket of entries plus its lock deadline. The deadline is a
// pure function of the id; OpenUntil is persisted redundantly for the admin
// tooling and external consumers, readers always recompute it.
type Day struct {
	DayID     string    `bson:"_id"        json:"day_id"`
	OpenUntil time.Time `bson:"open_until" json:"open_until"`
}
