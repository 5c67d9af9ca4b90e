package entry

import "errors"

const (
	// MaxEntriesPerDay caps one user's entries under a single day.
	MaxEntriesPerDay = 3
	// MaxTextRunes caps the entry text length.
	MaxTextRunes = 120
)

// Validation failures, in the order the submission pipeline applies them.
var (
	ErrTextRequired  = errors.New("entry text is required")
	ErrTextTooLong   = errors.New("entry must be 120 characters or less")
	ErrDayLocked     = errors.New("this day's tree is locked")
	ErrQuotaExceeded = errors.New("you've reached the limit of 3 entries for today")
)

// SubmitDTO is the request body for creating an entry.
type SubmitDTO struct {
	Text        string  `json:"text"`
	DisplayName string  `json:"display_name"`
	Anonymous   bool    `json:"anonymous"`
	ParentID    *string `json:"parent_id"`
}

// QuotaInfo reports a user's remaining allowance under a day.
type QuotaInfo struct {
	DayID   string `json:"day_id"`
	Used    int64  `json:"used"`
	Max     int64  `json:"max"`
	AtLimit bool   `json:"at_limit"`
	DayOpen bool   `json:"day_open"`
}
