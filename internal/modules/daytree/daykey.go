// Package daytree holds the GratiTree logic core: day-key and lock-instant
// calculation in the fixed reference timezone, the access-window check, and
// forest construction over a day's flat entry set. Everything here is pure;
// storage, transport and auth live in the surrounding modules.
package daytree

import (
	"regexp"
	"time"
	// The day boundary must resolve America/Denver even on hosts without a
	// system tz database.
	_ "time/tzdata"
)

// ReferenceTimezone is the fixed timezone for all day-boundary computations.
// Every user shares the same day boundary regardless of locale.
const ReferenceTimezone = "America/Denver"

const dayIDLayout = "2006-01-02"

var dayIDPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var refLocation = func() *time.Location {
	loc, err := time.LoadLocation(ReferenceTimezone)
	if err != nil {
		panic("daytree: load reference timezone: " + err.Error())
	}
	return loc
}()

// Location returns the reference timezone location.
func Location() *time.Location { return refLocation }

// ValidDayID reports whether s is a well-formed YYYY-MM-DD day id.
func ValidDayID(s string) bool {
	if !dayIDPattern.MatchString(s) {
		return false
	}
	_, err := time.ParseInLocation(dayIDLayout, s, refLocation)
	return err == nil
}

// DayKey formats the instant's calendar date in the reference timezone as
// YYYY-MM-DD. Two instants on the same reference-timezone date yield the
// same key no matter the caller's locale.
func DayKey(instant time.Time) string {
	return instant.In(refLocation).Format(dayIDLayout)
}

// LockInstant returns the absolute instant the day's tree locks: local
// midnight at the start of the next calendar day in the reference timezone.
// time.Date resolves the actual UTC offset at that wall-clock instant, so
// DST transitions are handled without a fixed-offset constant.
//
// Malformed day ids are a contract violation; callers validate with
// ValidDayID first. A malformed id yields the zero instant (always locked).
func LockInstant(dayID string) time.Time {
	day, err := time.ParseInLocation(dayIDLayout, dayID, refLocation)
	if err != nil {
		return time.Time{}
	}
	return time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, refLocation)
}

// IsOpen reports whether the day's tree still accepts entries at the given
// instant. Pure and lock-free; callers re-evaluate per request since "now"
// advances and no lock event is pushed.
func IsOpen(dayID string, now time.Time) bool {
	return now.Before(LockInstant(dayID))
}

// DayOption is one choice in the day picker.
type DayOption struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	IsToday bool   `json:"is_today"`
}

// DayOptions lists the most recent n days, newest first, labelled "Today"
// for the current day and "Mon, Jan 2" otherwise.
func DayOptions(now time.Time, n int) []DayOption {
	local := now.In(refLocation)
	opts := make([]DayOption, 0, n)
	for i := 0; i < n; i++ {
		d := local.AddDate(0, 0, -i)
		opt := DayOption{Key: DayKey(d), IsToday: i == 0}
		if opt.IsToday {
			opt.Label = "Today"
		} else {
			opt.Label = d.Format("Mon, Jan 2")
		}
		opts = append(opts, opt)
	}
	return opts
}

// DayLabel renders the picker label for a day id: "Today" for the current
// reference-timezone day, "Mon, Jan 2" otherwise. Malformed ids come back
// unchanged.
func DayLabel(dayID string, now time.Time) string {
	if DayKey(now) == dayID {
		return "Today"
	}
	day, err := time.ParseInLocation(dayIDLayout, dayID, refLocation)
	if err != nil {
		return dayID
	}
	return day.Format("Mon, Jan 2")
}

// UpcomingDayIDs lists the day ids for today plus the following n-1 days,
// used by admin provisioning.
func UpcomingDayIDs(now time.Time, n int) []string {
	local := now.In(refLocation)
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, DayKey(local.AddDate(0, 0, i)))
	}
	return ids
}
