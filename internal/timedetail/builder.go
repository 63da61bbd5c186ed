// Package timedetail computes the calendar snapshot stored with each note.
package timedetail

import (
	"time"

	"github.com/starford/lifenote/internal/models"
)

// weekMillis is the length of one week in milliseconds.
const weekMillis int64 = 7 * 24 * 60 * 60 * 1000

// Build returns the snapshot of t, read in t's own location.
//
// Week is ceil((t - Jan 1 00:00) / 7 days). This is an ordinal week count and
// deliberately not the ISO-8601 week number.
func Build(t time.Time) models.TimeDetails {
	return models.TimeDetails{
		Year:      t.Year(),
		Month:     int(t.Month()),
		Week:      Week(t),
		Date:      t.Day(),
		DayOfWeek: int(t.Weekday()),
		Hour:      t.Hour(),
		Minute:    t.Minute(),
		Timestamp: t.UnixMilli(),
	}
}

// Week returns the ordinal week of t within its year.
func Week(t time.Time) int {
	startOfYear := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	elapsed := t.UnixMilli() - startOfYear.UnixMilli()
	return int((elapsed + weekMillis - 1) / weekMillis)
}

// Clock returns the current instant in a fixed location.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock returns a Clock for loc; a nil loc means time.Local.
func NewClock(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.Local
	}
	return &Clock{loc: loc, now: time.Now}
}

// FixedClock always returns t. Used by tests and replay tooling.
func FixedClock(t time.Time) *Clock {
	return &Clock{loc: t.Location(), now: func() time.Time { return t }}
}

// Now returns the current instant in the clock's location.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Year returns the current calendar year in the clock's location.
func (c *Clock) Year() int {
	return c.Now().Year()
}
