package domain

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the ISO-8601 calendar date format used on the wire.
	DateLayout = "2006-01-02"
	// ClockLayout is the 24-hour clock format used on the wire.
	ClockLayout = "15:04"
	// FormattedDateLayout is the human-readable date used in rankings.
	FormattedDateLayout = "Monday, January 2, 2006"
)

// StartOfDay normalizes t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD: %w", s, err)
	}
	return d, nil
}

// DateKey formats t as a YYYY-MM-DD key.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// DateRange is an inclusive span of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from two dates, normalizing both to midnight.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: StartOfDay(start), End: StartOfDay(end)}
}

// LookaheadRange covers days calendar days starting at from.
func LookaheadRange(from time.Time, days int) DateRange {
	start := StartOfDay(from)
	if days < 1 {
		days = 1
	}
	return DateRange{Start: start, End: start.AddDate(0, 0, days-1)}
}

// Contains reports whether t's calendar date lies within the range.
func (r DateRange) Contains(t time.Time) bool {
	d := StartOfDay(t.In(r.Start.Location()))
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days returns every date in the range, in order.
func (r DateRange) Days() []time.Time {
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Len returns the number of calendar days covered.
func (r DateRange) Len() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return len(r.Days())
}

func (r DateRange) String() string {
	return DateKey(r.Start) + ".." + DateKey(r.End)
}
