package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimeOfDay is returned when a clock value is not a valid 24-hour HH:MM string.
var ErrInvalidTimeOfDay = errors.New("time of day must be HH:MM (24-hour)")

// TimeOfDay is a wall-clock time stored as minutes since midnight.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from an hour and minute.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses a 24-hour "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return NewTimeOfDay(t.Hour(), t.Minute()), nil
}

// MustParseTimeOfDay is like ParseTimeOfDay but panics on error.
func MustParseTimeOfDay(s string) TimeOfDay {
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return tod
}

// ClockOf returns the time of day of an instant, truncated to the minute.
func ClockOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute())
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// IsValid reports whether the value lies within a single day.
func (t TimeOfDay) IsValid() bool {
	return t >= 0 && t < 24*60
}

// On anchors the time of day to the calendar date of d, in d's location.
func (t TimeOfDay) On(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, d.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// MarshalJSON encodes the value as "HH:MM".
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes an "HH:MM" string.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimeOfDay, string(data))
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TimeRange is a daily window between two clock times.
type TimeRange struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// NewTimeRange parses a range from two "HH:MM" strings.
func NewTimeRange(start, end string) (TimeRange, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return TimeRange{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return TimeRange{}, err
	}
	return TimeRange{Start: s, End: e}, nil
}

// IsValid reports whether the range is non-empty and within a day.
func (r TimeRange) IsValid() bool {
	return r.Start.IsValid() && r.End.IsValid() && r.Start < r.End
}

// Contains reports whether t's clock falls within the range, bounds inclusive.
func (r TimeRange) Contains(t time.Time) bool {
	start := r.Start.On(t)
	end := r.End.On(t)
	return !t.Before(start) && !t.After(end)
}

// On anchors the range to a calendar date.
func (r TimeRange) On(d time.Time) (time.Time, time.Time) {
	return r.Start.On(d), r.End.On(d)
}

// Minutes returns the length of the range.
func (r TimeRange) Minutes() int {
	return int(r.End - r.Start)
}
