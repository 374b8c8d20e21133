// Package domain holds the user scheduling preferences model and the pure
// predicates the scheduler uses to judge a point in time against them.
package domain

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrInvalidPreferences is returned when a preference record fails validation.
var ErrInvalidPreferences = errors.New("invalid preferences")

// BreakTime is a recurring daily break inside work hours.
type BreakTime struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
	Label string    `json:"label"`
}

// Range returns the break as a TimeRange.
func (b BreakTime) Range() TimeRange {
	return TimeRange{Start: b.Start, End: b.End}
}

// TaskPreferences tune how tasks are laid out in a day.
type TaskPreferences struct {
	PreferredDuration    int `json:"preferredDuration"`
	MinBreakBetweenTasks int `json:"minBreakBetweenTasks"`
	MaxConsecutiveTasks  int `json:"maxConsecutiveTasks"`
}

// Notifications holds reminder settings. The scheduler carries them but does not act on them.
type Notifications struct {
	Enabled               bool `json:"enabled"`
	ReminderMinutesBefore int  `json:"reminderMinutesBefore"`
	DailyDigest           bool `json:"dailyDigest"`
}

// Preferences is a user's working pattern.
type Preferences struct {
	WorkHours       TimeRange       `json:"workHours"`
	WorkDays        []time.Weekday  `json:"workDays"`
	ProductiveHours TimeRange       `json:"productiveHours"`
	BreakTimes      []BreakTime     `json:"breakTimes"`
	TaskPreferences TaskPreferences `json:"taskPreferences"`
	Notifications   Notifications   `json:"notifications"`
}

// Default returns the preferences used when a user has none stored.
func Default() Preferences {
	return Preferences{
		WorkHours: TimeRange{Start: NewTimeOfDay(9, 0), End: NewTimeOfDay(17, 0)},
		WorkDays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		ProductiveHours: TimeRange{Start: NewTimeOfDay(9, 0), End: NewTimeOfDay(12, 0)},
		BreakTimes: []BreakTime{
			{Start: NewTimeOfDay(12, 0), End: NewTimeOfDay(13, 0), Label: "Lunch"},
		},
		TaskPreferences: TaskPreferences{
			PreferredDuration:    60,
			MinBreakBetweenTasks: 15,
			MaxConsecutiveTasks:  3,
		},
		Notifications: Notifications{
			Enabled:               true,
			ReminderMinutesBefore: 15,
		},
	}
}

// Validate checks the record's shape. It does not require breaks to sit inside
// work hours; breaks outside them are simply ignored by the scheduler.
func (p Preferences) Validate() error {
	if !p.WorkHours.IsValid() {
		return fmt.Errorf("%w: work hours %s-%s", ErrInvalidPreferences, p.WorkHours.Start, p.WorkHours.End)
	}
	if !p.ProductiveHours.IsValid() {
		return fmt.Errorf("%w: productive hours %s-%s", ErrInvalidPreferences, p.ProductiveHours.Start, p.ProductiveHours.End)
	}
	if len(p.WorkDays) == 0 {
		return fmt.Errorf("%w: no work days", ErrInvalidPreferences)
	}
	for _, d := range p.WorkDays {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("%w: work day %d out of range", ErrInvalidPreferences, d)
		}
	}
	for _, b := range p.BreakTimes {
		if !b.Range().IsValid() {
			return fmt.Errorf("%w: break %q %s-%s", ErrInvalidPreferences, b.Label, b.Start, b.End)
		}
	}
	tp := p.TaskPreferences
	if tp.PreferredDuration < 0 || tp.MinBreakBetweenTasks < 0 || tp.MaxConsecutiveTasks < 0 {
		return fmt.Errorf("%w: negative task preference", ErrInvalidPreferences)
	}
	return nil
}

// IsWorkDay reports whether the weekday is configured as a work day.
func (p Preferences) IsWorkDay(d time.Weekday) bool {
	return slices.Contains(p.WorkDays, d)
}

// Clone returns a deep copy so callers can mutate slices freely.
func (p Preferences) Clone() Preferences {
	c := p
	c.WorkDays = slices.Clone(p.WorkDays)
	c.BreakTimes = slices.Clone(p.BreakTimes)
	return c
}

// TaskPreferencesPatch carries optional task preference updates.
type TaskPreferencesPatch struct {
	PreferredDuration    *int `json:"preferredDuration,omitempty"`
	MinBreakBetweenTasks *int `json:"minBreakBetweenTasks,omitempty"`
	MaxConsecutiveTasks  *int `json:"maxConsecutiveTasks,omitempty"`
}

// Patch is a partial preferences update. Nil fields are left unchanged.
type Patch struct {
	WorkHours       *TimeRange            `json:"workHours,omitempty"`
	WorkDays        []time.Weekday        `json:"workDays,omitempty"`
	ProductiveHours *TimeRange            `json:"productiveHours,omitempty"`
	BreakTimes      *[]BreakTime          `json:"breakTimes,omitempty"`
	TaskPreferences *TaskPreferencesPatch `json:"taskPreferences,omitempty"`
	Notifications   *Notifications        `json:"notifications,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.WorkHours == nil && p.WorkDays == nil && p.ProductiveHours == nil &&
		p.BreakTimes == nil && p.TaskPreferences == nil && p.Notifications == nil
}

// ApplyTo merges the patch into a copy of current.
func (p Patch) ApplyTo(current Preferences) Preferences {
	merged := current.Clone()
	if p.WorkHours != nil {
		merged.WorkHours = *p.WorkHours
	}
	if p.WorkDays != nil {
		merged.WorkDays = slices.Clone(p.WorkDays)
	}
	if p.ProductiveHours != nil {
		merged.ProductiveHours = *p.ProductiveHours
	}
	if p.BreakTimes != nil {
		merged.BreakTimes = slices.Clone(*p.BreakTimes)
	}
	if tp := p.TaskPreferences; tp != nil {
		if tp.PreferredDuration != nil {
			merged.TaskPreferences.PreferredDuration = *tp.PreferredDuration
		}
		if tp.MinBreakBetweenTasks != nil {
			merged.TaskPreferences.MinBreakBetweenTasks = *tp.MinBreakBetweenTasks
		}
		if tp.MaxConsecutiveTasks != nil {
			merged.TaskPreferences.MaxConsecutiveTasks = *tp.MaxConsecutiveTasks
		}
	}
	if p.Notifications != nil {
		merged.Notifications = *p.Notifications
	}
	return merged
}
