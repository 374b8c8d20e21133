package domain

import (
	"sort"
	"time"
)

// BusySlot is a span of a day occupied by a task.
type BusySlot struct {
	Start             time.Time
	End               time.Time
	Title             string
	DurationMinutes   int
	ProductivityScore float64
}

// FreeSlot is a gap inside work hours with no task or break.
type FreeSlot struct {
	Start           time.Time
	End             time.Time
	DurationMinutes int
}

// NewFreeSlot builds a free slot and derives its length.
func NewFreeSlot(start, end time.Time) FreeSlot {
	return FreeSlot{
		Start:           start,
		End:             end,
		DurationMinutes: int(end.Sub(start).Minutes()),
	}
}

// Duration returns the slot length.
func (s FreeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Overlaps reports whether the slot intersects [start, end).
func (s FreeSlot) Overlaps(start, end time.Time) bool {
	return s.Start.Before(end) && s.End.After(start)
}

// ScheduleDay is the derived load picture of a single calendar date.
// It is rebuilt on every scheduling call and never persisted.
type ScheduleDay struct {
	Date                     time.Time
	BusySlots                []BusySlot
	TotalTaskDurationMinutes int
	ProductivityScoreSum     float64
	TodoCount                int
	FreeTimeSlots            []FreeSlot
}

// NewScheduleDay creates an empty day.
func NewScheduleDay(date time.Time) *ScheduleDay {
	return &ScheduleDay{
		Date:          StartOfDay(date),
		BusySlots:     []BusySlot{},
		FreeTimeSlots: []FreeSlot{},
	}
}

// AddTask records a task as a busy slot and accumulates the day's load.
func (d *ScheduleDay) AddTask(t Task) {
	score := t.EffectiveProductivityScore()
	d.BusySlots = append(d.BusySlots, BusySlot{
		Start:             t.StartTime(),
		End:               t.EndTime(),
		Title:             t.Title,
		DurationMinutes:   t.EffectiveDuration(),
		ProductivityScore: score,
	})
	d.TotalTaskDurationMinutes += t.EffectiveDuration()
	d.ProductivityScoreSum += score
}

// SortBusySlots orders busy slots by start time, keeping overlaps as-is.
func (d *ScheduleDay) SortBusySlots() {
	sort.SliceStable(d.BusySlots, func(i, j int) bool {
		return d.BusySlots[i].Start.Before(d.BusySlots[j].Start)
	})
}

// FreeMinutes sums the day's free time.
func (d *ScheduleDay) FreeMinutes() int {
	total := 0
	for _, s := range d.FreeTimeSlots {
		total += s.DurationMinutes
	}
	return total
}

// ScheduleMap indexes schedule days by their YYYY-MM-DD key.
type ScheduleMap map[string]*ScheduleDay

// Day returns the schedule day for t's date, if it is in the map.
func (m ScheduleMap) Day(t time.Time) (*ScheduleDay, bool) {
	d, ok := m[DateKey(t)]
	return d, ok
}

// Days returns the map's days in date order.
func (m ScheduleMap) Days() []*ScheduleDay {
	days := make([]*ScheduleDay, 0, len(m))
	for _, d := range m {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
	return days
}
