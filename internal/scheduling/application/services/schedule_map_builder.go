package services

import (
	"sort"
	"time"

	prefsDomain "github.com/felixgeelhaar/slotwise/internal/preferences/domain"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
)

// DefaultLookaheadDays is how many calendar days a schedule map covers.
const DefaultLookaheadDays = 14

// obstruction is anything that blocks free time: a task or a break.
type obstruction struct {
	start   time.Time
	end     time.Time
	isBreak bool
}

// ScheduleMapBuilder turns flat task and todo lists into per-day busy and free time.
type ScheduleMapBuilder struct{}

// NewScheduleMapBuilder creates a new ScheduleMapBuilder.
func NewScheduleMapBuilder() *ScheduleMapBuilder {
	return &ScheduleMapBuilder{}
}

// Build lays out lookaheadDays days starting at today's date. Every day gets an
// entry; only work days get free time.
func (b *ScheduleMapBuilder) Build(
	tasks []domain.Task,
	todos []domain.Todo,
	prefs prefsDomain.Preferences,
	today time.Time,
	lookaheadDays int,
) domain.ScheduleMap {
	if lookaheadDays <= 0 {
		lookaheadDays = DefaultLookaheadDays
	}
	dates := domain.LookaheadRange(today, lookaheadDays)

	schedule := make(domain.ScheduleMap, lookaheadDays)
	for _, d := range dates.Days() {
		schedule[domain.DateKey(d)] = domain.NewScheduleDay(d)
	}

	for _, t := range tasks {
		day, ok := schedule.Day(t.ScheduledDate)
		if !ok {
			continue
		}
		day.AddTask(t)
	}

	for _, todo := range todos {
		if todo.DueDate == nil {
			continue
		}
		day, ok := schedule.Day(*todo.DueDate)
		if !ok {
			continue
		}
		day.TodoCount++
	}

	for _, day := range schedule {
		day.SortBusySlots()
		if !prefs.IsWorkDay(day.Date.Weekday()) {
			continue
		}
		day.FreeTimeSlots = b.freeSlots(day, prefs)
	}

	return schedule
}

// freeSlots sweeps the work window, emitting every gap between obstructions.
// Overlapping obstructions are not merged; the cursor only moves forward, so
// free time never overlaps any of them.
func (b *ScheduleMapBuilder) freeSlots(day *domain.ScheduleDay, prefs prefsDomain.Preferences) []domain.FreeSlot {
	workStart, workEnd := prefs.WorkHours.On(day.Date)

	obstructions := make([]obstruction, 0, len(day.BusySlots)+len(prefs.BreakTimes))
	for _, busy := range day.BusySlots {
		obstructions = append(obstructions, obstruction{start: busy.Start, end: busy.End})
	}
	for _, br := range prefs.BreakTimes {
		start, end := br.Range().On(day.Date)
		obstructions = append(obstructions, obstruction{start: start, end: end, isBreak: true})
	}
	sort.SliceStable(obstructions, func(i, j int) bool {
		return obstructions[i].start.Before(obstructions[j].start)
	})

	slots := make([]domain.FreeSlot, 0)
	cursor := workStart
	for _, o := range obstructions {
		start := latest(o.start, workStart)
		end := earliest(o.end, workEnd)
		if !end.After(start) {
			continue
		}
		if start.After(cursor) {
			slots = append(slots, domain.NewFreeSlot(cursor, start))
		}
		if end.After(cursor) {
			cursor = end
		}
	}
	if workEnd.After(cursor) {
		slots = append(slots, domain.NewFreeSlot(cursor, workEnd))
	}

	return slots
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earliest(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
