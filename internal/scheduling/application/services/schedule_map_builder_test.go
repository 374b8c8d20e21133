package services

import (
	"testing"
	"time"

	prefsDomain "github.com/felixgeelhaar/slotwise/internal/preferences/domain"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-06-01 is a Sunday, 2025-06-02 a Monday.
var sunday = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

func clockAt(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

func taskAt(day time.Time, hour, minute, duration int) domain.Task {
	clock := prefsDomain.NewTimeOfDay(hour, minute)
	return domain.Task{
		ID:              uuid.New(),
		Title:           "task",
		ScheduledDate:   day,
		ScheduledTime:   &clock,
		DurationMinutes: duration,
	}
}

func TestScheduleMapBuilder_CoversLookahead(t *testing.T) {
	b := NewScheduleMapBuilder()

	m := b.Build(nil, nil, prefsDomain.Default(), clockAt(sunday, 15, 0), 14)

	require.Len(t, m, 14)
	days := m.Days()
	assert.Equal(t, sunday, days[0].Date)
	assert.Equal(t, sunday.AddDate(0, 0, 13), days[13].Date)

	assert.Len(t, b.Build(nil, nil, prefsDomain.Default(), sunday, 0), DefaultLookaheadDays)
}

func TestScheduleMapBuilder_EmptyWorkday(t *testing.T) {
	b := NewScheduleMapBuilder()
	monday := sunday.AddDate(0, 0, 1)

	m := b.Build(nil, nil, prefsDomain.Default(), sunday, 14)

	day, ok := m.Day(monday)
	require.True(t, ok)
	require.Len(t, day.FreeTimeSlots, 2)
	assert.Equal(t, clockAt(monday, 9, 0), day.FreeTimeSlots[0].Start)
	assert.Equal(t, clockAt(monday, 12, 0), day.FreeTimeSlots[0].End)
	assert.Equal(t, 180, day.FreeTimeSlots[0].DurationMinutes)
	assert.Equal(t, clockAt(monday, 13, 0), day.FreeTimeSlots[1].Start)
	assert.Equal(t, clockAt(monday, 17, 0), day.FreeTimeSlots[1].End)
	assert.Equal(t, 420, day.FreeMinutes())
}

func TestScheduleMapBuilder_SplitsAroundTaskAndLunch(t *testing.T) {
	b := NewScheduleMapBuilder()
	monday := sunday.AddDate(0, 0, 1)

	m := b.Build([]domain.Task{taskAt(monday, 9, 0, 60)}, nil, prefsDomain.Default(), sunday, 14)

	day, _ := m.Day(monday)
	require.Len(t, day.BusySlots, 1)
	assert.Equal(t, 60, day.TotalTaskDurationMinutes)
	assert.Equal(t, 5.0, day.ProductivityScoreSum)

	require.Len(t, day.FreeTimeSlots, 2)
	assert.Equal(t, clockAt(monday, 10, 0), day.FreeTimeSlots[0].Start)
	assert.Equal(t, clockAt(monday, 12, 0), day.FreeTimeSlots[0].End)
	assert.Equal(t, 120, day.FreeTimeSlots[0].DurationMinutes)
	assert.Equal(t, clockAt(monday, 13, 0), day.FreeTimeSlots[1].Start)
	assert.Equal(t, 240, day.FreeTimeSlots[1].DurationMinutes)
}

func TestScheduleMapBuilder_NonWorkdayHasNoFreeTime(t *testing.T) {
	b := NewScheduleMapBuilder()
	saturday := sunday.AddDate(0, 0, 6)

	tasks := []domain.Task{taskAt(sunday, 10, 0, 60), taskAt(saturday, 11, 0, 30)}
	todos := []domain.Todo{{ID: uuid.New(), DueDate: &saturday}}

	m := b.Build(tasks, todos, prefsDomain.Default(), sunday, 14)

	for _, day := range m.Days() {
		if day.Date.Weekday() == time.Saturday || day.Date.Weekday() == time.Sunday {
			assert.Empty(t, day.FreeTimeSlots, day.Date.String())
		}
	}

	sun, _ := m.Day(sunday)
	assert.Len(t, sun.BusySlots, 1, "busy time is still recorded on non work days")
	sat, _ := m.Day(saturday)
	assert.Equal(t, 1, sat.TodoCount)
	assert.Equal(t, 30, sat.TotalTaskDurationMinutes)
}

func TestScheduleMapBuilder_OverlappingTasksStaySeparate(t *testing.T) {
	b := NewScheduleMapBuilder()
	monday := sunday.AddDate(0, 0, 1)

	tasks := []domain.Task{
		taskAt(monday, 10, 30, 60),
		taskAt(monday, 10, 0, 120),
		taskAt(monday, 14, 0, 30),
	}

	m := b.Build(tasks, nil, prefsDomain.Default(), sunday, 14)
	day, _ := m.Day(monday)

	require.Len(t, day.BusySlots, 3)
	assert.Equal(t, clockAt(monday, 10, 0), day.BusySlots[0].Start, "sorted by start")
	assert.Equal(t, 210, day.TotalTaskDurationMinutes)

	require.Len(t, day.FreeTimeSlots, 3)
	assert.Equal(t, domain.NewFreeSlot(clockAt(monday, 9, 0), clockAt(monday, 10, 0)), day.FreeTimeSlots[0])
	assert.Equal(t, domain.NewFreeSlot(clockAt(monday, 13, 0), clockAt(monday, 14, 0)), day.FreeTimeSlots[1])
	assert.Equal(t, domain.NewFreeSlot(clockAt(monday, 14, 30), clockAt(monday, 17, 0)), day.FreeTimeSlots[2])
}

func TestScheduleMapBuilder_ClipsToWorkHours(t *testing.T) {
	b := NewScheduleMapBuilder()
	monday := sunday.AddDate(0, 0, 1)

	prefs := prefsDomain.Default()
	prefs.BreakTimes = append(prefs.BreakTimes, prefsDomain.BreakTime{
		Start: prefsDomain.NewTimeOfDay(18, 0),
		End:   prefsDomain.NewTimeOfDay(19, 0),
		Label: "Gym",
	})

	tasks := []domain.Task{
		taskAt(monday, 8, 0, 90),   // straddles the start of the day
		taskAt(monday, 16, 30, 60), // straddles the end
		taskAt(monday, 6, 0, 30),   // entirely before work
	}

	m := b.Build(tasks, nil, prefs, sunday, 14)
	day, _ := m.Day(monday)

	require.Len(t, day.FreeTimeSlots, 2)
	assert.Equal(t, clockAt(monday, 9, 30), day.FreeTimeSlots[0].Start)
	assert.Equal(t, clockAt(monday, 12, 0), day.FreeTimeSlots[0].End)
	assert.Equal(t, clockAt(monday, 13, 0), day.FreeTimeSlots[1].Start)
	assert.Equal(t, clockAt(monday, 16, 30), day.FreeTimeSlots[1].End)
}

func TestScheduleMapBuilder_FullyBookedDay(t *testing.T) {
	b := NewScheduleMapBuilder()
	monday := sunday.AddDate(0, 0, 1)

	m := b.Build([]domain.Task{taskAt(monday, 9, 0, 8*60)}, nil, prefsDomain.Default(), sunday, 14)
	day, _ := m.Day(monday)

	assert.Empty(t, day.FreeTimeSlots)
}

func TestScheduleMapBuilder_IgnoresOutOfRangeInputs(t *testing.T) {
	b := NewScheduleMapBuilder()
	past := sunday.AddDate(0, 0, -1)
	far := sunday.AddDate(0, 0, 30)

	tasks := []domain.Task{taskAt(past, 10, 0, 60), taskAt(far, 10, 0, 60)}
	todos := []domain.Todo{{DueDate: &past}, {DueDate: &far}, {DueDate: nil}}

	m := b.Build(tasks, todos, prefsDomain.Default(), sunday, 14)

	for _, day := range m.Days() {
		assert.Empty(t, day.BusySlots)
		assert.Zero(t, day.TodoCount)
	}
}

func TestScheduleMapBuilder_FreeTimeNeverOverlapsObstructions(t *testing.T) {
	b := NewScheduleMapBuilder()
	prefs := prefsDomain.Default()
	prefs.BreakTimes = append(prefs.BreakTimes, prefsDomain.BreakTime{
		Start: prefsDomain.NewTimeOfDay(15, 0),
		End:   prefsDomain.NewTimeOfDay(15, 15),
		Label: "Coffee",
	})

	var tasks []domain.Task
	for i := 0; i < 14; i++ {
		day := sunday.AddDate(0, 0, i)
		tasks = append(tasks,
			taskAt(day, 8+i%5, (i*7)%60, 30+i*10),
			taskAt(day, 11+i%3, (i*13)%60, 45),
			taskAt(day, 16, 45, 20+i),
		)
	}

	m := b.Build(tasks, nil, prefs, sunday, 14)

	for _, day := range m.Days() {
		workStart, workEnd := prefs.WorkHours.On(day.Date)
		for _, free := range day.FreeTimeSlots {
			assert.False(t, free.Start.Before(workStart), "free slot starts before work")
			assert.False(t, free.End.After(workEnd), "free slot ends after work")
			assert.True(t, free.End.After(free.Start))
			for _, busy := range day.BusySlots {
				assert.False(t, free.Overlaps(busy.Start, busy.End), "free slot overlaps busy slot on %s", day.Date)
			}
			for _, br := range prefs.BreakTimes {
				start, end := br.Range().On(day.Date)
				assert.False(t, free.Overlaps(start, end), "free slot overlaps break on %s", day.Date)
			}
		}
	}
}

func TestScheduleMapBuilder_Idempotent(t *testing.T) {
	b := NewScheduleMapBuilder()
	monday := sunday.AddDate(0, 0, 1)
	tasks := []domain.Task{taskAt(monday, 9, 0, 60), taskAt(monday, 14, 0, 90)}
	todos := []domain.Todo{{ID: uuid.New(), DueDate: &monday}}

	first := b.Build(tasks, todos, prefsDomain.Default(), sunday, 14)
	second := b.Build(tasks, todos, prefsDomain.Default(), sunday, 14)

	assert.Equal(t, first, second)
}
