package domain

import (
	"testing"
	"time"

	prefsDomain "github.com/felixgeelhaar/slotwise/internal/preferences/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTask_Defaults(t *testing.T) {
	task := Task{ID: uuid.New(), Title: "Write report", ScheduledDate: date(2025, time.June, 3)}

	assert.Equal(t, 60, task.EffectiveDuration())
	assert.Equal(t, 3, task.EffectiveDifficulty())
	assert.Equal(t, 5.0, task.EffectiveProductivityScore())
	assert.Equal(t, time.Date(2025, time.June, 3, 9, 0, 0, 0, time.UTC), task.StartTime())
	assert.Equal(t, time.Date(2025, time.June, 3, 10, 0, 0, 0, time.UTC), task.EndTime())
}

func TestTask_ScheduledValues(t *testing.T) {
	clock := prefsDomain.NewTimeOfDay(14, 30)
	score := 7.5
	task := Task{
		ScheduledDate:     date(2025, time.June, 3),
		ScheduledTime:     &clock,
		DurationMinutes:   45,
		Difficulty:        5,
		ProductivityScore: &score,
	}

	assert.Equal(t, 45, task.EffectiveDuration())
	assert.Equal(t, 5, task.EffectiveDifficulty())
	assert.Equal(t, 7.5, task.EffectiveProductivityScore())
	assert.Equal(t, time.Date(2025, time.June, 3, 15, 15, 0, 0, time.UTC), task.EndTime())
}

func TestTask_EffectiveDurationCapped(t *testing.T) {
	task := Task{ScheduledDate: date(2025, time.June, 3), DurationMinutes: 200000000}

	assert.Equal(t, MaxTaskDurationMinutes, task.EffectiveDuration())
	assert.Equal(t, date(2025, time.June, 4).Add(9*time.Hour), task.EndTime())
}

func TestTodo_CompletedSubtasks(t *testing.T) {
	todo := Todo{Subtasks: []Subtask{{Completed: true}, {Completed: false}, {Completed: true}}}
	assert.Equal(t, 2, todo.CompletedSubtasks())
}

func TestDateRange(t *testing.T) {
	r := NewDateRange(time.Date(2025, time.June, 1, 15, 0, 0, 0, time.UTC), date(2025, time.June, 7))

	assert.Equal(t, 7, r.Len())
	assert.True(t, r.Contains(time.Date(2025, time.June, 7, 23, 59, 0, 0, time.UTC)))
	assert.False(t, r.Contains(date(2025, time.June, 8)))
	assert.Equal(t, "2025-06-01..2025-06-07", r.String())

	la := LookaheadRange(time.Date(2025, time.June, 2, 11, 0, 0, 0, time.UTC), 14)
	assert.Equal(t, date(2025, time.June, 2), la.Start)
	assert.Equal(t, date(2025, time.June, 15), la.End)

	assert.Equal(t, 0, NewDateRange(date(2025, time.June, 7), date(2025, time.June, 1)).Len())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-03", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.June, 3), d)

	_, err = ParseDate("06/03/2025", time.UTC)
	assert.Error(t, err)
}

func TestNewRankedDay(t *testing.T) {
	clock := prefsDomain.NewTimeOfDay(9, 0)
	tasks := []Task{
		{ID: uuid.New(), Title: "a", DurationMinutes: 120, Difficulty: 4, ScheduledTime: &clock},
		{ID: uuid.New(), Title: "b", DurationMinutes: 60, Difficulty: 5},
		{ID: uuid.New(), Title: "c", DurationMinutes: 60, Difficulty: 3},
	}

	day := NewRankedDay(date(2025, time.June, 3), tasks)

	assert.Equal(t, "2025-06-03", day.Date)
	assert.Equal(t, "Tuesday, June 3, 2025", day.FormattedDate)
	assert.Equal(t, 3, day.TaskCount)
	assert.Equal(t, 240, day.TotalDurationMinutes)
	assert.Equal(t, 4.0, day.AverageDifficulty)
	assert.Equal(t, 5, day.MaxDifficulty)
	assert.Equal(t, 13.5, day.BusynessScore)
	require.Len(t, day.Tasks, 3)
	assert.Equal(t, "09:00", day.Tasks[0].Time)
	assert.Empty(t, day.Tasks[1].Time)
}

func TestNewRankedDay_Empty(t *testing.T) {
	day := NewRankedDay(date(2025, time.June, 1), nil)
	assert.Equal(t, 0, day.TaskCount)
	assert.Equal(t, 0.0, day.AverageDifficulty)
	assert.Equal(t, 0, day.MaxDifficulty)
	assert.Equal(t, 0.0, day.BusynessScore)
	assert.NotNil(t, day.Tasks)
}

func TestBusynessScore_CountComponentCapped(t *testing.T) {
	// 30 tasks contribute at most 10 for their count.
	assert.Equal(t, 30.0+6+10, BusynessScore(30*60, 3, 30))
	assert.Equal(t, 1.2, BusynessScore(42, 0, 1))
}

func TestBusiestAndLeastBusyDay(t *testing.T) {
	_, ok := BusiestDay(nil)
	assert.False(t, ok)
	_, ok = LeastBusyDay(nil)
	assert.False(t, ok)

	ranked := []RankedDay{{Date: "a", BusynessScore: 9}, {Date: "b", BusynessScore: 4}, {Date: "c", BusynessScore: 2}}
	busiest, _ := BusiestDay(ranked)
	least, _ := LeastBusyDay(ranked)
	assert.Equal(t, "a", busiest.Date)
	assert.Equal(t, "c", least.Date)
}

func TestFallbackSuggestion(t *testing.T) {
	now := time.Date(2025, time.June, 2, 16, 45, 0, 0, time.UTC)
	s := FallbackSuggestion(now, 90)

	require.NotNil(t, s.BestSlot)
	assert.Equal(t, "2025-06-03", s.BestSlot.Date)
	assert.Equal(t, "10:00", s.BestSlot.StartTime)
	assert.Equal(t, "11:30", s.BestSlot.EndTime)
	assert.Equal(t, 50.0, s.BestSlot.Score)
	assert.True(t, s.IsFallback)
	assert.True(t, s.HasConflicts)
	assert.Empty(t, s.Alternatives)
}

func TestScheduleMap_Days(t *testing.T) {
	m := ScheduleMap{}
	for _, d := range []time.Time{date(2025, time.June, 3), date(2025, time.June, 1), date(2025, time.June, 2)} {
		m[DateKey(d)] = NewScheduleDay(d)
	}

	days := m.Days()
	require.Len(t, days, 3)
	assert.Equal(t, date(2025, time.June, 1), days[0].Date)
	assert.Equal(t, date(2025, time.June, 3), days[2].Date)

	d, ok := m.Day(time.Date(2025, time.June, 2, 13, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, date(2025, time.June, 2), d.Date)
}
