package domain

import (
	"time"

	prefsDomain "github.com/felixgeelhaar/slotwise/internal/preferences/domain"
	"github.com/google/uuid"
)

const (
	// DefaultTaskDurationMinutes applies when a task has no stored duration.
	DefaultTaskDurationMinutes = 60
	// MaxTaskDurationMinutes bounds task durations to one day.
	MaxTaskDurationMinutes = 24 * 60
	// DefaultTaskDifficulty applies when a task has no stored difficulty.
	DefaultTaskDifficulty = 3
	// DefaultTaskProductivityScore applies when a task has no stored score.
	DefaultTaskProductivityScore = 5.0
	// MinDifficulty and MaxDifficulty bound the difficulty scale.
	MinDifficulty = 1
	MaxDifficulty = 5
)

// DefaultTaskStart is the clock time assumed for tasks without a scheduled time.
var DefaultTaskStart = prefsDomain.NewTimeOfDay(9, 0)

// Task is a scheduled unit of work. The scheduler only reads tasks.
type Task struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	Title             string
	DurationMinutes   int
	ScheduledDate     time.Time
	ScheduledTime     *prefsDomain.TimeOfDay
	Difficulty        int
	ProductivityScore *float64
	Completed         bool
}

// EffectiveDuration returns the duration in minutes, defaulting to an hour
// and capped at MaxTaskDurationMinutes.
func (t Task) EffectiveDuration() int {
	if t.DurationMinutes <= 0 {
		return DefaultTaskDurationMinutes
	}
	return min(t.DurationMinutes, MaxTaskDurationMinutes)
}

// EffectiveDifficulty returns the difficulty, defaulting to the middle of the scale.
func (t Task) EffectiveDifficulty() int {
	if t.Difficulty < MinDifficulty || t.Difficulty > MaxDifficulty {
		return DefaultTaskDifficulty
	}
	return t.Difficulty
}

// EffectiveProductivityScore returns the stored score or the neutral default.
func (t Task) EffectiveProductivityScore() float64 {
	if t.ProductivityScore == nil {
		return DefaultTaskProductivityScore
	}
	return *t.ProductivityScore
}

// StartTime anchors the task on its scheduled date.
func (t Task) StartTime() time.Time {
	clock := DefaultTaskStart
	if t.ScheduledTime != nil {
		clock = *t.ScheduledTime
	}
	return clock.On(t.ScheduledDate)
}

// EndTime is StartTime plus the effective duration.
func (t Task) EndTime() time.Time {
	return t.StartTime().Add(time.Duration(t.EffectiveDuration()) * time.Minute)
}

// Subtask is a checklist entry on a todo.
type Subtask struct {
	ID          uuid.UUID
	Completed   bool
	CompletedAt *time.Time
}

// Todo is a due-dated item. Todos add load to a day but occupy no time.
type Todo struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	DueDate   *time.Time
	Completed bool
	Subtasks  []Subtask
}

// CompletedSubtasks counts finished subtasks.
func (t Todo) CompletedSubtasks() int {
	n := 0
	for _, s := range t.Subtasks {
		if s.Completed {
			n++
		}
	}
	return n
}
