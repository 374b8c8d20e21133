package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// RankedTask is the per-task detail listed under a ranked day.
type RankedTask struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	DurationMinutes int       `json:"durationMinutes"`
	Difficulty      int       `json:"difficulty"`
	Time            string    `json:"time,omitempty"`
}

// RankedDay summarizes how loaded a calendar date is.
type RankedDay struct {
	Date                 string       `json:"date"`
	FormattedDate        string       `json:"formattedDate"`
	TaskCount            int          `json:"taskCount"`
	TotalDurationMinutes int          `json:"totalDurationMinutes"`
	AverageDifficulty    float64      `json:"averageDifficulty"`
	MaxDifficulty        int          `json:"maxDifficulty"`
	BusynessScore        float64      `json:"busynessScore"`
	Tasks                []RankedTask `json:"tasks"`
}

// NewRankedDay aggregates the tasks scheduled on date.
func NewRankedDay(date time.Time, tasks []Task) RankedDay {
	day := RankedDay{
		Date:          DateKey(date),
		FormattedDate: date.Format(FormattedDateLayout),
		Tasks:         make([]RankedTask, 0, len(tasks)),
	}

	difficultySum := 0
	for _, t := range tasks {
		difficulty := t.EffectiveDifficulty()
		duration := t.EffectiveDuration()

		day.TaskCount++
		day.TotalDurationMinutes += duration
		difficultySum += difficulty
		day.MaxDifficulty = max(day.MaxDifficulty, difficulty)

		rt := RankedTask{
			ID:              t.ID,
			Title:           t.Title,
			DurationMinutes: duration,
			Difficulty:      difficulty,
		}
		if t.ScheduledTime != nil {
			rt.Time = t.ScheduledTime.String()
		}
		day.Tasks = append(day.Tasks, rt)
	}

	if day.TaskCount > 0 {
		day.AverageDifficulty = float64(difficultySum) / float64(day.TaskCount)
	}
	day.BusynessScore = BusynessScore(day.TotalDurationMinutes, day.AverageDifficulty, day.TaskCount)
	return day
}

// BusynessScore combines hours booked, difficulty and task count, rounded to one decimal.
func BusynessScore(totalMinutes int, averageDifficulty float64, taskCount int) float64 {
	score := float64(totalMinutes)/60 + averageDifficulty*2 + math.Min(10, float64(taskCount)*0.5)
	return math.Round(score*10) / 10
}

// BusiestDay returns the first day of a ranking.
func BusiestDay(ranked []RankedDay) (RankedDay, bool) {
	if len(ranked) == 0 {
		return RankedDay{}, false
	}
	return ranked[0], true
}

// LeastBusyDay returns the last day of a ranking. This is the least busy day in
// the queried range, which may still carry load if the whole range is busy.
func LeastBusyDay(ranked []RankedDay) (RankedDay, bool) {
	if len(ranked) == 0 {
		return RankedDay{}, false
	}
	return ranked[len(ranked)-1], true
}
