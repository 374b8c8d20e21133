package domain

import (
	"time"

	prefsDomain "github.com/felixgeelhaar/slotwise/internal/preferences/domain"
)

const (
	// MaxAlternatives caps the number of runner-up slots in a suggestion.
	MaxAlternatives = 3
	// FallbackScore is the score given to the deterministic fallback slot.
	FallbackScore = 50.0
)

// FallbackStart is the clock time of the fallback suggestion, on the following day.
var FallbackStart = prefsDomain.NewTimeOfDay(10, 0)

// SlotMetrics explains the inputs behind a slot's score.
type SlotMetrics struct {
	FreeTimePercentage float64 `json:"freeTimePercentage"`
	TodoCount          int     `json:"todoCount"`
	ProductivityScore  float64 `json:"productivityScore"`
}

// SuggestedSlot is a recommended placement for a task.
type SuggestedSlot struct {
	Date      string      `json:"date"`
	StartTime string      `json:"startTime"`
	EndTime   string      `json:"endTime"`
	Score     float64     `json:"score"`
	Metrics   SlotMetrics `json:"metrics"`
}

// NewSuggestedSlot formats a placement starting at start for durationMinutes.
func NewSuggestedSlot(start time.Time, durationMinutes int, score float64, metrics SlotMetrics) SuggestedSlot {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	return SuggestedSlot{
		Date:      DateKey(start),
		StartTime: start.Format(ClockLayout),
		EndTime:   end.Format(ClockLayout),
		Score:     score,
		Metrics:   metrics,
	}
}

// ScheduleSuggestion is the result of a best-slot search. BestSlot is never nil.
type ScheduleSuggestion struct {
	BestSlot     *SuggestedSlot  `json:"bestSlot"`
	Alternatives []SuggestedSlot `json:"alternatives"`
	HasConflicts bool            `json:"hasConflicts"`
	IsFallback   bool            `json:"isFallback"`
}

// FallbackSuggestion proposes tomorrow at 10:00 for the requested duration.
func FallbackSuggestion(now time.Time, durationMinutes int) *ScheduleSuggestion {
	start := FallbackStart.On(StartOfDay(now).AddDate(0, 0, 1))
	slot := NewSuggestedSlot(start, durationMinutes, FallbackScore, SlotMetrics{})
	return &ScheduleSuggestion{
		BestSlot:     &slot,
		Alternatives: []SuggestedSlot{},
		HasConflicts: true,
		IsFallback:   true,
	}
}
