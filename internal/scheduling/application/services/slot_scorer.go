package services

import (
	"math"
	"time"

	prefsDomain "github.com/felixgeelhaar/slotwise/internal/preferences/domain"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
)

const (
	baseSlotScore = 50.0
	minSlotScore  = 0.0
	maxSlotScore  = 100.0

	productivityWeight   = 2.0
	recencyPenaltyPerDay = 2.0
	morningBonus         = 10.0
	morningFirstHour     = 9
	morningLastHour      = 12
)

// SlotScorer rates free intervals as hosts for a task of a given length.
type SlotScorer struct{}

// NewSlotScorer creates a new SlotScorer.
func NewSlotScorer() *SlotScorer {
	return &SlotScorer{}
}

// Score rates slot on a 0-100 scale. It favours comfortable surplus time,
// light days, productive hours, sooner days and mornings. The slot must be at
// least requestedMinutes long and end after now.
func (s *SlotScorer) Score(
	slot domain.FreeSlot,
	day *domain.ScheduleDay,
	requestedMinutes int,
	prefs prefsDomain.Preferences,
	now time.Time,
) float64 {
	score := baseSlotScore

	score += surplusBonus(surplusRatio(slot, requestedMinutes))
	score += dayLoadBonus(day.TotalTaskDurationMinutes)
	score += todoLoadBonus(day.TodoCount)
	score += productivityWeight * prefsDomain.ProductivityScore(slot.Start, prefs)
	score -= recencyPenaltyPerDay * float64(daysFrom(now, slot.Start))

	if h := slot.Start.Hour(); h >= morningFirstHour && h <= morningLastHour {
		score += morningBonus
	}

	return math.Max(minSlotScore, math.Min(maxSlotScore, score))
}

// Metrics reports the inputs behind a slot's score.
func (s *SlotScorer) Metrics(
	slot domain.FreeSlot,
	day *domain.ScheduleDay,
	requestedMinutes int,
	prefs prefsDomain.Preferences,
) domain.SlotMetrics {
	return domain.SlotMetrics{
		FreeTimePercentage: math.Round(surplusRatio(slot, requestedMinutes)),
		TodoCount:          day.TodoCount,
		ProductivityScore:  prefsDomain.ProductivityScore(slot.Start, prefs),
	}
}

// surplusRatio is the slot length as a percentage of the requested length.
func surplusRatio(slot domain.FreeSlot, requestedMinutes int) float64 {
	if requestedMinutes <= 0 {
		return 0
	}
	return slot.Duration().Minutes() / float64(requestedMinutes) * 100
}

func surplusBonus(ratio float64) float64 {
	switch {
	case ratio >= 200:
		return 20
	case ratio >= 150:
		return 15
	case ratio >= 120:
		return 10
	default:
		return 5
	}
}

func dayLoadBonus(totalMinutes int) float64 {
	switch {
	case totalMinutes == 0:
		return 20
	case totalMinutes < 120:
		return 15
	case totalMinutes < 240:
		return 10
	case totalMinutes < 360:
		return 5
	default:
		return -10
	}
}

func todoLoadBonus(todoCount int) float64 {
	switch {
	case todoCount == 0:
		return 10
	case todoCount < 3:
		return 5
	case todoCount >= 5:
		return -10
	default:
		return 0
	}
}

// daysFrom counts whole days between now and t, never negative.
func daysFrom(now, t time.Time) int {
	if !t.After(now) {
		return 0
	}
	return int(math.Floor(t.Sub(now).Hours() / 24))
}
