package domain

import "time"

const (
	baseProductivityScore        = 5.0
	breakProductivityScore       = 2.0
	productiveHoursBonus         = 3.0
	maxProductivityScore         = 10.0
	outsideWorkProductivityScore = 0.0
)

// IsWithinWorkHours reports whether t falls on a work day inside work hours.
func IsWithinWorkHours(t time.Time, prefs Preferences) bool {
	if !prefs.IsWorkDay(t.Weekday()) {
		return false
	}
	return prefs.WorkHours.Contains(t)
}

// IsWithinBreakTime reports whether t falls inside any configured break.
func IsWithinBreakTime(t time.Time, prefs Preferences) bool {
	for _, b := range prefs.BreakTimes {
		if b.Range().Contains(t) {
			return true
		}
	}
	return false
}

// IsWithinProductiveHours reports whether t falls inside the productive window.
func IsWithinProductiveHours(t time.Time, prefs Preferences) bool {
	return prefs.ProductiveHours.Contains(t)
}

// ProductivityScore rates how suitable t is for focused work, on a 0-10 scale.
func ProductivityScore(t time.Time, prefs Preferences) float64 {
	if !IsWithinWorkHours(t, prefs) {
		return outsideWorkProductivityScore
	}
	if IsWithinBreakTime(t, prefs) {
		return breakProductivityScore
	}
	score := baseProductivityScore
	if IsWithinProductiveHours(t, prefs) {
		score += productiveHoursBonus
	}
	return min(score, maxProductivityScore)
}
