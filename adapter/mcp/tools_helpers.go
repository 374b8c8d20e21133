package mcp

import (
	"fmt"
	"time"

	prefsDomain "github.com/felixgeelhaar/slotwise/internal/preferences/domain"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
)

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

func parseDate(value string, fallback time.Time, loc *time.Location) (time.Time, error) {
	if value == "" {
		return domain.StartOfDay(fallback.In(location(loc))), nil
	}
	parsed, err := domain.ParseDate(value, location(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
	}
	return parsed, nil
}

func parseOptionalClock(value string) (*prefsDomain.TimeOfDay, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := prefsDomain.ParseTimeOfDay(value)
	if err != nil {
		return nil, fmt.Errorf("invalid time format, use HH:MM: %w", err)
	}
	return &parsed, nil
}

func parseOptionalRange(start, end, name string) (*prefsDomain.TimeRange, error) {
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, fmt.Errorf("%s needs both start and end", name)
	}
	r, err := prefsDomain.NewTimeRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return &r, nil
}
