package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines storage for user preferences.
type Repository interface {
	// Find returns the stored preferences, or nil when the user has none.
	Find(ctx context.Context, userID uuid.UUID) (*Preferences, error)

	// Save creates or replaces the user's preferences.
	Save(ctx context.Context, userID uuid.UUID, prefs Preferences) error
}
