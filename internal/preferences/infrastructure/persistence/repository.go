package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/slotwise/internal/preferences/domain"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// Repository stores each user's preferences as one JSON document.
type Repository struct {
	conn database.Connection
}

// NewRepository creates a new preferences repository.
func NewRepository(conn database.Connection) *Repository {
	return &Repository{conn: conn}
}

// Find returns the stored preferences, or nil when the user has none.
// A document that cannot be decoded yields domain.ErrInvalidPreferences.
func (r *Repository) Find(ctx context.Context, userID uuid.UUID) (*domain.Preferences, error) {
	var data string
	exec := database.ExecutorFromContext(ctx, r.conn)
	err := exec.QueryRow(ctx,
		`SELECT data FROM user_preferences WHERE user_id = $1`,
		userID.String(),
	).Scan(&data)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	var prefs domain.Preferences
	if err := json.Unmarshal([]byte(data), &prefs); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPreferences, err)
	}
	return &prefs, nil
}

// Save creates or replaces the user's preferences.
func (r *Repository) Save(ctx context.Context, userID uuid.UUID, prefs domain.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err = exec.Exec(ctx, `
		INSERT INTO user_preferences (user_id, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, userID.String(), string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
