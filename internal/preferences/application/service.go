package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/slotwise/internal/preferences/domain"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
	"github.com/google/uuid"
)

// ErrUserRequired is returned when a preferences call carries no user.
var ErrUserRequired = errors.New("user id is required")

// CacheInvalidator drops cached results derived from a user's preferences.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID)
}

// Service resolves and updates user preferences. Reads go through a cache;
// users without a record get the defaults, which are persisted on first read.
type Service struct {
	repo         domain.Repository
	cache        cache.Cache[domain.Preferences]
	logger       *slog.Logger
	metrics      observability.Metrics
	invalidators []CacheInvalidator
}

// NewService creates a preferences service.
func NewService(
	repo domain.Repository,
	prefsCache cache.Cache[domain.Preferences],
	logger *slog.Logger,
	metrics observability.Metrics,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Service{
		repo:         repo,
		cache:        prefsCache,
		logger:       logger,
		metrics:      metrics,
	}
}

// InvalidateOnUpdate registers caches to drop after every stored update.
// It is not safe to call concurrently with UpdatePreferences.
func (s *Service) InvalidateOnUpdate(invalidators ...CacheInvalidator) {
	s.invalidators = append(s.invalidators, invalidators...)
}

func cacheKey(userID uuid.UUID) string {
	return cache.Key("prefs", userID.String())
}

// GetPreferences returns the user's preferences.
func (s *Service) GetPreferences(ctx context.Context, userID uuid.UUID) (domain.Preferences, error) {
	if userID == uuid.Nil {
		return domain.Preferences{}, ErrUserRequired
	}

	key := cacheKey(userID)
	if prefs, ok := s.cache.Get(ctx, key); ok {
		s.metrics.Counter(observability.MetricCacheHits, 1, observability.T("cache", "preferences"))
		return prefs.Clone(), nil
	}
	s.metrics.Counter(observability.MetricCacheMisses, 1, observability.T("cache", "preferences"))

	stored, err := s.repo.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPreferences) {
			return s.malformed(ctx, userID, err), nil
		}
		return domain.Preferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}

	if stored == nil {
		defaults := domain.Default()
		if err := s.repo.Save(ctx, userID, defaults); err != nil {
			return domain.Preferences{}, fmt.Errorf("failed to persist default preferences: %w", err)
		}
		s.logger.InfoContext(ctx, "created default preferences", "user_id", userID)
		s.cache.Set(ctx, key, defaults)
		return defaults.Clone(), nil
	}

	if err := stored.Validate(); err != nil {
		return s.malformed(ctx, userID, err), nil
	}

	s.cache.Set(ctx, key, *stored)
	return stored.Clone(), nil
}

// UpdatePreferences merges patch into the current preferences, validates and
// persists the result, and refreshes the cache.
func (s *Service) UpdatePreferences(ctx context.Context, userID uuid.UUID, patch domain.Patch) (domain.Preferences, error) {
	ctx = observability.WithOperation(observability.WithUserID(ctx, userID.String()), "preferences.update")

	current, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return domain.Preferences{}, err
	}
	if patch.IsEmpty() {
		return current, nil
	}

	merged := patch.ApplyTo(current)
	if err := merged.Validate(); err != nil {
		return domain.Preferences{}, err
	}

	if err := s.repo.Save(ctx, userID, merged); err != nil {
		return domain.Preferences{}, fmt.Errorf("failed to save preferences: %w", err)
	}
	s.cache.Set(ctx, cacheKey(userID), merged)
	for _, inv := range s.invalidators {
		inv.Invalidate(ctx, userID)
	}
	s.metrics.Counter(observability.MetricPreferencesUpdated, 1)
	s.logger.InfoContext(ctx, "preferences updated")

	return merged.Clone(), nil
}

// malformed substitutes defaults for a stored record that fails validation.
// The defaults are neither cached nor persisted so the record can be repaired.
func (s *Service) malformed(ctx context.Context, userID uuid.UUID, err error) domain.Preferences {
	s.metrics.Counter(observability.MetricPreferencesFallbacks, 1)
	s.logger.WarnContext(ctx, "stored preferences are malformed, using defaults",
		"user_id", userID,
		"error", err,
	)
	return domain.Default()
}
