package queries

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
	"github.com/google/uuid"
)

// MaxRankingDays bounds the width of a ranking request.
const MaxRankingDays = 366

// RankDaysQuery asks for the days between StartDate and EndDate, inclusive,
// ordered busiest first.
type RankDaysQuery struct {
	UserID    uuid.UUID
	StartDate time.Time
	EndDate   time.Time
}

// RankDaysHandler handles the RankDaysQuery.
type RankDaysHandler struct {
	tasks   domain.TaskSource
	cache   cache.Cache[[]domain.RankedDay]
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewRankDaysHandler creates a new RankDaysHandler.
func NewRankDaysHandler(
	tasks domain.TaskSource,
	resultCache cache.Cache[[]domain.RankedDay],
	logger *slog.Logger,
	metrics observability.Metrics,
) *RankDaysHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &RankDaysHandler{
		tasks:   tasks,
		cache:   resultCache,
		logger:  logger,
		metrics: metrics,
	}
}

// Handle executes the RankDaysQuery. Every date in range is ranked, including
// dates without tasks. Fetch errors are returned to the caller.
func (h *RankDaysHandler) Handle(ctx context.Context, query RankDaysQuery) ([]domain.RankedDay, error) {
	if query.UserID == uuid.Nil {
		return nil, domain.ErrAuthenticationMissing
	}

	dates := domain.NewDateRange(query.StartDate, query.EndDate)
	if dates.End.Before(dates.Start) || dates.Len() > MaxRankingDays {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidDateRange, dates)
	}

	ctx = observability.WithOperation(observability.WithUserID(ctx, query.UserID.String()), "days.rank")
	timer := observability.StartTimer(ctx, "days.rank").WithLogger(h.logger).WithMetrics(h.metrics)
	h.metrics.Counter(observability.MetricDayRankings, 1)

	key := cache.Key("days", query.UserID.String(), domain.DateKey(dates.Start), domain.DateKey(dates.End))
	if cached, ok := h.cache.Get(ctx, key); ok {
		h.metrics.Counter(observability.MetricCacheHits, 1, observability.T("cache", "days"))
		h.logger.DebugContext(ctx, "day ranking served from cache", "range", dates.String())
		timer.Stop()
		return cached, nil
	}
	h.metrics.Counter(observability.MetricCacheMisses, 1, observability.T("cache", "days"))

	tasks, err := h.tasks.FetchTasks(ctx, query.UserID, dates)
	if err != nil {
		h.metrics.Counter(observability.MetricSourceErrors, 1, observability.T("source", "tasks"))
		err = fmt.Errorf("failed to fetch tasks: %w", err)
		timer.StopWithError(err)
		return nil, err
	}

	byDate := make(map[string][]domain.Task)
	for _, t := range tasks {
		if !dates.Contains(t.ScheduledDate) {
			continue
		}
		k := domain.DateKey(t.ScheduledDate)
		byDate[k] = append(byDate[k], t)
	}

	ranked := make([]domain.RankedDay, 0, dates.Len())
	for _, d := range dates.Days() {
		ranked = append(ranked, domain.NewRankedDay(d, byDate[domain.DateKey(d)]))
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].BusynessScore > ranked[j].BusynessScore
	})

	h.metrics.Histogram(observability.MetricDaysRanked, float64(len(ranked)))
	h.cache.Set(ctx, key, ranked)
	timer.Stop()
	return ranked, nil
}

// Invalidate drops every cached ranking of userID.
func (h *RankDaysHandler) Invalidate(ctx context.Context, userID uuid.UUID) {
	h.cache.DeletePrefix(ctx, cache.Key("days", userID.String(), ""))
}
