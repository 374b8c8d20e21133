package queries

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	prefsDomain "github.com/felixgeelhaar/slotwise/internal/preferences/domain"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/application/services"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// slotGranularity is the step candidate start times are rounded up to.
const slotGranularity = 5 * time.Minute

// PreferencesProvider resolves the preferences used for scoring.
type PreferencesProvider interface {
	GetPreferences(ctx context.Context, userID uuid.UUID) (prefsDomain.Preferences, error)
}

// SlotSearchConfig configures the best-slot search.
type SlotSearchConfig struct {
	LookaheadDays int
	Location      *time.Location
	Clock         func() time.Time
}

// DefaultSlotSearchConfig returns a 14 day lookahead on the local clock.
func DefaultSlotSearchConfig() SlotSearchConfig {
	return SlotSearchConfig{
		LookaheadDays: services.DefaultLookaheadDays,
		Location:      time.Local,
		Clock:         time.Now,
	}
}

// FindBestSlotQuery asks for the best placement of a task of DurationMinutes.
type FindBestSlotQuery struct {
	UserID          uuid.UUID
	DurationMinutes int
}

// FindBestSlotHandler handles the FindBestSlotQuery.
type FindBestSlotHandler struct {
	tasks   domain.TaskSource
	todos   domain.TodoSource
	prefs   PreferencesProvider
	cache   cache.Cache[domain.ScheduleSuggestion]
	builder *services.ScheduleMapBuilder
	scorer  *services.SlotScorer
	config  SlotSearchConfig
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewFindBestSlotHandler creates a new FindBestSlotHandler.
func NewFindBestSlotHandler(
	tasks domain.TaskSource,
	todos domain.TodoSource,
	prefs PreferencesProvider,
	resultCache cache.Cache[domain.ScheduleSuggestion],
	config SlotSearchConfig,
	logger *slog.Logger,
	metrics observability.Metrics,
) *FindBestSlotHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if config.LookaheadDays <= 0 {
		config.LookaheadDays = services.DefaultLookaheadDays
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	return &FindBestSlotHandler{
		tasks:   tasks,
		todos:   todos,
		prefs:   prefs,
		cache:   resultCache,
		builder: services.NewScheduleMapBuilder(),
		scorer:  services.NewSlotScorer(),
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

type candidate struct {
	slot  domain.FreeSlot
	day   *domain.ScheduleDay
	score float64
}

// Handle executes the FindBestSlotQuery. It never fails once a user is
// present: data or preference errors degrade to the fallback suggestion, as
// do durations above domain.MaxTaskDurationMinutes.
func (h *FindBestSlotHandler) Handle(ctx context.Context, query FindBestSlotQuery) (*domain.ScheduleSuggestion, error) {
	if query.UserID == uuid.Nil {
		return nil, domain.ErrAuthenticationMissing
	}

	ctx = observability.WithOperation(observability.WithUserID(ctx, query.UserID.String()), "slots.find")
	timer := observability.StartTimer(ctx, "slots.find").WithLogger(h.logger).WithMetrics(h.metrics)
	defer timer.Stop()
	h.metrics.Counter(observability.MetricSlotSearches, 1)

	now := h.config.Clock().In(h.config.Location)

	// 0 asks for the preferred duration.
	requested := max(query.DurationMinutes, 0)
	if requested > domain.MaxTaskDurationMinutes {
		err := fmt.Errorf("duration %d exceeds %d minutes", requested, domain.MaxTaskDurationMinutes)
		return h.fallback(ctx, now, domain.MaxTaskDurationMinutes, "duration_limit", err), nil
	}

	key := slotCacheKey(query.UserID, requested)
	if cached, ok := h.cache.Get(ctx, key); ok {
		h.metrics.Counter(observability.MetricCacheHits, 1, observability.T("cache", "slots"))
		h.logger.DebugContext(ctx, "slot suggestion served from cache", "requested_minutes", requested)
		return &cached, nil
	}
	h.metrics.Counter(observability.MetricCacheMisses, 1, observability.T("cache", "slots"))

	prefs, err := h.prefs.GetPreferences(ctx, query.UserID)
	if err != nil {
		return h.fallback(ctx, now, resolveDuration(requested, prefsDomain.Preferences{}), "preferences", err), nil
	}
	duration := resolveDuration(requested, prefs)

	tasks, todos, err := h.fetch(ctx, query.UserID, domain.LookaheadRange(now, h.config.LookaheadDays))
	if err != nil {
		return h.fallback(ctx, now, duration, "source", err), nil
	}

	schedule := h.builder.Build(tasks, todos, prefs, now, h.config.LookaheadDays)
	candidates := h.collect(schedule, duration, prefs, now)
	h.metrics.Histogram(observability.MetricSlotCandidates, float64(len(candidates)))

	var suggestion *domain.ScheduleSuggestion
	if len(candidates) == 0 {
		h.metrics.Counter(observability.MetricSlotFallbacks, 1, observability.T("reason", "no_slot"))
		h.logger.InfoContext(ctx, "no free slot fits, suggesting fallback", "duration_minutes", duration)
		suggestion = domain.FallbackSuggestion(now, duration)
	} else {
		suggestion = h.suggest(candidates, duration, prefs)
	}

	h.cache.Set(ctx, key, *suggestion)
	return suggestion, nil
}

// Invalidate drops every cached suggestion of userID.
func (h *FindBestSlotHandler) Invalidate(ctx context.Context, userID uuid.UUID) {
	h.cache.DeletePrefix(ctx, cache.Key("slots", userID.String(), ""))
}

// resolveDuration picks the task length: the requested minutes, else the
// preferred duration, else an hour.
func resolveDuration(requested int, prefs prefsDomain.Preferences) int {
	if requested > 0 {
		return requested
	}
	if d := prefs.TaskPreferences.PreferredDuration; d > 0 {
		return min(d, domain.MaxTaskDurationMinutes)
	}
	return domain.DefaultTaskDurationMinutes
}

// fetch loads tasks and todos concurrently and waits for both.
func (h *FindBestSlotHandler) fetch(ctx context.Context, userID uuid.UUID, dates domain.DateRange) ([]domain.Task, []domain.Todo, error) {
	var (
		tasks []domain.Task
		todos []domain.Todo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = h.tasks.FetchTasks(gctx, userID, dates)
		return err
	})
	g.Go(func() error {
		var err error
		todos, err = h.todos.FetchTodos(gctx, userID, dates)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return tasks, todos, nil
}

// collect scores every free interval that can still host the task.
func (h *FindBestSlotHandler) collect(
	schedule domain.ScheduleMap,
	duration int,
	prefs prefsDomain.Preferences,
	now time.Time,
) []candidate {
	earliest := roundUp(now, slotGranularity)
	need := time.Duration(duration) * time.Minute

	var candidates []candidate
	for _, day := range schedule.Days() {
		for _, free := range day.FreeTimeSlots {
			if !free.End.After(now) {
				continue
			}
			start := free.Start
			if start.Before(earliest) {
				start = earliest
			}
			if free.End.Sub(start) < need {
				continue
			}
			slot := domain.NewFreeSlot(start, free.End)
			candidates = append(candidates, candidate{
				slot:  slot,
				day:   day,
				score: h.scorer.Score(slot, day, duration, prefs, now),
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	return candidates
}

func (h *FindBestSlotHandler) suggest(candidates []candidate, duration int, prefs prefsDomain.Preferences) *domain.ScheduleSuggestion {
	n := min(len(candidates), domain.MaxAlternatives+1)
	slots := make([]domain.SuggestedSlot, 0, n)
	for _, c := range candidates[:n] {
		slots = append(slots, domain.NewSuggestedSlot(
			c.slot.Start,
			duration,
			c.score,
			h.scorer.Metrics(c.slot, c.day, duration, prefs),
		))
	}

	best := slots[0]
	return &domain.ScheduleSuggestion{
		BestSlot:     &best,
		Alternatives: slots[1:],
		HasConflicts: false,
		IsFallback:   false,
	}
}

// fallback logs and counts a degraded search. Its result is not cached.
func (h *FindBestSlotHandler) fallback(
	ctx context.Context,
	now time.Time,
	duration int,
	reason string,
	err error,
) *domain.ScheduleSuggestion {
	h.metrics.Counter(observability.MetricSlotFallbacks, 1, observability.T("reason", reason))
	h.logger.WarnContext(ctx, "slot search degraded to fallback",
		"reason", reason,
		"duration_minutes", duration,
		"error", err,
	)
	return domain.FallbackSuggestion(now, duration)
}

func slotCacheKey(userID uuid.UUID, duration int) string {
	return cache.Key("slots", userID.String(), strconv.Itoa(duration))
}

// roundUp returns t moved forward to the next multiple of step.
func roundUp(t time.Time, step time.Duration) time.Time {
	r := t.Truncate(step)
	if r.Before(t) {
		r = r.Add(step)
	}
	return r
}
