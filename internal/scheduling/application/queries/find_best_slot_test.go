package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	prefsDomain "github.com/felixgeelhaar/slotwise/internal/preferences/domain"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type slotFixture struct {
	tasks   *mockTaskSource
	todos   *mockTodoSource
	prefs   *mockPreferences
	cache   *cache.Memory[domain.ScheduleSuggestion]
	metrics *observability.InMemoryMetrics
	handler *FindBestSlotHandler
}

func newSlotFixture(now time.Time) *slotFixture {
	f := &slotFixture{
		tasks:   new(mockTaskSource),
		todos:   new(mockTodoSource),
		prefs:   new(mockPreferences),
		cache:   cache.NewMemory[domain.ScheduleSuggestion](16, time.Minute),
		metrics: observability.NewInMemoryMetrics(),
	}
	f.handler = NewFindBestSlotHandler(
		f.tasks,
		f.todos,
		f.prefs,
		f.cache,
		SlotSearchConfig{
			LookaheadDays: 14,
			Location:      time.UTC,
			Clock:         func() time.Time { return now },
		},
		nil,
		f.metrics,
	)
	return f
}

func (f *slotFixture) expectData(tasks []domain.Task, todos []domain.Todo) {
	f.tasks.On("FetchTasks", mock.Anything, mock.Anything, mock.Anything).Return(tasks, nil)
	f.todos.On("FetchTodos", mock.Anything, mock.Anything, mock.Anything).Return(todos, nil)
}

// 2025-06-01 is a Sunday.
func utc(day, hour, minute int) time.Time {
	return time.Date(2025, time.June, day, hour, minute, 0, 0, time.UTC)
}

func TestFindBestSlotHandler_EmptyWeek(t *testing.T) {
	userID := uuid.New()
	now := utc(1, 15, 0)
	f := newSlotFixture(now)
	f.prefs.On("GetPreferences", mock.Anything, userID).Return(prefsDomain.Default(), nil)
	f.expectData([]domain.Task{}, []domain.Todo{})

	result, err := f.handler.Handle(context.Background(), FindBestSlotQuery{UserID: userID, DurationMinutes: 60})

	require.NoError(t, err)
	require.NotNil(t, result.BestSlot)
	assert.False(t, result.HasConflicts)
	assert.False(t, result.IsFallback)

	// Sunday is not a work day, so Monday morning wins.
	assert.Equal(t, "2025-06-02", result.BestSlot.Date)
	assert.Equal(t, "09:00", result.BestSlot.StartTime)
	assert.Equal(t, "10:00", result.BestSlot.EndTime)
	assert.Equal(t, 100.0, result.BestSlot.Score)
	assert.Equal(t, domain.SlotMetrics{FreeTimePercentage: 300, TodoCount: 0, ProductivityScore: 8}, result.BestSlot.Metrics)

	require.Len(t, result.Alternatives, domain.MaxAlternatives)
	assert.Equal(t, "2025-06-02", result.Alternatives[0].Date)
	assert.Equal(t, "13:00", result.Alternatives[0].StartTime)
	assert.Equal(t, "2025-06-03", result.Alternatives[1].Date)

	f.tasks.AssertCalled(t, "FetchTasks", mock.Anything, userID, domain.NewDateRange(utc(1, 0, 0), utc(14, 0, 0)))
}

func TestFindBestSlotHandler_SplitsAroundExistingTask(t *testing.T) {
	userID := uuid.New()
	f := newSlotFixture(utc(1, 15, 0))
	f.prefs.On("GetPreferences", mock.Anything, userID).Return(prefsDomain.Default(), nil)

	nine := prefsDomain.NewTimeOfDay(9, 0)
	f.expectData([]domain.Task{{
		ID:              uuid.New(),
		Title:           "Standup prep",
		ScheduledDate:   utc(2, 0, 0),
		ScheduledTime:   &nine,
		DurationMinutes: 60,
	}}, []domain.Todo{})

	result, err := f.handler.Handle(context.Background(), FindBestSlotQuery{UserID: userID, DurationMinutes: 90})

	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", result.BestSlot.Date)
	assert.Equal(t, "10:00", result.BestSlot.StartTime)
	assert.Equal(t, "11:30", result.BestSlot.EndTime)
	assert.Equal(t, float64(133), result.BestSlot.Metrics.FreeTimePercentage)

	for _, alt := range append([]domain.SuggestedSlot{*result.BestSlot}, result.Alternatives...) {
		if alt.Date == "2025-06-02" {
			assert.NotEqual(t, "09:00", alt.StartTime, "the booked hour is never offered")
		}
	}
}

func TestFindBestSlotHandler_RoundsStartToNextFiveMinutes(t *testing.T) {
	userID := uuid.New()
	f := newSlotFixture(time.Date(2025, time.June, 2, 10, 2, 30, 0, time.UTC))
	f.prefs.On("GetPreferences", mock.Anything, userID).Return(prefsDomain.Default(), nil)
	f.expectData([]domain.Task{}, []domain.Todo{})

	result, err := f.handler.Handle(context.Background(), FindBestSlotQuery{UserID: userID, DurationMinutes: 60})

	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", result.BestSlot.Date)
	assert.Equal(t, "10:05", result.BestSlot.StartTime)
	assert.Equal(t, "11:05", result.BestSlot.EndTime)
}

func TestFindBestSlotHandler_SkipsTodaysTooShortRemainder(t *testing.T) {
	userID := uuid.New()
	// Friday afternoon: only 30 minutes of work time remain.
	f := newSlotFixture(utc(6, 16, 30))
	f.prefs.On("GetPreferences", mock.Anything, userID).Return(prefsDomain.Default(), nil)
	f.expectData([]domain.Task{}, []domain.Todo{})

	result, err := f.handler.Handle(context.Background(), FindBestSlotQuery{UserID: userID, DurationMinutes: 60})

	require.NoError(t, err)
	assert.Equal(t, "2025-06-09", result.BestSlot.Date)
	assert.Equal(t, "09:00", result.BestSlot.StartTime)
}

func TestFindBestSlotHandler_UsesPreferredDuration(t *testing.T) {
	userID := uuid.New()
	prefs := prefsDomain.Default()
	prefs.TaskPreferences.PreferredDuration = 45

	f := newSlotFixture(utc(1, 15, 0))
	f.prefs.On("GetPreferences", mock.Anything, userID).Return(prefs, nil)
	f.expectData([]domain.Task{}, []domain.Todo{})

	result, err := f.handler.Handle(context.Background(), FindBestSlotQuery{UserID: userID})

	require.NoError(t, err)
	assert.Equal(t, "09:00", result.BestSlot.StartTime)
	assert.Equal(t, "09:45", result.BestSlot.EndTime)
	f.prefs.AssertNumberOfCalls(t, "GetPreferences", 1)
}

func TestFindBestSlotHandler_NoFeasibleSlot(t *testing.T) {
	userID := uuid.New()
	now := utc(1, 15, 0)
	f := newSlotFixture(now)
	f.prefs.On("GetPreferences", mock.Anything, userID).Return(prefsDomain.Default(), nil)
	f.expectData([]domain.Task{}, []domain.Todo{})

	query := FindBestSlotQuery{UserID: userID, DurationMinutes: 600}
	result, err := f.handler.Handle(context.Background(), query)

	require.NoError(t, err)
	assert.Equal(t, domain.FallbackSuggestion(now, 600), result)
	assert.True(t, result.HasConflicts)
	assert.True(t, result.IsFallback)
	assert.Equal(t, "2025-06-02", result.BestSlot.Date)
	assert.Equal(t, "10:00", result.BestSlot.StartTime)
	assert.Equal(t, "20:00", result.BestSlot.EndTime)

	// A genuine no-fit answer is cached like any other.
	_, err = f.handler.Handle(context.Background(), query)
	require.NoError(t, err)
	f.tasks.AssertNumberOfCalls(t, "FetchTasks", 1)
	assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricSlotFallbacks, observability.T("reason", "no_slot")))
}

func TestFindBestSlotHandler_FallsBackOnSourceError(t *testing.T) {
	userID := uuid.New()
	now := utc(4, 11, 0)
	f := newSlotFixture(now)
	f.prefs.On("GetPreferences", mock.Anything, userID).Return(prefsDomain.Default(), nil)
	f.tasks.On("FetchTasks", mock.Anything, userID, mock.Anything).Return(nil, errors.New("connection reset"))
	f.todos.On("FetchTodos", mock.Anything, userID, mock.Anything).Return([]domain.Todo{}, nil)

	query := FindBestSlotQuery{UserID: userID, DurationMinutes: 30}
	result, err := f.handler.Handle(context.Background(), query)

	require.NoError(t, err)
	assert.True(t, result.IsFallback)
	assert.True(t, result.HasConflicts)
	assert.Equal(t, "2025-06-05", result.BestSlot.Date)
	assert.Equal(t, "10:00", result.BestSlot.StartTime)
	assert.Equal(t, "10:30", result.BestSlot.EndTime)
	assert.Equal(t, domain.FallbackScore, result.BestSlot.Score)
	assert.Empty(t, result.Alternatives)

	// Error fallbacks are not cached.
	_, err = f.handler.Handle(context.Background(), query)
	require.NoError(t, err)
	f.tasks.AssertNumberOfCalls(t, "FetchTasks", 2)
	assert.Zero(t, f.cache.Len())
	assert.Equal(t, int64(2), f.metrics.GetCounter(observability.MetricSlotFallbacks, observability.T("reason", "source")))
}

func TestFindBestSlotHandler_FallsBackOnPreferencesError(t *testing.T) {
	userID := uuid.New()
	f := newSlotFixture(utc(4, 11, 0))
	f.prefs.On("GetPreferences", mock.Anything, userID).Return(prefsDomain.Preferences{}, errors.New("db down"))

	result, err := f.handler.Handle(context.Background(), FindBestSlotQuery{UserID: userID, DurationMinutes: 30})

	require.NoError(t, err)
	assert.True(t, result.IsFallback)
	f.tasks.AssertNotCalled(t, "FetchTasks", mock.Anything, mock.Anything, mock.Anything)

	result, err = f.handler.Handle(context.Background(), FindBestSlotQuery{UserID: userID})
	require.NoError(t, err)
	assert.Equal(t, "11:00", result.BestSlot.EndTime, "default hour when preferences are unavailable")
}

func TestFindBestSlotHandler_CachesResults(t *testing.T) {
	userID := uuid.New()
	f := newSlotFixture(utc(1, 15, 0))
	f.prefs.On("GetPreferences", mock.Anything, userID).Return(prefsDomain.Default(), nil)
	f.expectData([]domain.Task{}, []domain.Todo{})

	query := FindBestSlotQuery{UserID: userID, DurationMinutes: 60}
	first, err := f.handler.Handle(context.Background(), query)
	require.NoError(t, err)
	second, err := f.handler.Handle(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	f.tasks.AssertNumberOfCalls(t, "FetchTasks", 1)
	f.todos.AssertNumberOfCalls(t, "FetchTodos", 1)
	f.prefs.AssertNumberOfCalls(t, "GetPreferences", 1)
	assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricCacheHits, observability.T("cache", "slots")))

	// A different duration is a different entry.
	_, err = f.handler.Handle(context.Background(), FindBestSlotQuery{UserID: userID, DurationMinutes: 30})
	require.NoError(t, err)
	f.tasks.AssertNumberOfCalls(t, "FetchTasks", 2)
}

func TestFindBestSlotHandler_DurationAboveLimitFallsBack(t *testing.T) {
	userID := uuid.New()
	now := utc(4, 11, 0)
	f := newSlotFixture(now)

	for _, minutes := range []int{domain.MaxTaskDurationMinutes + 1, 200000000} {
		result, err := f.handler.Handle(context.Background(), FindBestSlotQuery{UserID: userID, DurationMinutes: minutes})

		require.NoError(t, err)
		assert.Equal(t, domain.FallbackSuggestion(now, domain.MaxTaskDurationMinutes), result)
		assert.Equal(t, "2025-06-05", result.BestSlot.Date)
		assert.Equal(t, "10:00", result.BestSlot.StartTime)
		assert.Equal(t, "10:00", result.BestSlot.EndTime)
	}

	f.prefs.AssertNotCalled(t, "GetPreferences", mock.Anything, mock.Anything)
	f.tasks.AssertNotCalled(t, "FetchTasks", mock.Anything, mock.Anything, mock.Anything)
	assert.Zero(t, f.cache.Len())
	assert.Equal(t, int64(2), f.metrics.GetCounter(observability.MetricSlotFallbacks, observability.T("reason", "duration_limit")))
}

func TestFindBestSlotHandler_DurationAtLimitIsSearched(t *testing.T) {
	userID := uuid.New()
	now := utc(1, 15, 0)
	f := newSlotFixture(now)
	f.prefs.On("GetPreferences", mock.Anything, userID).Return(prefsDomain.Default(), nil)
	f.expectData([]domain.Task{}, []domain.Todo{})

	result, err := f.handler.Handle(context.Background(), FindBestSlotQuery{UserID: userID, DurationMinutes: domain.MaxTaskDurationMinutes})

	require.NoError(t, err)
	assert.Equal(t, domain.FallbackSuggestion(now, domain.MaxTaskDurationMinutes), result, "no work day holds a full day")
	f.tasks.AssertNumberOfCalls(t, "FetchTasks", 1)
	assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricSlotFallbacks, observability.T("reason", "no_slot")))
}

func TestFindBestSlotHandler_PreferredDurationCacheHitSkipsPreferences(t *testing.T) {
	userID := uuid.New()
	prefs := prefsDomain.Default()
	prefs.TaskPreferences.PreferredDuration = 45

	f := newSlotFixture(utc(1, 15, 0))
	f.prefs.On("GetPreferences", mock.Anything, userID).Return(prefs, nil)
	f.expectData([]domain.Task{}, []domain.Todo{})

	first, err := f.handler.Handle(context.Background(), FindBestSlotQuery{UserID: userID})
	require.NoError(t, err)
	second, err := f.handler.Handle(context.Background(), FindBestSlotQuery{UserID: userID, DurationMinutes: -5})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "09:45", second.BestSlot.EndTime)
	f.prefs.AssertNumberOfCalls(t, "GetPreferences", 1)
	f.tasks.AssertNumberOfCalls(t, "FetchTasks", 1)
	assert.Equal(t, int64(1), f.metrics.GetCounter(observability.MetricCacheHits, observability.T("cache", "slots")))
}

func TestFindBestSlotHandler_Invalidate(t *testing.T) {
	userID := uuid.New()
	otherID := uuid.New()
	f := newSlotFixture(utc(1, 15, 0))
	f.prefs.On("GetPreferences", mock.Anything, mock.Anything).Return(prefsDomain.Default(), nil)
	f.expectData([]domain.Task{}, []domain.Todo{})

	ctx := context.Background()
	for _, query := range []FindBestSlotQuery{
		{UserID: userID, DurationMinutes: 60},
		{UserID: userID},
		{UserID: otherID, DurationMinutes: 60},
	} {
		_, err := f.handler.Handle(ctx, query)
		require.NoError(t, err)
	}
	require.Equal(t, 3, f.cache.Len())

	f.handler.Invalidate(ctx, userID)

	assert.Equal(t, 1, f.cache.Len(), "only the other user's entry survives")
	_, err := f.handler.Handle(ctx, FindBestSlotQuery{UserID: userID, DurationMinutes: 60})
	require.NoError(t, err)
	f.tasks.AssertNumberOfCalls(t, "FetchTasks", 4)
}

func TestResolveDuration(t *testing.T) {
	prefs := prefsDomain.Default()
	prefs.TaskPreferences.PreferredDuration = 45
	huge := prefsDomain.Default()
	huge.TaskPreferences.PreferredDuration = 10 * domain.MaxTaskDurationMinutes

	assert.Equal(t, 30, resolveDuration(30, prefs))
	assert.Equal(t, 45, resolveDuration(0, prefs))
	assert.Equal(t, domain.MaxTaskDurationMinutes, resolveDuration(0, huge))
	assert.Equal(t, domain.DefaultTaskDurationMinutes, resolveDuration(0, prefsDomain.Preferences{}))
}

func TestFindBestSlotHandler_RequiresUser(t *testing.T) {
	f := newSlotFixture(utc(1, 15, 0))

	result, err := f.handler.Handle(context.Background(), FindBestSlotQuery{DurationMinutes: 60})

	assert.ErrorIs(t, err, domain.ErrAuthenticationMissing)
	assert.Nil(t, result)
	f.prefs.AssertNotCalled(t, "GetPreferences", mock.Anything, mock.Anything)
}

func TestRoundUp(t *testing.T) {
	assert.Equal(t, utc(2, 10, 5), roundUp(time.Date(2025, time.June, 2, 10, 0, 1, 0, time.UTC), 5*time.Minute))
	assert.Equal(t, utc(2, 10, 5), roundUp(utc(2, 10, 5), 5*time.Minute))
}
