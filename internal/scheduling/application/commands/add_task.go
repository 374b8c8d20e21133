package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	prefsDomain "github.com/felixgeelhaar/slotwise/internal/preferences/domain"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
	"github.com/google/uuid"
)

// AddTaskCommand contains the data needed to schedule a task.
type AddTaskCommand struct {
	UserID          uuid.UUID
	Title           string
	Date            time.Time
	Time            *prefsDomain.TimeOfDay
	DurationMinutes int
	Difficulty      int
}

// AddTaskResult contains the result of adding a task.
type AddTaskResult struct {
	TaskID uuid.UUID
}

// CacheInvalidator drops cached results derived from a user's records.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID)
}

// AddTaskHandler handles the AddTaskCommand.
type AddTaskHandler struct {
	repo         domain.TaskRepository
	logger       *slog.Logger
	metrics      observability.Metrics
	invalidators []CacheInvalidator
}

// NewAddTaskHandler creates a new AddTaskHandler. The invalidators run after
// every stored task.
func NewAddTaskHandler(
	repo domain.TaskRepository,
	logger *slog.Logger,
	metrics observability.Metrics,
	invalidators ...CacheInvalidator,
) *AddTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &AddTaskHandler{repo: repo, logger: logger, metrics: metrics, invalidators: invalidators}
}

// Handle executes the AddTaskCommand. Zero duration and difficulty take the
// task defaults.
func (h *AddTaskHandler) Handle(ctx context.Context, cmd AddTaskCommand) (*AddTaskResult, error) {
	if cmd.UserID == uuid.Nil {
		return nil, domain.ErrAuthenticationMissing
	}
	if strings.TrimSpace(cmd.Title) == "" {
		return nil, domain.ErrEmptyTitle
	}
	if cmd.DurationMinutes < 0 || cmd.DurationMinutes > domain.MaxTaskDurationMinutes {
		return nil, fmt.Errorf("%w: duration must be 0-%d minutes", domain.ErrInvalidTask, domain.MaxTaskDurationMinutes)
	}
	if cmd.Difficulty != 0 && (cmd.Difficulty < domain.MinDifficulty || cmd.Difficulty > domain.MaxDifficulty) {
		return nil, fmt.Errorf("%w: difficulty must be %d-%d", domain.ErrInvalidTask, domain.MinDifficulty, domain.MaxDifficulty)
	}
	if cmd.Time != nil && !cmd.Time.IsValid() {
		return nil, fmt.Errorf("%w: %s", prefsDomain.ErrInvalidTimeOfDay, cmd.Time)
	}

	ctx = observability.WithOperation(observability.WithUserID(ctx, cmd.UserID.String()), "tasks.add")

	task := domain.Task{
		ID:              uuid.New(),
		UserID:          cmd.UserID,
		Title:           strings.TrimSpace(cmd.Title),
		DurationMinutes: cmd.DurationMinutes,
		ScheduledDate:   domain.StartOfDay(cmd.Date),
		ScheduledTime:   cmd.Time,
		Difficulty:      cmd.Difficulty,
	}
	if err := h.repo.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to add task: %w", err)
	}

	invalidate(ctx, h.invalidators, cmd.UserID)
	h.metrics.Counter(observability.MetricTasksCreated, 1)
	h.logger.InfoContext(ctx, "task added",
		"task_id", task.ID,
		"date", domain.DateKey(task.ScheduledDate),
	)
	return &AddTaskResult{TaskID: task.ID}, nil
}

func invalidate(ctx context.Context, invalidators []CacheInvalidator, userID uuid.UUID) {
	for _, inv := range invalidators {
		inv.Invalidate(ctx, userID)
	}
}
