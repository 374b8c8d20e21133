package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
	"github.com/google/uuid"
)

// AddTodoCommand contains the data needed to add a todo.
type AddTodoCommand struct {
	UserID   uuid.UUID
	Title    string
	DueDate  *time.Time
	Subtasks int
}

// AddTodoResult contains the result of adding a todo.
type AddTodoResult struct {
	TodoID     uuid.UUID
	SubtaskIDs []uuid.UUID
}

// AddTodoHandler handles the AddTodoCommand.
type AddTodoHandler struct {
	repo         domain.TodoRepository
	logger       *slog.Logger
	metrics      observability.Metrics
	invalidators []CacheInvalidator
}

// NewAddTodoHandler creates a new AddTodoHandler. The invalidators run after
// every stored todo.
func NewAddTodoHandler(
	repo domain.TodoRepository,
	logger *slog.Logger,
	metrics observability.Metrics,
	invalidators ...CacheInvalidator,
) *AddTodoHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &AddTodoHandler{repo: repo, logger: logger, metrics: metrics, invalidators: invalidators}
}

// Handle executes the AddTodoCommand, creating Subtasks open checklist entries.
func (h *AddTodoHandler) Handle(ctx context.Context, cmd AddTodoCommand) (*AddTodoResult, error) {
	if cmd.UserID == uuid.Nil {
		return nil, domain.ErrAuthenticationMissing
	}
	if strings.TrimSpace(cmd.Title) == "" {
		return nil, domain.ErrEmptyTitle
	}

	ctx = observability.WithOperation(observability.WithUserID(ctx, cmd.UserID.String()), "todos.add")

	todo := domain.Todo{
		ID:       uuid.New(),
		UserID:   cmd.UserID,
		Title:    strings.TrimSpace(cmd.Title),
		Subtasks: make([]domain.Subtask, 0, max(cmd.Subtasks, 0)),
	}
	if cmd.DueDate != nil {
		due := domain.StartOfDay(*cmd.DueDate)
		todo.DueDate = &due
	}

	result := &AddTodoResult{TodoID: todo.ID}
	for range cmd.Subtasks {
		st := domain.Subtask{ID: uuid.New()}
		todo.Subtasks = append(todo.Subtasks, st)
		result.SubtaskIDs = append(result.SubtaskIDs, st.ID)
	}

	if err := h.repo.Save(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to add todo: %w", err)
	}

	invalidate(ctx, h.invalidators, cmd.UserID)
	h.metrics.Counter(observability.MetricTodosCreated, 1)
	h.logger.InfoContext(ctx, "todo added", "todo_id", todo.ID, "subtasks", len(todo.Subtasks))
	return result, nil
}
