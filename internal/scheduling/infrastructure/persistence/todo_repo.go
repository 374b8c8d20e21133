package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// TodoRepository implements domain.TodoRepository over any database driver.
type TodoRepository struct {
	conn database.Connection
	uow  *database.UnitOfWork
	loc  *time.Location
}

// NewTodoRepository creates a new todo repository.
func NewTodoRepository(conn database.Connection, loc *time.Location) *TodoRepository {
	if loc == nil {
		loc = time.Local
	}
	return &TodoRepository{
		conn: conn,
		uow:  database.NewUnitOfWork(conn),
		loc:  loc,
	}
}

// todoRow is one row of the todo/subtask join. Subtask columns are nil for
// todos without subtasks.
type todoRow struct {
	ID                 string
	Title              string
	DueDate            *string
	Completed          bool
	SubtaskID          *string
	SubtaskCompleted   *bool
	SubtaskCompletedAt *string
}

// Save inserts or replaces a todo and its subtasks in one transaction.
func (r *TodoRepository) Save(ctx context.Context, todo domain.Todo) error {
	if strings.TrimSpace(todo.Title) == "" {
		return domain.ErrEmptyTitle
	}

	var dueDate *string
	if todo.DueDate != nil {
		s := domain.DateKey(*todo.DueDate)
		dueDate = &s
	}
	now := time.Now().UTC().Format(time.RFC3339)

	return r.uow.Run(ctx, func(ctx context.Context) error {
		exec := database.ExecutorFromContext(ctx, r.conn)

		_, err := exec.Exec(ctx, `
			INSERT INTO todos (id, user_id, title, due_date, completed, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			ON CONFLICT (id) DO UPDATE SET
				title = excluded.title,
				due_date = excluded.due_date,
				completed = excluded.completed,
				updated_at = excluded.updated_at
		`, todo.ID.String(), todo.UserID.String(), todo.Title, dueDate, todo.Completed, now)
		if err != nil {
			return fmt.Errorf("failed to save todo: %w", err)
		}

		if _, err := exec.Exec(ctx, `DELETE FROM subtasks WHERE todo_id = $1`, todo.ID.String()); err != nil {
			return fmt.Errorf("failed to clear subtasks: %w", err)
		}

		for _, st := range todo.Subtasks {
			var completedAt *string
			if st.CompletedAt != nil {
				s := st.CompletedAt.UTC().Format(time.RFC3339)
				completedAt = &s
			}
			_, err := exec.Exec(ctx,
				`INSERT INTO subtasks (id, todo_id, completed, completed_at) VALUES ($1, $2, $3, $4)`,
				st.ID.String(), todo.ID.String(), st.Completed, completedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to save subtask %s: %w", st.ID, err)
			}
		}
		return nil
	})
}

// FetchTodos returns the user's todos due within dates, with their subtasks.
// Todos without a due date are not returned.
func (r *TodoRepository) FetchTodos(ctx context.Context, userID uuid.UUID, dates domain.DateRange) ([]domain.Todo, error) {
	query := `
		SELECT t.id, t.title, t.due_date, t.completed, s.id, s.completed, s.completed_at
		FROM todos t
		LEFT JOIN subtasks s ON s.todo_id = t.id
		WHERE t.user_id = $1 AND t.due_date >= $2 AND t.due_date <= $3
		ORDER BY t.due_date, t.id, s.id
	`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, userID.String(), domain.DateKey(dates.Start), domain.DateKey(dates.End))
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	defer rows.Close()

	todos := make([]domain.Todo, 0)
	for rows.Next() {
		var row todoRow
		if err := rows.Scan(
			&row.ID,
			&row.Title,
			&row.DueDate,
			&row.Completed,
			&row.SubtaskID,
			&row.SubtaskCompleted,
			&row.SubtaskCompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}

		// Rows arrive grouped by todo; a new id starts a new todo.
		if n := len(todos); n == 0 || todos[n-1].ID.String() != row.ID {
			todo, err := r.rowToTodo(userID, row)
			if err != nil {
				return nil, err
			}
			todos = append(todos, todo)
		}

		if row.SubtaskID != nil {
			st, err := rowToSubtask(row)
			if err != nil {
				return nil, err
			}
			last := &todos[len(todos)-1]
			last.Subtasks = append(last.Subtasks, st)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read todos: %w", err)
	}

	return todos, nil
}

func (r *TodoRepository) rowToTodo(userID uuid.UUID, row todoRow) (domain.Todo, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return domain.Todo{}, fmt.Errorf("invalid todo id %q: %w", row.ID, err)
	}

	todo := domain.Todo{
		ID:        id,
		UserID:    userID,
		Title:     row.Title,
		Completed: row.Completed,
		Subtasks:  []domain.Subtask{},
	}
	if row.DueDate != nil {
		due, err := domain.ParseDate(*row.DueDate, r.loc)
		if err != nil {
			return domain.Todo{}, fmt.Errorf("todo %s: %w", row.ID, err)
		}
		todo.DueDate = &due
	}
	return todo, nil
}

func rowToSubtask(row todoRow) (domain.Subtask, error) {
	id, err := uuid.Parse(*row.SubtaskID)
	if err != nil {
		return domain.Subtask{}, fmt.Errorf("invalid subtask id %q: %w", *row.SubtaskID, err)
	}

	st := domain.Subtask{ID: id}
	if row.SubtaskCompleted != nil {
		st.Completed = *row.SubtaskCompleted
	}
	if row.SubtaskCompletedAt != nil {
		at, err := time.Parse(time.RFC3339, *row.SubtaskCompletedAt)
		if err != nil {
			return domain.Subtask{}, fmt.Errorf("subtask %s completed_at: %w", id, err)
		}
		st.CompletedAt = &at
	}
	return st, nil
}
