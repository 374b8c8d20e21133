package domain

import (
	"context"

	"github.com/google/uuid"
)

// TaskSource supplies a user's scheduled tasks.
type TaskSource interface {
	// FetchTasks returns tasks whose scheduled date falls within dates.
	FetchTasks(ctx context.Context, userID uuid.UUID, dates DateRange) ([]Task, error)
}

// TodoSource supplies a user's todos.
type TodoSource interface {
	// FetchTodos returns todos whose due date falls within dates.
	FetchTodos(ctx context.Context, userID uuid.UUID, dates DateRange) ([]Todo, error)
}

// TaskRepository is a TaskSource that can also store tasks.
type TaskRepository interface {
	TaskSource
	Save(ctx context.Context, task Task) error
}

// TodoRepository is a TodoSource that can also store todos.
type TodoRepository interface {
	TodoSource
	Save(ctx context.Context, todo Todo) error
}
