package queries

import (
	"context"

	prefsDomain "github.com/felixgeelhaar/slotwise/internal/preferences/domain"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockTaskSource struct {
	mock.Mock
}

func (m *mockTaskSource) FetchTasks(ctx context.Context, userID uuid.UUID, dates domain.DateRange) ([]domain.Task, error) {
	args := m.Called(ctx, userID, dates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

type mockTodoSource struct {
	mock.Mock
}

func (m *mockTodoSource) FetchTodos(ctx context.Context, userID uuid.UUID, dates domain.DateRange) ([]domain.Todo, error) {
	args := m.Called(ctx, userID, dates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Todo), args.Error(1)
}

type mockPreferences struct {
	mock.Mock
}

func (m *mockPreferences) GetPreferences(ctx context.Context, userID uuid.UUID) (prefsDomain.Preferences, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(prefsDomain.Preferences), args.Error(1)
}
