package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	prefsDomain "github.com/felixgeelhaar/slotwise/internal/preferences/domain"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// TaskRepository implements domain.TaskRepository over any database driver.
// Dates are stored as YYYY-MM-DD text and read back at midnight in loc.
type TaskRepository struct {
	conn database.Connection
	loc  *time.Location
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(conn database.Connection, loc *time.Location) *TaskRepository {
	if loc == nil {
		loc = time.Local
	}
	return &TaskRepository{conn: conn, loc: loc}
}

// taskRow represents a database row for tasks.
type taskRow struct {
	ID                string
	UserID            string
	Title             string
	DurationMinutes   int
	ScheduledDate     string
	ScheduledTime     *string
	Difficulty        int
	ProductivityScore *float64
	Completed         bool
}

// Save inserts or replaces a task.
func (r *TaskRepository) Save(ctx context.Context, task domain.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return domain.ErrEmptyTitle
	}

	query := `
		INSERT INTO tasks (
			id, user_id, title, duration_minutes, scheduled_date, scheduled_time,
			difficulty, productivity_score, completed, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			duration_minutes = excluded.duration_minutes,
			scheduled_date = excluded.scheduled_date,
			scheduled_time = excluded.scheduled_time,
			difficulty = excluded.difficulty,
			productivity_score = excluded.productivity_score,
			completed = excluded.completed,
			updated_at = excluded.updated_at
	`

	var scheduledTime *string
	if task.ScheduledTime != nil {
		s := task.ScheduledTime.String()
		scheduledTime = &s
	}

	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, query,
		task.ID.String(),
		task.UserID.String(),
		task.Title,
		task.EffectiveDuration(),
		domain.DateKey(task.ScheduledDate),
		scheduledTime,
		task.EffectiveDifficulty(),
		task.ProductivityScore,
		task.Completed,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// FetchTasks returns the user's tasks scheduled within dates, ordered by
// date and time.
func (r *TaskRepository) FetchTasks(ctx context.Context, userID uuid.UUID, dates domain.DateRange) ([]domain.Task, error) {
	query := `
		SELECT id, user_id, title, duration_minutes, scheduled_date, scheduled_time,
		       difficulty, productivity_score, completed
		FROM tasks
		WHERE user_id = $1 AND scheduled_date >= $2 AND scheduled_date <= $3
		ORDER BY scheduled_date, scheduled_time, id
	`

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, userID.String(), domain.DateKey(dates.Start), domain.DateKey(dates.End))
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		var row taskRow
		if err := rows.Scan(
			&row.ID,
			&row.UserID,
			&row.Title,
			&row.DurationMinutes,
			&row.ScheduledDate,
			&row.ScheduledTime,
			&row.Difficulty,
			&row.ProductivityScore,
			&row.Completed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}

		task, err := r.rowToTask(row)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepository) rowToTask(row taskRow) (domain.Task, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return domain.Task{}, fmt.Errorf("invalid task id %q: %w", row.ID, err)
	}
	userID, err := uuid.Parse(row.UserID)
	if err != nil {
		return domain.Task{}, fmt.Errorf("invalid user id on task %s: %w", row.ID, err)
	}
	date, err := domain.ParseDate(row.ScheduledDate, r.loc)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %s: %w", row.ID, err)
	}

	task := domain.Task{
		ID:                id,
		UserID:            userID,
		Title:             row.Title,
		DurationMinutes:   row.DurationMinutes,
		ScheduledDate:     date,
		Difficulty:        row.Difficulty,
		ProductivityScore: row.ProductivityScore,
		Completed:         row.Completed,
	}
	if row.ScheduledTime != nil && *row.ScheduledTime != "" {
		clock, err := prefsDomain.ParseTimeOfDay(*row.ScheduledTime)
		if err != nil {
			return domain.Task{}, fmt.Errorf("task %s: %w", row.ID, err)
		}
		task.ScheduledTime = &clock
	}
	return task, nil
}
