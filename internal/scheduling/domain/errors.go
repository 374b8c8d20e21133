package domain

import "errors"

var (
	// ErrAuthenticationMissing is returned when no user is attached to a request.
	ErrAuthenticationMissing = errors.New("authentication required")
	// ErrInvalidDateRange is returned when a ranking range is empty or too wide.
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrSourceUnavailable is returned when a data source is failing fast.
	ErrSourceUnavailable = errors.New("data source unavailable")
	// ErrEmptyTitle is returned when storing a task or todo without a title.
	ErrEmptyTitle = errors.New("title cannot be empty")
	// ErrInvalidTask is returned when a task's duration or difficulty is out of range.
	ErrInvalidTask = errors.New("invalid task")
)
