package observability

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// ctxField is a request-scoped value the log handler copies onto records.
type ctxField int

const (
	fieldCorrelationID ctxField = iota
	fieldRequestID
	fieldUserID
	fieldOperation
)

// attrKeys are the log attribute names of the context fields.
var attrKeys = [...]string{
	fieldCorrelationID: "correlation_id",
	fieldRequestID:     "request_id",
	fieldUserID:        "user_id",
	fieldOperation:     "operation",
}

func valueOf(ctx context.Context, f ctxField) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(f).(string)
	return v
}

// WithCorrelationID tags ctx with the id shared by everything one command or
// tool call does. An empty id generates one.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, fieldCorrelationID, id)
}

// WithRequestID tags ctx with the id of one HTTP request. An empty id generates one.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, fieldRequestID, id)
}

// RequestIDFromContext returns the request id of ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	return valueOf(ctx, fieldRequestID)
}

// WithUserID tags ctx with the user an operation runs for.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, fieldUserID, userID)
}

// WithOperation names the operation ctx belongs to, e.g. "slots.find".
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, fieldOperation, operation)
}

// contextAttrs returns the log attributes carried by ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	for f, key := range attrKeys {
		if v := valueOf(ctx, ctxField(f)); v != "" {
			attrs = append(attrs, slog.String(key, v))
		}
	}
	return attrs
}
