package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	prefsApp "github.com/felixgeelhaar/slotwise/internal/preferences/application"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
	"github.com/google/uuid"
)

// SchedulingHandler handles the read-only scheduling API.
type SchedulingHandler struct {
	findBestSlot *queries.FindBestSlotHandler
	rankDays     *queries.RankDaysHandler
	preferences  *prefsApp.Service
	userID       uuid.UUID
	location     *time.Location
	clock        func() time.Time
	logger       *slog.Logger
}

// SchedulingHandlerConfig holds dependencies for the scheduling handler.
type SchedulingHandlerConfig struct {
	FindBestSlot *queries.FindBestSlotHandler
	RankDays     *queries.RankDaysHandler
	Preferences  *prefsApp.Service
	UserID       uuid.UUID
	Location     *time.Location
	Clock        func() time.Time
	Logger       *slog.Logger
}

// NewSchedulingHandler creates a new scheduling handler.
func NewSchedulingHandler(cfg SchedulingHandlerConfig) *SchedulingHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &SchedulingHandler{
		findBestSlot: cfg.FindBestSlot,
		rankDays:     cfg.RankDays,
		preferences:  cfg.Preferences,
		userID:       cfg.UserID,
		location:     cfg.Location,
		clock:        cfg.Clock,
		logger:       cfg.Logger,
	}
}

// FindBestSlot handles GET /api/v1/slots/best?duration=N
func (h *SchedulingHandler) FindBestSlot(w http.ResponseWriter, r *http.Request) {
	duration, err := parseIntParam(r, "duration", 0)
	if err != nil || duration < 0 || duration > domain.MaxTaskDurationMinutes {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Parameter 'duration' must be between 0 and %d minutes", domain.MaxTaskDurationMinutes))
		return
	}

	suggestion, err := h.findBestSlot.Handle(r.Context(), queries.FindBestSlotQuery{
		UserID:          h.userID,
		DurationMinutes: duration,
	})
	if err != nil {
		h.fail(w, r, "failed to find best slot", err)
		return
	}

	writeJSON(w, http.StatusOK, suggestion)
}

// RankDays handles GET /api/v1/days/rank?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *SchedulingHandler) RankDays(w http.ResponseWriter, r *http.Request) {
	start := domain.StartOfDay(h.clock().In(h.location))
	if from := r.URL.Query().Get("from"); from != "" {
		parsed, err := domain.ParseDate(from, h.location)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Parameter 'from' must be YYYY-MM-DD")
			return
		}
		start = parsed
	}
	end := start.AddDate(0, 0, 6)
	if to := r.URL.Query().Get("to"); to != "" {
		parsed, err := domain.ParseDate(to, h.location)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Parameter 'to' must be YYYY-MM-DD")
			return
		}
		end = parsed
	}

	ranked, err := h.rankDays.Handle(r.Context(), queries.RankDaysQuery{
		UserID:    h.userID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		h.fail(w, r, "failed to rank days", err)
		return
	}

	writeJSON(w, http.StatusOK, ranked)
}

// GetPreferences handles GET /api/v1/preferences
func (h *SchedulingHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.preferences.GetPreferences(r.Context(), h.userID)
	if err != nil {
		h.fail(w, r, "failed to load preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *SchedulingHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, domain.ErrAuthenticationMissing), errors.Is(err, prefsApp.ErrUserRequired):
		writeAPIError(w, ErrUnauthorized)
	case errors.Is(err, domain.ErrInvalidDateRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrSourceUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), msg, "error", err)
		writeAPIError(w, ErrInternalServer)
	}
}

// parseIntParam parses an integer query parameter, returning def when absent.
func parseIntParam(r *http.Request, name string, def int) (int, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return def, nil
	}
	return strconv.Atoi(value)
}
