// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/top-on/optimal-congress/internal/adapters/http/swagger"
	service "github.com/top-on/optimal-congress/internal/app"
	"github.com/top-on/optimal-congress/internal/domain/model"
	"github.com/top-on/optimal-congress/internal/domain/schedule"
	"github.com/top-on/optimal-congress/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	EventDependencies
	RatingDependencies
	ScheduleDependencies
	StatsProvider
}

// Entry mirrors the read shape of a rated event.
type Entry = types.Entry

// Server wires HTTP routes for the planner API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	eventsHandler   *EventsHandler
	ratingsHandler  *RatingsHandler
	scheduleHandler *ScheduleHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		eventsHandler:   NewEventsHandler(deps),
		ratingsHandler:  NewRatingsHandler(deps),
		scheduleHandler: NewScheduleHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandleListEvents, "events"))
	mux.HandleFunc("/events/", MetricsMiddleware(s.eventsHandler.HandleGetEvent, "event"))
	mux.HandleFunc("/ratings", MetricsMiddleware(s.ratingsHandler.HandleRatings, "ratings"))
	mux.HandleFunc("/schedule", MetricsMiddleware(s.scheduleHandler.HandleSchedule, "schedule"))
	mux.HandleFunc("/schedule.ics", MetricsMiddleware(s.scheduleHandler.HandleCalendar, "schedule_ics"))

	swagger.Register(mux)
}

// Handler returns a mux with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

// EventDependencies reads the event cache.
type EventDependencies interface {
	Events(ctx context.Context) ([]model.Event, error)
	UnratedEvents(ctx context.Context) ([]model.Event, error)
	Event(ctx context.Context, id uuid.UUID) (model.Event, error)
}

// RatingDependencies reads and writes ratings.
type RatingDependencies interface {
	RatingEntries(ctx context.Context) ([]Entry, error)
	Rate(ctx context.Context, eventID uuid.UUID, score float64) (model.Rating, error)
}

// ScheduleDependencies optimizes the schedule.
type ScheduleDependencies interface {
	Schedule(ctx context.Context, minScore float64) (types.Schedule, error)
	ExportCalendar(ctx context.Context, w io.Writer, minScore float64) (int, error)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service errors to status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownEvent):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrInvalidScore):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrEmptySchedule):
		writeError(w, http.StatusNotFound, "empty_schedule", err)
	case errors.Is(err, schedule.ErrSolveTimeout):
		writeError(w, http.StatusServiceUnavailable, "solve_timeout", err)
	case errors.Is(err, schedule.ErrOptimizationFailed):
		writeError(w, http.StatusUnprocessableEntity, "optimization_failed", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func methodNotAllowed(w http.ResponseWriter, op string, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
}
