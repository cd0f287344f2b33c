package api

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"

	service "github.com/top-on/optimal-congress/internal/app"
)

// ScheduleHandler serves the optimized schedule.
type ScheduleHandler struct {
	deps ScheduleDependencies
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(deps ScheduleDependencies) *ScheduleHandler {
	return &ScheduleHandler{deps: deps}
}

// minScore reads the optional min_score query parameter. It must be a
// finite number.
func minScore(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("min_score")
	if raw == "" {
		return service.NoMinScore, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("min_score %q is not a finite number", raw)
	}
	return v, nil
}

// HandleSchedule handles GET /schedule[?min_score=] requests.
func (h *ScheduleHandler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "api.schedule"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, op, http.MethodGet)
		return
	}
	threshold, err := minScore(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	sched, err := h.deps.Schedule(r.Context(), threshold)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if sched.Events == nil {
		sched.Events = []Entry{}
	}
	writeJSON(w, http.StatusOK, sched)
}

// HandleCalendar handles GET /schedule.ics[?min_score=] requests.
func (h *ScheduleHandler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	const op = "api.schedule_ics"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, op, http.MethodGet)
		return
	}
	threshold, err := minScore(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Buffer so that a failed export still gets a JSON error response.
	var buf bytes.Buffer
	if _, err := h.deps.ExportCalendar(r.Context(), &buf, threshold); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
