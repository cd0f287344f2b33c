package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// RatingsHandler lists and records ratings.
type RatingsHandler struct {
	deps RatingDependencies
}

// NewRatingsHandler creates a new ratings handler.
func NewRatingsHandler(deps RatingDependencies) *RatingsHandler {
	return &RatingsHandler{deps: deps}
}

type rateRequest struct {
	EventID string   `json:"event_id"`
	Score   *float64 `json:"score"`
}

func (req rateRequest) validate() (uuid.UUID, error) {
	if req.EventID == "" {
		return uuid.Nil, errors.New("missing event_id")
	}
	id, err := uuid.Parse(req.EventID)
	if err != nil {
		return uuid.Nil, errors.New("invalid event_id; must be a UUID")
	}
	if req.Score == nil {
		return uuid.Nil, errors.New("missing score")
	}
	return id, nil
}

// HandleRatings handles GET and POST /ratings requests.
func (h *RatingsHandler) HandleRatings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.rate(w, r)
	default:
		methodNotAllowed(w, "api.ratings", http.MethodGet, http.MethodPost)
	}
}

func (h *RatingsHandler) list(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_ratings"
	entries, err := h.deps.RatingEntries(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *RatingsHandler) rate(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_rating"
	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	id, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	rating, err := h.deps.Rate(r.Context(), id, *req.Score)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, rating)
}
