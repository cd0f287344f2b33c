package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/top-on/optimal-congress/internal/adapters/http/api"
	service "github.com/top-on/optimal-congress/internal/app"
	"github.com/top-on/optimal-congress/internal/domain/model"
	"github.com/top-on/optimal-congress/internal/domain/schedule"
	"github.com/top-on/optimal-congress/internal/domain/types"
)

// Mock implementation of api.Dependencies.
type mockDeps struct {
	events      []model.Event
	entries     []types.Entry
	sched       types.Schedule
	stats       types.Stats
	err         error
	gotMinScore float64
	rated       []model.Rating
}

func (m *mockDeps) Events(context.Context) ([]model.Event, error) { return m.events, m.err }

func (m *mockDeps) UnratedEvents(context.Context) ([]model.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.events[:1], nil
}

func (m *mockDeps) Event(_ context.Context, id uuid.UUID) (model.Event, error) {
	for _, e := range m.events {
		if e.ID == id {
			return e, nil
		}
	}
	return model.Event{}, fmt.Errorf("%w: %s", service.ErrUnknownEvent, id)
}

func (m *mockDeps) RatingEntries(context.Context) ([]types.Entry, error) { return m.entries, m.err }

func (m *mockDeps) Rate(ctx context.Context, id uuid.UUID, score float64) (model.Rating, error) {
	if _, err := m.Event(ctx, id); err != nil {
		return model.Rating{}, err
	}
	r := model.NewRating(id, score)
	m.rated = append(m.rated, r)
	return r, nil
}

func (m *mockDeps) Schedule(_ context.Context, minScore float64) (types.Schedule, error) {
	m.gotMinScore = minScore
	return m.sched, m.err
}

func (m *mockDeps) ExportCalendar(_ context.Context, w io.Writer, minScore float64) (int, error) {
	m.gotMinScore = minScore
	if m.err != nil {
		return 0, m.err
	}
	_, err := io.WriteString(w, "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")
	return 1, err
}

func (m *mockDeps) GetStats(context.Context) (types.Stats, error) { return m.stats, m.err }

func newDeps() *mockDeps {
	start := time.Date(2023, 12, 27, 10, 0, 0, 0, time.UTC)
	a, _ := model.NewEvent(uuid.New(), "alpha", start, start.Add(time.Hour), model.WithName("Alpha"))
	b, _ := model.NewEvent(uuid.New(), "beta", start.Add(time.Hour), start.Add(2*time.Hour), model.WithName("Beta"))
	return &mockDeps{
		events:  []model.Event{a, b},
		entries: []types.Entry{{EventID: a.ID.String(), Slug: "alpha", Score: 9}},
		sched: types.Schedule{
			Events:     []types.Entry{{EventID: a.ID.String(), Slug: "alpha", Score: 9}},
			TotalScore: 9,
			Status:     "Optimal",
			Solver:     "interval",
		},
		stats: types.Stats{Events: 2, Ratings: 1, RatedEvents: 1, UnratedEvents: 1, Solver: "interval"},
	}
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(rec *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return body.Code
}

func TestServer_Routes(t *testing.T) {
	Convey("Given a server over mock dependencies", t, func() {
		deps := newDeps()
		h := api.NewServer(deps).Handler()

		Convey("When checking health", func() {
			rec := do(h, http.MethodGet, "/healthz", "")

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("When fetching the API description", func() {
			rec := do(h, http.MethodGet, "/openapi.yaml", "")

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "/schedule.ics:")
		})

		Convey("When scraping metrics after a request", func() {
			do(h, http.MethodGet, "/healthz", "")
			rec := do(h, http.MethodGet, "/metrics", "")

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "congress_planner_http_requests_total")
		})

		Convey("When reading stats", func() {
			rec := do(h, http.MethodGet, "/stats", "")

			var stats types.Stats
			So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
			So(stats.Events, ShouldEqual, 2)
			So(stats.UnratedEvents, ShouldEqual, 1)
		})

		Convey("When listing events", func() {
			rec := do(h, http.MethodGet, "/events", "")

			var events []model.Event
			So(json.Unmarshal(rec.Body.Bytes(), &events), ShouldBeNil)
			So(events, ShouldHaveLength, 2)
			So(events[1].Slug, ShouldEqual, "beta")

			Convey("And filtering unrated ones", func() {
				rec := do(h, http.MethodGet, "/events?unrated=true", "")
				So(json.Unmarshal(rec.Body.Bytes(), &events), ShouldBeNil)
				So(events, ShouldHaveLength, 1)
			})

			Convey("And passing a bad filter", func() {
				rec := do(h, http.MethodGet, "/events?unrated=maybe", "")
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When getting one event", func() {
			rec := do(h, http.MethodGet, "/events/"+deps.events[0].ID.String(), "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"slug":"alpha"`)

			So(do(h, http.MethodGet, "/events/"+uuid.NewString(), "").Code, ShouldEqual, http.StatusNotFound)
			So(do(h, http.MethodGet, "/events/not-a-uuid", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When listing ratings", func() {
			rec := do(h, http.MethodGet, "/ratings", "")

			var entries []types.Entry
			So(json.Unmarshal(rec.Body.Bytes(), &entries), ShouldBeNil)
			So(entries, ShouldHaveLength, 1)
			So(entries[0].Score, ShouldEqual, 9.0)
		})

		Convey("When posting a rating", func() {
			body := fmt.Sprintf(`{"event_id":%q,"score":7.5}`, deps.events[1].ID)
			rec := do(h, http.MethodPost, "/ratings", body)

			Convey("Then it is recorded", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
				So(deps.rated, ShouldHaveLength, 1)
				So(deps.rated[0].Score, ShouldEqual, 7.5)
			})
		})

		Convey("When posting invalid ratings", func() {
			So(do(h, http.MethodPost, "/ratings", `{`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodPost, "/ratings", `{"event_id":"x","score":1}`).Code, ShouldEqual, http.StatusBadRequest)

			missing := fmt.Sprintf(`{"event_id":%q}`, deps.events[0].ID)
			So(do(h, http.MethodPost, "/ratings", missing).Code, ShouldEqual, http.StatusBadRequest)

			unknown := fmt.Sprintf(`{"event_id":%q,"score":1}`, uuid.New())
			rec := do(h, http.MethodPost, "/ratings", unknown)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(rec), ShouldEqual, "not_found")
			So(deps.rated, ShouldBeEmpty)
		})

		Convey("When using an unsupported method", func() {
			rec := do(h, http.MethodDelete, "/ratings", "")
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(rec.Header().Values("Allow"), ShouldResemble, []string{http.MethodGet, http.MethodPost})
		})
	})
}

func TestServer_Schedule(t *testing.T) {
	Convey("Given a server over mock dependencies", t, func() {
		deps := newDeps()
		h := api.NewServer(deps).Handler()

		Convey("When requesting the schedule without a threshold", func() {
			rec := do(h, http.MethodGet, "/schedule", "")

			var sched types.Schedule
			So(json.Unmarshal(rec.Body.Bytes(), &sched), ShouldBeNil)
			So(sched.TotalScore, ShouldEqual, 9.0)
			So(sched.Events[0].Slug, ShouldEqual, "alpha")
			So(deps.gotMinScore, ShouldEqual, service.NoMinScore)
		})

		Convey("When requesting the schedule with a threshold", func() {
			rec := do(h, http.MethodGet, "/schedule?min_score=5", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.gotMinScore, ShouldEqual, 5.0)

			So(do(h, http.MethodGet, "/schedule?min_score=high", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the threshold is not a finite number", func() {
			for _, raw := range []string{"NaN", "Inf", "-Inf", "+Infinity"} {
				deps.gotMinScore = 42
				rec := do(h, http.MethodGet, "/schedule?min_score="+url.QueryEscape(raw), "")

				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(rec), ShouldEqual, "bad_request")
				So(deps.gotMinScore, ShouldEqual, 42.0)

				So(do(h, http.MethodGet, "/schedule.ics?min_score="+url.QueryEscape(raw), "").Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When requesting the calendar", func() {
			rec := do(h, http.MethodGet, "/schedule.ics?min_score=2", "")

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldStartWith, "text/calendar")
			So(rec.Body.String(), ShouldStartWith, "BEGIN:VCALENDAR")
			So(deps.gotMinScore, ShouldEqual, 2.0)
		})

		Convey("When the service fails", func() {
			cases := []struct {
				err    error
				status int
				code   string
			}{
				{fmt.Errorf("optimize: %w", schedule.ErrSolveTimeout), http.StatusServiceUnavailable, "solve_timeout"},
				{&schedule.OptimizationFailedError{Status: schedule.StatusInfeasible}, http.StatusUnprocessableEntity, "optimization_failed"},
				{service.ErrEmptySchedule, http.StatusNotFound, "empty_schedule"},
				{errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
			}
			for _, c := range cases {
				deps.err = c.err
				rec := do(h, http.MethodGet, "/schedule.ics", "")
				So(rec.Code, ShouldEqual, c.status)
				So(decodeError(rec), ShouldEqual, c.code)
			}
		})
	})
}

func TestErrorKinds(t *testing.T) {
	Convey("Given a wrapped API error", t, func() {
		cause := errors.New("eof")
		err := api.WrapKind("api.post_rating", api.ErrBadRequest, cause)

		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "api.post_rating: bad request: eof")
		So(api.NewKind("api.stats", api.ErrMethodNotAllowed).Error(), ShouldEqual, "api.stats: method not allowed")
	})
}
