// Package service orchestrates the cache, the conference API, the rating
// adapters and the optimizer for the CLI and the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/top-on/optimal-congress/internal/adapters/csvio"
	"github.com/top-on/optimal-congress/internal/adapters/ical"
	"github.com/top-on/optimal-congress/internal/adapters/repository"
	"github.com/top-on/optimal-congress/internal/domain/model"
	"github.com/top-on/optimal-congress/internal/domain/rating"
	"github.com/top-on/optimal-congress/internal/domain/schedule"
	"github.com/top-on/optimal-congress/internal/domain/types"
	"github.com/top-on/optimal-congress/pkg/logger"
	"github.com/top-on/optimal-congress/pkg/metrics"
)

// NoMinScore disables the score threshold of Optimize.
var NoMinScore = math.Inf(-1)

// Fetcher loads the published schedule.
type Fetcher interface {
	FetchEvents(ctx context.Context) ([]model.Event, error)
	FetchRooms(ctx context.Context) ([]model.Room, error)
}

// FetchResult reports what Fetch stored.
type FetchResult struct {
	Events int
	Rooms  int
}

// Service implements the planner operations on top of a Store.
type Service struct {
	store     repository.Store
	fetcher   Fetcher
	optimizer *schedule.Optimizer
	logger    logger.Logger

	hubRoute string
	calName  string
	loc      *time.Location
	now      func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the cache. Defaults to an empty MemoryStore.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithFetcher sets the conference API client used by Fetch.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

// WithOptimizer sets the optimizer used by Optimize.
func WithOptimizer(o *schedule.Optimizer) Option {
	return func(s *Service) {
		if o != nil {
			s.optimizer = o
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHubRoute sets the base URL of event pages.
func WithHubRoute(route string) Option {
	return func(s *Service) {
		s.hubRoute = route
	}
}

// WithCalendarName sets the name of exported calendars.
func WithCalendarName(name string) Option {
	return func(s *Service) {
		s.calName = name
	}
}

// WithLocation sets the zone used for displayed times.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the source of rating timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service.
func New(opts ...Option) *Service {
	s := &Service{
		store:     repository.NewMemoryStore(),
		optimizer: schedule.New(),
		logger:    logger.Nop(),
		calName:   "Congress schedule",
		loc:       time.Local,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HubRoute returns the configured base URL of event pages.
func (s *Service) HubRoute() string { return s.hubRoute }

// Location returns the display zone.
func (s *Service) Location() *time.Location { return s.loc }

// Fetch loads events and rooms concurrently and replaces the cached ones.
// Nothing is stored unless both requests succeed.
func (s *Service) Fetch(ctx context.Context) (FetchResult, error) {
	if s.fetcher == nil {
		return FetchResult{}, ErrNoFetcher
	}

	var (
		events []model.Event
		rooms  []model.Room
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = s.fetcher.FetchEvents(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rooms, err = s.fetcher.FetchRooms(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.RecordErrorByComponent("service", "fetch")
		return FetchResult{}, fmt.Errorf("fetch: %w", err)
	}

	if err := s.store.ReplaceEvents(ctx, events); err != nil {
		return FetchResult{}, fmt.Errorf("store events: %w", err)
	}
	if err := s.store.ReplaceRooms(ctx, rooms); err != nil {
		return FetchResult{}, fmt.Errorf("store rooms: %w", err)
	}
	metrics.UpdateCachedEvents(len(events))
	metrics.UpdateCachedRooms(len(rooms))

	s.logger.Info(ctx, "cache updated",
		logger.Int("events", len(events)),
		logger.Int("rooms", len(rooms)),
	)
	return FetchResult{Events: len(events), Rooms: len(rooms)}, nil
}

// Events returns the cached events ordered by start.
func (s *Service) Events(ctx context.Context) ([]model.Event, error) {
	return s.store.Events(ctx)
}

// Event returns a cached event. Unknown ids fail with ErrUnknownEvent.
func (s *Service) Event(ctx context.Context, id uuid.UUID) (model.Event, error) {
	e, err := s.store.Event(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Event{}, fmt.Errorf("%w: %s", ErrUnknownEvent, id)
	}
	return e, err
}

// Rooms returns the cached rooms.
func (s *Service) Rooms(ctx context.Context) ([]model.Room, error) {
	return s.store.Rooms(ctx)
}

// Ratings returns the full rating history.
func (s *Service) Ratings(ctx context.Context) ([]model.Rating, error) {
	return s.store.Ratings(ctx)
}

// LatestRatings returns the latest rating of every cached event that has
// one, best first. Ratings of events missing from the cache are dropped.
func (s *Service) LatestRatings(ctx context.Context) ([]model.EventRating, error) {
	events, ratings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	ers := rating.Join(rating.Latest(ratings), events)
	rating.SortByScore(ers)
	return ers, nil
}

// RatingEntries is LatestRatings rendered for display.
func (s *Service) RatingEntries(ctx context.Context) ([]types.Entry, error) {
	ers, err := s.LatestRatings(ctx)
	if err != nil {
		return nil, err
	}
	rooms, err := s.roomNames(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.Entry, len(ers))
	for i, er := range ers {
		out[i] = types.NewEntry(er, rooms, s.hubRoute, s.loc)
	}
	return out, nil
}

// RatedEvents returns the cached events that have at least one rating.
func (s *Service) RatedEvents(ctx context.Context) ([]model.Event, error) {
	ers, err := s.LatestRatings(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Event, len(ers))
	for i, er := range ers {
		out[i] = er.Event
	}
	schedule.SortByStart(out)
	return out, nil
}

// UnratedEvents returns the cached events without any rating, by start.
func (s *Service) UnratedEvents(ctx context.Context) ([]model.Event, error) {
	events, ratings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return rating.Unrated(events, ratings), nil
}

// Rate stores a new rating for a cached event, stamped with the service
// clock. Earlier ratings stay in the history.
func (s *Service) Rate(ctx context.Context, eventID uuid.UUID, score float64) (model.Rating, error) {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return model.Rating{}, fmt.Errorf("%w: %v", ErrInvalidScore, score)
	}
	if _, err := s.Event(ctx, eventID); err != nil {
		return model.Rating{}, err
	}

	r := model.NewRating(eventID, score, model.WithTimestamp(s.now()))
	if err := s.store.AddRatings(ctx, r); err != nil {
		return model.Rating{}, fmt.Errorf("store rating: %w", err)
	}
	metrics.RecordRating()
	s.updateRatingGauge(ctx)

	s.logger.Debug(ctx, "event rated",
		logger.String("event", eventID.String()),
		logger.Float64("score", score),
	)
	return r, nil
}

// Optimize selects the non-overlapping subset of rated events with maximal
// total score. Events whose latest score is below minScore are left out;
// pass NoMinScore to keep all of them. NaN and +Inf fail with ErrInvalidScore.
func (s *Service) Optimize(ctx context.Context, minScore float64) (schedule.Result, error) {
	res, _, err := s.optimize(ctx, minScore)
	return res, err
}

// Schedule is Optimize rendered for display.
func (s *Service) Schedule(ctx context.Context, minScore float64) (types.Schedule, error) {
	res, ers, err := s.optimize(ctx, minScore)
	if err != nil {
		return types.Schedule{}, err
	}
	rooms, err := s.roomNames(ctx)
	if err != nil {
		return types.Schedule{}, err
	}

	byID := make(map[uuid.UUID]model.EventRating, len(ers))
	for _, er := range ers {
		byID[er.Event.ID] = er
	}
	entries := make([]types.Entry, 0, len(res.Events))
	for _, e := range res.Events {
		entries = append(entries, types.NewEntry(byID[e.ID], rooms, s.hubRoute, s.loc))
	}

	return types.Schedule{
		Events:      entries,
		TotalScore:  res.TotalScore,
		Status:      res.Status.String(),
		Solver:      res.Solver,
		TookMS:      float64(res.Took.Microseconds()) / 1000,
		Candidates:  res.Candidates,
		Constraints: res.Constraints,
	}, nil
}

func (s *Service) optimize(ctx context.Context, minScore float64) (schedule.Result, []model.EventRating, error) {
	if math.IsNaN(minScore) || math.IsInf(minScore, 1) {
		return schedule.Result{}, nil, fmt.Errorf("%w: min score %v", ErrInvalidScore, minScore)
	}
	ers, err := s.LatestRatings(ctx)
	if err != nil {
		return schedule.Result{}, nil, err
	}
	if !math.IsInf(minScore, -1) {
		ers = rating.FilterMinScore(ers, minScore)
	}

	start := time.Now()
	res, err := s.optimizer.Optimize(ctx, ers)
	latency := float64(time.Since(start).Microseconds()) / 1000
	metrics.RecordOptimization(res.Solver, res.Status.String(), latency)
	if err != nil {
		metrics.RecordErrorByComponent("optimizer", res.Status.String())
		return res, nil, fmt.Errorf("optimize: %w", err)
	}
	metrics.UpdateSchedule(res.Candidates, res.Constraints, len(res.Events), res.TotalScore)

	s.logger.Info(ctx, "schedule optimized",
		logger.String("solver", res.Solver),
		logger.Int("candidates", res.Candidates),
		logger.Int("selected", len(res.Events)),
		logger.Float64("score", res.TotalScore),
		logger.Duration("took", res.Took),
	)
	return res, ers, nil
}

// DumpRatings writes the latest ratings as CSV and returns the row count.
func (s *Service) DumpRatings(ctx context.Context, w io.Writer) (int, error) {
	ers, err := s.LatestRatings(ctx)
	if err != nil {
		return 0, err
	}
	if err := csvio.WriteRatings(w, ers, s.hubRoute); err != nil {
		return 0, fmt.Errorf("dump ratings: %w", err)
	}
	return len(ers), nil
}

// LoadRatings reads ratings from CSV and stores each row as a new rating
// stamped now. Events missing from the file keep their ratings.
func (s *Service) LoadRatings(ctx context.Context, r io.Reader) (int, error) {
	rows, err := csvio.ReadRatings(r)
	if err != nil {
		return 0, fmt.Errorf("load ratings: %w", err)
	}

	now := s.now()
	ratings := make([]model.Rating, len(rows))
	for i, row := range rows {
		ratings[i] = model.NewRating(row.EventID, row.Score, model.WithTimestamp(now))
	}
	if err := s.store.AddRatings(ctx, ratings...); err != nil {
		return 0, fmt.Errorf("store ratings: %w", err)
	}
	s.updateRatingGauge(ctx)

	s.logger.Info(ctx, "ratings loaded", logger.Int("rows", len(rows)))
	return len(ratings), nil
}

// ExportCalendar optimizes the schedule and writes it as iCalendar.
// Returns ErrEmptySchedule when nothing would be exported.
func (s *Service) ExportCalendar(ctx context.Context, w io.Writer, minScore float64) (int, error) {
	res, _, err := s.optimize(ctx, minScore)
	if err != nil {
		return 0, err
	}
	if len(res.Events) == 0 {
		return 0, ErrEmptySchedule
	}
	rooms, err := s.store.Rooms(ctx)
	if err != nil {
		return 0, err
	}

	x := ical.NewExporter(
		ical.WithHubRoute(s.hubRoute),
		ical.WithRooms(rooms),
		ical.WithName(s.calName),
		ical.WithClock(s.now),
	)
	if err := x.Encode(w, res.Events); err != nil {
		return 0, fmt.Errorf("export calendar: %w", err)
	}
	return len(res.Events), nil
}

// GetStats returns cache statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) (types.Stats, error) {
	counts, err := s.store.Counts(ctx)
	if err != nil {
		return types.Stats{}, err
	}
	unrated, err := s.UnratedEvents(ctx)
	if err != nil {
		return types.Stats{}, err
	}

	metrics.UpdateCachedEvents(counts.Events)
	metrics.UpdateCachedRooms(counts.Rooms)
	metrics.UpdateStoredRatings(counts.Ratings)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	metrics.UpdateSystemMemoryUsage(mem.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	return types.Stats{
		Events:        counts.Events,
		Rooms:         counts.Rooms,
		Ratings:       counts.Ratings,
		RatedEvents:   counts.Events - len(unrated),
		UnratedEvents: len(unrated),
		Solver:        s.optimizer.SolverName(),
	}, nil
}

func (s *Service) load(ctx context.Context) ([]model.Event, []model.Rating, error) {
	events, err := s.store.Events(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load events: %w", err)
	}
	ratings, err := s.store.Ratings(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load ratings: %w", err)
	}
	return events, ratings, nil
}

func (s *Service) roomNames(ctx context.Context) (map[string]string, error) {
	rooms, err := s.store.Rooms(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(rooms))
	for _, r := range rooms {
		names[r.ID.String()] = r.Name
	}
	return names, nil
}

func (s *Service) updateRatingGauge(ctx context.Context) {
	counts, err := s.store.Counts(ctx)
	if err != nil {
		s.logger.Warn(ctx, "count ratings", logger.Error(err))
		return
	}
	metrics.UpdateStoredRatings(counts.Ratings)
}
