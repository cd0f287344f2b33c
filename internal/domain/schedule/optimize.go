package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/top-on/optimal-congress/internal/domain/model"
	"github.com/top-on/optimal-congress/pkg/logger"
)

// Result is an optimal schedule. Events are ordered by start time.
type Result struct {
	Events     []model.Event
	TotalScore float64
	Status     Status
	Solver     string
	Took       time.Duration

	// Candidates and Constraints describe the size of the solved problem.
	Candidates  int
	Constraints int
}

// Optimizer builds and solves scheduling problems.
type Optimizer struct {
	solver  Solver
	timeout time.Duration
	logger  logger.Logger
}

// New creates an Optimizer using IntervalSolver and no timeout unless
// configured otherwise.
func New(opts ...Option) *Optimizer {
	o := &Optimizer{
		solver: NewIntervalSolver(),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SolverName returns the name of the configured solver.
func (o *Optimizer) SolverName() string { return o.solver.Name() }

// Optimize returns the subset of ers with maximal total score such that no
// two selected events overlap.
//
// Empty input yields an empty, optimal result. A solver that ends in any
// status other than StatusOptimal produces an *OptimizationFailedError, and
// running past the timeout produces ErrSolveTimeout.
func (o *Optimizer) Optimize(ctx context.Context, ers []model.EventRating) (Result, error) {
	problem, err := NewProblem(ers)
	if err != nil {
		return Result{Solver: o.solver.Name()}, fmt.Errorf("build problem: %w", err)
	}
	if problem.Len() == 0 {
		return Result{Events: []model.Event{}, Status: StatusOptimal, Solver: o.solver.Name()}, nil
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	o.logger.Debug(ctx, "solving schedule",
		logger.String("solver", o.solver.Name()),
		logger.Int("variables", problem.Len()),
		logger.Int("constraints", len(problem.Constraints)),
	)

	start := time.Now()
	sol, err := o.solver.Solve(ctx, problem)
	took := time.Since(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{Solver: o.solver.Name(), Status: StatusNotSolved}, fmt.Errorf("%w after %s: %w", ErrSolveTimeout, took.Round(time.Millisecond), err)
		}
		return Result{Solver: o.solver.Name(), Status: StatusNotSolved}, fmt.Errorf("solve: %w", err)
	}
	if sol.Status != StatusOptimal {
		return Result{Solver: o.solver.Name(), Status: sol.Status}, &OptimizationFailedError{Status: sol.Status}
	}
	if !problem.Feasible(sol.Selected) {
		return Result{Solver: o.solver.Name(), Status: StatusInfeasible}, &OptimizationFailedError{Status: StatusInfeasible}
	}

	events := make([]model.Event, 0, len(sol.Selected))
	for _, i := range sol.Selected {
		events = append(events, problem.Events[i])
	}
	SortByStart(events)

	o.logger.Debug(ctx, "schedule solved",
		logger.Int("selected", len(events)),
		logger.Float64("objective", sol.Objective),
		logger.Duration("took", took),
	)

	return Result{
		Events:      events,
		TotalScore:  sol.Objective,
		Status:      sol.Status,
		Solver:      o.solver.Name(),
		Took:        took,
		Candidates:  problem.Len(),
		Constraints: len(problem.Constraints),
	}, nil
}

// Optimize solves with the default Optimizer and returns the selected events.
func Optimize(ctx context.Context, ers []model.EventRating) ([]model.Event, error) {
	res, err := New().Optimize(ctx, ers)
	if err != nil {
		return nil, err
	}
	return res.Events, nil
}

// SortByStart orders events by start, then end, then slug.
func SortByStart(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.ScheduleStart.Equal(b.ScheduleStart) {
			return a.ScheduleStart.Before(b.ScheduleStart)
		}
		if !a.ScheduleEnd.Equal(b.ScheduleEnd) {
			return a.ScheduleEnd.Before(b.ScheduleEnd)
		}
		return a.Slug < b.Slug
	})
}
