package schedule

import (
	"context"
	"fmt"
	"sort"
)

// IntervalSolver solves the program as weighted interval scheduling.
//
// Events overlap exactly when their half-open intervals intersect, so the
// conflict graph is an interval graph and a dynamic program over events
// sorted by end time is exact. It runs in O(n log n) after the sort.
type IntervalSolver struct{}

// NewIntervalSolver returns the default solver.
func NewIntervalSolver() *IntervalSolver { return &IntervalSolver{} }

// Name implements Solver.
func (*IntervalSolver) Name() string { return SolverInterval }

// Solve implements Solver.
func (*IntervalSolver) Solve(ctx context.Context, p *Problem) (Solution, error) {
	n := p.Len()
	if n == 0 {
		return Solution{Status: StatusOptimal}, nil
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ea, eb := p.Events[order[a]], p.Events[order[b]]
		if !ea.ScheduleEnd.Equal(eb.ScheduleEnd) {
			return ea.ScheduleEnd.Before(eb.ScheduleEnd)
		}
		if !ea.ScheduleStart.Equal(eb.ScheduleStart) {
			return ea.ScheduleStart.Before(eb.ScheduleStart)
		}
		return order[a] < order[b]
	})

	// best[k] is the optimum over the first k events in end order.
	// prev[k] is how many events end at or before event k starts.
	best := make([]float64, n+1)
	prev := make([]int, n)
	take := make([]bool, n)

	for k := 0; k < n; k++ {
		if k%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Solution{Status: StatusNotSolved}, fmt.Errorf("interval solver: %w", err)
			}
		}

		e := p.Events[order[k]]
		prev[k] = sort.Search(k, func(j int) bool {
			return p.Events[order[j]].ScheduleEnd.After(e.ScheduleStart)
		})

		with := p.Variables[order[k]].Coefficient + best[prev[k]]
		if with >= best[k] {
			best[k+1] = with
			take[k] = true
		} else {
			best[k+1] = best[k]
		}
	}

	selected := make([]int, 0)
	for k := n; k > 0; {
		if take[k-1] {
			selected = append(selected, order[k-1])
			k = prev[k-1]
		} else {
			k--
		}
	}
	sort.Ints(selected)

	return Solution{Selected: selected, Objective: p.Objective(selected), Status: StatusOptimal}, nil
}
