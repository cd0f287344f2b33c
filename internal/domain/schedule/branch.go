package schedule

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// BranchAndBoundSolver solves the program over its explicit pairwise
// constraints, without relying on the interval structure. The search is
// exponential in the worst case and is meant for modest inputs and as a
// cross-check of IntervalSolver.
type BranchAndBoundSolver struct {
	nodeLimit int
}

// BranchOption configures a BranchAndBoundSolver.
type BranchOption func(*BranchAndBoundSolver)

// WithNodeLimit stops the search after limit nodes; the solution is then
// reported with StatusNotSolved. Zero means unlimited.
func WithNodeLimit(limit int) BranchOption {
	return func(s *BranchAndBoundSolver) {
		if limit >= 0 {
			s.nodeLimit = limit
		}
	}
}

// NewBranchAndBoundSolver creates the exact search solver.
func NewBranchAndBoundSolver(opts ...BranchOption) *BranchAndBoundSolver {
	s := &BranchAndBoundSolver{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements Solver.
func (*BranchAndBoundSolver) Name() string { return SolverBranchAndBound }

type bnbState struct {
	p       *Problem
	order   []int
	suffix  []float64
	blocked []int
	chosen  []int

	best      []int
	bestValue float64

	nodes     int
	nodeLimit int
	limited   bool
	ctx       context.Context
	err       error
}

// Solve implements Solver.
func (s *BranchAndBoundSolver) Solve(ctx context.Context, p *Problem) (Solution, error) {
	n := p.Len()
	if n == 0 {
		return Solution{Status: StatusOptimal}, nil
	}
	if err := ctx.Err(); err != nil {
		return Solution{Status: StatusNotSolved}, fmt.Errorf("branch and bound solver: %w", err)
	}

	// Branch on high scores first so good incumbents appear early.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return p.Variables[order[a]].Coefficient > p.Variables[order[b]].Coefficient
	})

	// suffix[k] bounds what variables order[k:] can still add.
	suffix := make([]float64, n+1)
	for k := n - 1; k >= 0; k-- {
		suffix[k] = suffix[k+1] + math.Max(0, p.Variables[order[k]].Coefficient)
	}

	st := &bnbState{
		p:         p,
		order:     order,
		suffix:    suffix,
		blocked:   make([]int, n),
		bestValue: math.Inf(-1),
		nodeLimit: s.nodeLimit,
		ctx:       ctx,
	}
	st.search(0, 0)

	if st.err != nil {
		return Solution{Status: StatusNotSolved}, fmt.Errorf("branch and bound solver: %w", st.err)
	}
	if st.limited {
		return Solution{Status: StatusNotSolved}, nil
	}

	selected := append([]int(nil), st.best...)
	sort.Ints(selected)
	return Solution{Selected: selected, Objective: p.Objective(selected), Status: StatusOptimal}, nil
}

// search explores variables order[k:], given the chosen ones score value.
// It returns false once the search must stop.
func (st *bnbState) search(k int, value float64) bool {
	st.nodes++
	if st.nodeLimit > 0 && st.nodes > st.nodeLimit {
		st.limited = true
		return false
	}
	if st.nodes%ctxCheckInterval == 0 {
		if err := st.ctx.Err(); err != nil {
			st.err = err
			return false
		}
	}

	if value+st.suffix[k] <= st.bestValue {
		return true
	}
	if k == len(st.order) {
		st.bestValue = value
		st.best = append(st.best[:0], st.chosen...)
		return true
	}

	i := st.order[k]
	coef := st.p.Variables[i].Coefficient

	// A negative variable never belongs to a strictly better selection.
	if st.blocked[i] == 0 && coef >= 0 {
		st.chosen = append(st.chosen, i)
		for _, j := range st.p.Conflicts(i) {
			st.blocked[j]++
		}

		ok := st.search(k+1, value+coef)

		for _, j := range st.p.Conflicts(i) {
			st.blocked[j]--
		}
		st.chosen = st.chosen[:len(st.chosen)-1]
		if !ok {
			return false
		}
	}

	return st.search(k+1, value)
}
