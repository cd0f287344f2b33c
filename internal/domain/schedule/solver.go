package schedule

import (
	"context"
	"fmt"
	"strings"
)

// Solver names accepted by SolverByName.
const (
	SolverInterval       = "interval"
	SolverBranchAndBound = "branch_and_bound"
)

// ctxCheckInterval is how many steps a solver takes between context checks.
const ctxCheckInterval = 1024

// Solution is a solver's answer. Selected holds variable indices in
// ascending order.
type Solution struct {
	Selected  []int
	Objective float64
	Status    Status
}

// Solver solves a Problem exactly.
type Solver interface {
	// Solve honors ctx for cancellation; on expiry it returns ctx's error.
	Solve(ctx context.Context, p *Problem) (Solution, error)
	// Name identifies the solver in logs and config.
	Name() string
}

// SolverByName returns the solver registered under name.
func SolverByName(name string) (Solver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SolverInterval:
		return NewIntervalSolver(), nil
	case SolverBranchAndBound, "bnb":
		return NewBranchAndBoundSolver(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSolver, name)
	}
}
