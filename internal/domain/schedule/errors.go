package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateVariableName is returned when two events share a slug.
	ErrDuplicateVariableName = errors.New("duplicate variable name")
	// ErrOptimizationFailed matches every *OptimizationFailedError.
	ErrOptimizationFailed = errors.New("optimization failed")
	// ErrSolveTimeout is returned when the solver did not finish in time.
	ErrSolveTimeout = errors.New("solve timeout")
	// ErrUnknownSolver is returned by SolverByName.
	ErrUnknownSolver = errors.New("unknown solver")
)

// OptimizationFailedError reports a solver that terminated without an
// optimal solution.
type OptimizationFailedError struct {
	Status Status
}

func (e *OptimizationFailedError) Error() string {
	return fmt.Sprintf("optimization failed with status %s", e.Status)
}

// Is makes errors.Is(err, ErrOptimizationFailed) hold.
func (e *OptimizationFailedError) Is(target error) bool {
	return target == ErrOptimizationFailed
}
