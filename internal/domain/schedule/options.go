package schedule

import (
	"time"

	"github.com/top-on/optimal-congress/pkg/logger"
)

// Option applies a configuration option to the Optimizer.
type Option func(*Optimizer)

// WithSolver replaces the default IntervalSolver.
func WithSolver(s Solver) Option {
	return func(o *Optimizer) {
		if s != nil {
			o.solver = s
		}
	}
}

// WithTimeout bounds a single solve. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *Optimizer) {
		o.timeout = d
	}
}

// WithLogger sets the logger used for solve diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(o *Optimizer) {
		if l != nil {
			o.logger = l
		}
	}
}
