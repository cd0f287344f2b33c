// Package schedule selects the best non-overlapping subset of rated events.
//
// A Problem is the 0/1 program
//
//	maximize   sum(score_i * x_i)
//	subject to x_i + x_j <= 1   for every overlapping pair i < j
//	           x_i in {0, 1}
//
// built from event ratings. Solvers in this package solve it exactly.
package schedule

import (
	"fmt"

	"github.com/top-on/optimal-congress/internal/domain/model"
)

// Variable is the binary decision variable of one event.
type Variable struct {
	// Name is the event slug.
	Name string
	// Coefficient is the objective weight, the event's score.
	Coefficient float64
}

// Constraint forbids selecting both I and J: x_I + x_J <= 1. I < J.
type Constraint struct {
	I, J int
}

// Problem is an immutable scheduling program. Variable i belongs to Events[i].
type Problem struct {
	Variables   []Variable
	Events      []model.Event
	Constraints []Constraint

	conflicts [][]int
}

// NewProblem builds the program from event ratings in input order.
func NewProblem(ers []model.EventRating) (*Problem, error) {
	p := &Problem{
		Variables: make([]Variable, 0, len(ers)),
		Events:    make([]model.Event, 0, len(ers)),
		conflicts: make([][]int, len(ers)),
	}

	names := make(map[string]int, len(ers))
	for i, er := range ers {
		if err := er.Event.Validate(); err != nil {
			return nil, err
		}
		if prev, ok := names[er.Event.Slug]; ok {
			return nil, fmt.Errorf("%w: %q used by variables %d and %d", ErrDuplicateVariableName, er.Event.Slug, prev, i)
		}
		names[er.Event.Slug] = i

		p.Variables = append(p.Variables, Variable{Name: er.Event.Slug, Coefficient: er.Rating.Score})
		p.Events = append(p.Events, er.Event)
	}

	for i := 0; i < len(p.Events); i++ {
		for j := i + 1; j < len(p.Events); j++ {
			if model.EventsOverlap(p.Events[i], p.Events[j]) {
				p.Constraints = append(p.Constraints, Constraint{I: i, J: j})
				p.conflicts[i] = append(p.conflicts[i], j)
				p.conflicts[j] = append(p.conflicts[j], i)
			}
		}
	}

	return p, nil
}

// Len returns the number of variables.
func (p *Problem) Len() int { return len(p.Variables) }

// Conflicts returns the variables that cannot be selected together with i.
func (p *Problem) Conflicts(i int) []int { return p.conflicts[i] }

// Objective evaluates the objective for a selection.
func (p *Problem) Objective(selected []int) float64 {
	var sum float64
	for _, i := range selected {
		sum += p.Variables[i].Coefficient
	}
	return sum
}

// Feasible reports whether a selection satisfies every constraint.
func (p *Problem) Feasible(selected []int) bool {
	chosen := make([]bool, p.Len())
	for _, i := range selected {
		if i < 0 || i >= p.Len() || chosen[i] {
			return false
		}
		chosen[i] = true
	}
	for _, c := range p.Constraints {
		if chosen[c.I] && chosen[c.J] {
			return false
		}
	}
	return true
}
