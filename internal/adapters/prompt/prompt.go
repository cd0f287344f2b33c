// Package prompt asks the user to rate events one by one on a terminal.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/top-on/optimal-congress/internal/domain/model"
)

const (
	question = "Rate from 0 to 10 (Enter to exit): "
	minScore = 0
	maxScore = 10
)

// SaveFunc persists one rating as soon as it is given.
type SaveFunc func(ctx context.Context, r model.Rating) error

// Option applies a configuration option to the Prompter.
type Option func(*Prompter)

// WithHubRoute prints the event page URL under each event.
func WithHubRoute(route string) Option {
	return func(p *Prompter) {
		p.hubRoute = route
	}
}

// WithLocation shows event times in loc.
func WithLocation(loc *time.Location) Option {
	return func(p *Prompter) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithClock overrides the rating timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Prompter) {
		if now != nil {
			p.now = now
		}
	}
}

// Prompter reads ratings from in and writes questions to out.
type Prompter struct {
	in       *bufio.Reader
	out      io.Writer
	hubRoute string
	loc      *time.Location
	now      func() time.Time
}

// New creates a Prompter.
func New(in io.Reader, out io.Writer, opts ...Option) *Prompter {
	p := &Prompter{
		in:  bufio.NewReader(in),
		out: out,
		loc: time.Local,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Rate asks for a score for each event in order and saves every answer
// immediately. An empty answer or end of input stops early. Answers that
// are not a number between 0 and 10 are asked again. Rate returns the number
// of saved ratings.
func (p *Prompter) Rate(ctx context.Context, events []model.Event, save SaveFunc) (int, error) {
	saved := 0
	for i, e := range events {
		if err := ctx.Err(); err != nil {
			return saved, err
		}

		fmt.Fprintf(p.out, "\nEvent (%d/%d):\n  %s\n", i+1, len(events), p.describe(e))
		if p.hubRoute != "" {
			fmt.Fprintf(p.out, "  %s\n", e.URL(p.hubRoute))
		}

		score, ok, err := p.ask()
		if err != nil {
			return saved, err
		}
		if !ok {
			fmt.Fprintln(p.out, "\nExiting.")
			return saved, nil
		}

		r := model.NewRating(e.ID, score, model.WithTimestamp(p.now()))
		if err := save(ctx, r); err != nil {
			return saved, fmt.Errorf("save rating for %s: %w", e.Slug, err)
		}
		fmt.Fprintf(p.out, "Saving rating '%s' for event '%s'...\n", formatScore(score), e.Name)
		saved++
	}
	return saved, nil
}

// ask returns ok=false when the user wants to stop.
func (p *Prompter) ask() (float64, bool, error) {
	for {
		fmt.Fprint(p.out, question)

		line, err := p.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, false, fmt.Errorf("read answer: %w", err)
		}
		answer := strings.TrimSpace(line)
		if answer == "" {
			return 0, false, nil
		}

		score, perr := strconv.ParseFloat(answer, 64)
		if perr == nil && !math.IsNaN(score) && score >= minScore && score <= maxScore {
			return score, true, nil
		}
		fmt.Fprintf(p.out, "Invalid rating %q, enter a number from %d to %d.\n", answer, minScore, maxScore)

		if errors.Is(err, io.EOF) {
			return 0, false, nil
		}
	}
}

func (p *Prompter) describe(e model.Event) string {
	local := e
	local.ScheduleStart = e.ScheduleStart.In(p.loc)
	local.ScheduleEnd = e.ScheduleEnd.In(p.loc)
	return local.String()
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'g', -1, 64)
}
