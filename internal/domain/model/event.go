// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Display layouts used by String.
const (
	startLayout = "2006-01-02 15:04"
	endLayout   = "15:04"
)

// Event is a schedulable talk or session with a fixed time interval.
// Fields mirror the conference API schema for /events.
//
// Identity is the ID alone: two events with the same ID are the same event,
// even when the remaining metadata changed between fetches.
type Event struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"` // unique per event, doubles as optimization variable name
	Track         string     `json:"track,omitempty"`
	Assembly      string     `json:"assembly"`
	Room          *uuid.UUID `json:"room,omitempty"`
	Language      Languages  `json:"language,omitempty"`
	Description   string     `json:"description"`
	ScheduleStart time.Time  `json:"schedule_start"`
	ScheduleEnd   time.Time  `json:"schedule_end"`
}

// EventOption sets optional metadata on an Event built with NewEvent.
type EventOption func(*Event)

// WithName sets the display name.
func WithName(name string) EventOption {
	return func(e *Event) { e.Name = name }
}

// WithTrack sets the track/category.
func WithTrack(track string) EventOption {
	return func(e *Event) { e.Track = track }
}

// WithAssembly sets the assembly/group name.
func WithAssembly(assembly string) EventOption {
	return func(e *Event) { e.Assembly = assembly }
}

// WithRoom references the room the event takes place in.
func WithRoom(room uuid.UUID) EventOption {
	return func(e *Event) {
		r := room
		e.Room = &r
	}
}

// WithLanguage sets the spoken languages.
func WithLanguage(langs ...string) EventOption {
	return func(e *Event) { e.Language = ParseLanguages(strings.Join(langs, ",")) }
}

// WithDescription sets the free-text description.
func WithDescription(desc string) EventOption {
	return func(e *Event) { e.Description = desc }
}

// NewEvent builds a validated Event. The name defaults to the slug.
func NewEvent(id uuid.UUID, slug string, start, end time.Time, opts ...EventOption) (Event, error) {
	e := Event{
		ID:            id,
		Name:          slug,
		Slug:          slug,
		ScheduleStart: start,
		ScheduleEnd:   end,
	}
	for _, opt := range opts {
		opt(&e)
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Validate checks the event invariants.
func (e Event) Validate() error {
	if !e.ScheduleEnd.After(e.ScheduleStart) {
		return fmt.Errorf("event %s (%s): %w: end %s is not after start %s",
			e.ID, e.Slug, ErrInvalidInterval,
			e.ScheduleEnd.Format(time.RFC3339), e.ScheduleStart.Format(time.RFC3339))
	}
	return nil
}

// Equal reports whether both records describe the same event.
func (e Event) Equal(o Event) bool {
	return e.ID == o.ID
}

// Duration returns the scheduled length of the event.
func (e Event) Duration() time.Duration {
	return e.ScheduleEnd.Sub(e.ScheduleStart)
}

// URL returns the hub page of the event below route.
func (e Event) URL(route string) string {
	return strings.TrimRight(route, "/") + "/" + e.Slug
}

// String renders the event as 'name' (2006-01-02 15:04 - 15:04).
func (e Event) String() string {
	return fmt.Sprintf("'%s' (%s - %s)",
		e.Name, e.ScheduleStart.Format(startLayout), e.ScheduleEnd.Format(endLayout))
}

// EventsOverlap reports whether the half-open intervals [start, end) of a and b
// intersect. Events that only touch at an endpoint do not overlap.
func EventsOverlap(a, b Event) bool {
	return a.ScheduleStart.Before(b.ScheduleEnd) && b.ScheduleStart.Before(a.ScheduleEnd)
}

// Room is a location at the venue. It only annotates display output.
type Room struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Assembly string    `json:"assembly"`
}

// Equal reports whether both records describe the same room.
func (r Room) Equal(o Room) bool {
	return r.ID == o.ID
}
