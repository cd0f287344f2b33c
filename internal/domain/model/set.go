package model

import "github.com/google/uuid"

// EventSet holds events keyed by ID. The first record added for an ID wins and
// iteration follows insertion order.
type EventSet struct {
	order []uuid.UUID
	byID  map[uuid.UUID]Event
}

// NewEventSet builds a set from events, dropping repeated ids.
func NewEventSet(events ...Event) *EventSet {
	s := &EventSet{byID: make(map[uuid.UUID]Event, len(events))}
	for _, e := range events {
		s.Add(e)
	}
	return s
}

// Add inserts e and reports whether its id was new.
func (s *EventSet) Add(e Event) bool {
	if _, ok := s.byID[e.ID]; ok {
		return false
	}
	s.byID[e.ID] = e
	s.order = append(s.order, e.ID)
	return true
}

// Get returns the event with the given id.
func (s *EventSet) Get(id uuid.UUID) (Event, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// Contains reports whether an event with the id is present.
func (s *EventSet) Contains(id uuid.UUID) bool {
	_, ok := s.byID[id]
	return ok
}

// Len returns the number of distinct events.
func (s *EventSet) Len() int {
	return len(s.order)
}

// Events returns the events in insertion order.
func (s *EventSet) Events() []Event {
	out := make([]Event, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}
