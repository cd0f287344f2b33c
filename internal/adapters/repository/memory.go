package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/top-on/optimal-congress/internal/domain/model"
)

// MemoryStore implements Store in process memory. It backs tests and runs
// with caching disabled; contents are lost on Close.
type MemoryStore struct {
	mu      sync.RWMutex
	events  *model.EventSet
	rooms   []model.Room
	ratings []model.Rating
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: model.NewEventSet()}
}

// ReplaceEvents implements Store.
func (s *MemoryStore) ReplaceEvents(_ context.Context, events []model.Event) error {
	for _, e := range events {
		if err := validateEvent(e); err != nil {
			return err
		}
	}

	set := model.NewEventSet(events...)

	s.mu.Lock()
	s.events = set
	s.mu.Unlock()
	return nil
}

// Events implements Store.
func (s *MemoryStore) Events(_ context.Context) ([]model.Event, error) {
	s.mu.RLock()
	events := s.events.Events()
	s.mu.RUnlock()

	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.ScheduleStart.Equal(b.ScheduleStart) {
			return a.ScheduleStart.Before(b.ScheduleStart)
		}
		return a.Slug < b.Slug
	})
	return events, nil
}

// Event implements Store.
func (s *MemoryStore) Event(_ context.Context, id uuid.UUID) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events.Get(id)
	if !ok {
		return model.Event{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

// ReplaceRooms implements Store.
func (s *MemoryStore) ReplaceRooms(_ context.Context, rooms []model.Room) error {
	seen := make(map[uuid.UUID]struct{}, len(rooms))
	out := make([]model.Room, 0, len(rooms))
	for _, r := range rooms {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}

	s.mu.Lock()
	s.rooms = out
	s.mu.Unlock()
	return nil
}

// Rooms implements Store.
func (s *MemoryStore) Rooms(_ context.Context) ([]model.Room, error) {
	s.mu.RLock()
	rooms := append([]model.Room(nil), s.rooms...)
	s.mu.RUnlock()

	sort.SliceStable(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms, nil
}

// AddRatings implements Store.
func (s *MemoryStore) AddRatings(_ context.Context, ratings ...model.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

next:
	for _, r := range ratings {
		for i, old := range s.ratings {
			if old.EventID == r.EventID && old.Timestamp.Equal(r.Timestamp) {
				s.ratings[i].Score = r.Score
				continue next
			}
		}
		s.ratings = append(s.ratings, r)
	}
	return nil
}

// Ratings implements Store.
func (s *MemoryStore) Ratings(_ context.Context) ([]model.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Rating{}, s.ratings...), nil
}

// Counts implements Store.
func (s *MemoryStore) Counts(_ context.Context) (Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Counts{Events: s.events.Len(), Rooms: len(s.rooms), Ratings: len(s.ratings)}, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
