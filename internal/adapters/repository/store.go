// Package repository persists the event cache and the rating history.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/top-on/optimal-congress/internal/domain/model"
)

// Counts summarizes the store contents.
type Counts struct {
	Events  int `json:"events"`
	Rooms   int `json:"rooms"`
	Ratings int `json:"ratings"`
}

// Store provides read/write access to cached events and rooms and to the
// append-only rating history.
type Store interface {
	// ReplaceEvents overwrites the cached events with events.
	ReplaceEvents(ctx context.Context, events []model.Event) error
	// Events returns the cached events ordered by start, then slug.
	Events(ctx context.Context) ([]model.Event, error)
	// Event returns a cached event. Returns ErrNotFound if it is unknown.
	Event(ctx context.Context, id uuid.UUID) (model.Event, error)

	// ReplaceRooms overwrites the cached rooms with rooms.
	ReplaceRooms(ctx context.Context, rooms []model.Room) error
	// Rooms returns the cached rooms ordered by name.
	Rooms(ctx context.Context) ([]model.Room, error)

	// AddRatings appends ratings to the history. A rating for an event and
	// timestamp already present replaces the stored score.
	AddRatings(ctx context.Context, ratings ...model.Rating) error
	// Ratings returns the full history in insertion order.
	Ratings(ctx context.Context) ([]model.Rating, error)

	// Counts returns the number of stored events, rooms and ratings.
	Counts(ctx context.Context) (Counts, error)

	Close() error
}
