package model

import (
	"time"

	"github.com/google/uuid"
)

// Rating is a timestamped utility score for an event, higher is better.
//
// Ratings are never updated in place: rating an event again creates a new
// record, the latest one wins (see the rating package). The referenced event
// does not have to be known, it may have been dropped from the cache since.
type Rating struct {
	EventID   uuid.UUID `json:"event_id"`
	Score     float64   `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// RatingOption customizes a Rating built with NewRating.
type RatingOption func(*Rating)

// WithTimestamp overrides the creation time.
func WithTimestamp(ts time.Time) RatingOption {
	return func(r *Rating) { r.Timestamp = ts }
}

// NewRating creates a rating stamped with the current time.
func NewRating(eventID uuid.UUID, score float64, opts ...RatingOption) Rating {
	r := Rating{
		EventID:   eventID,
		Score:     score,
		Timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Equal compares the full field tuple. Timestamps compare as instants.
func (r Rating) Equal(o Rating) bool {
	return r.EventID == o.EventID && r.Score == o.Score && r.Timestamp.Equal(o.Timestamp)
}

// EventRating pairs an event with the rating used for it.
type EventRating struct {
	Event  Event  `json:"event"`
	Rating Rating `json:"rating"`
}

// Equal compares the event identity and the rating tuple.
func (er EventRating) Equal(o EventRating) bool {
	return er.Event.Equal(o.Event) && er.Rating.Equal(o.Rating)
}
