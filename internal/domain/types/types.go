// Package types contains the response shapes shared by the service and the
// HTTP API.
package types

import (
	"time"

	"github.com/top-on/optimal-congress/internal/domain/model"
)

// Entry is an event with its latest score.
type Entry struct {
	EventID string    `json:"event_id"`
	Name    string    `json:"name"`
	Slug    string    `json:"slug"`
	Room    string    `json:"room,omitempty"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Score   float64   `json:"score"`
	RatedAt time.Time `json:"rated_at"`
	URL     string    `json:"url,omitempty"`
}

// NewEntry converts er. rooms maps room ids to names; hubRoute may be empty.
func NewEntry(er model.EventRating, rooms map[string]string, hubRoute string, loc *time.Location) Entry {
	e := er.Event
	entry := Entry{
		EventID: e.ID.String(),
		Name:    e.Name,
		Slug:    e.Slug,
		Start:   e.ScheduleStart.In(loc),
		End:     e.ScheduleEnd.In(loc),
		Score:   er.Rating.Score,
		RatedAt: er.Rating.Timestamp.In(loc),
	}
	if e.Room != nil {
		entry.Room = rooms[e.Room.String()]
	}
	if hubRoute != "" {
		entry.URL = e.URL(hubRoute)
	}
	return entry
}

// Schedule is an optimized, non-overlapping selection of events.
type Schedule struct {
	Events      []Entry `json:"events"`
	TotalScore  float64 `json:"total_score"`
	Status      string  `json:"status"`
	Solver      string  `json:"solver"`
	TookMS      float64 `json:"took_ms"`
	Candidates  int     `json:"candidates"`
	Constraints int     `json:"constraints"`
}

// Stats summarizes the local cache.
type Stats struct {
	Events        int    `json:"events"`
	Rooms         int    `json:"rooms"`
	Ratings       int    `json:"ratings"`
	RatedEvents   int    `json:"rated_events"`
	UnratedEvents int    `json:"unrated_events"`
	Solver        string `json:"solver"`
}
