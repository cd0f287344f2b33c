// Package rating aggregates rating history and pairs ratings with events.
package rating

import (
	"sort"

	"github.com/google/uuid"
	"github.com/top-on/optimal-congress/internal/domain/model"
)

// Latest collapses a rating history to the most recent rating per event.
//
// Ratings are ordered by timestamp descending with a stable sort, and the
// first rating seen for an event id is kept. Among ratings sharing the
// maximal timestamp the one earlier in the input wins. The result keeps the
// descending order, so Latest(Latest(r)) equals Latest(r).
func Latest(ratings []model.Rating) []model.Rating {
	sorted := make([]model.Rating, len(ratings))
	copy(sorted, ratings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	seen := make(map[uuid.UUID]struct{}, len(sorted))
	latest := make([]model.Rating, 0, len(sorted))
	for _, r := range sorted {
		if _, ok := seen[r.EventID]; ok {
			continue
		}
		seen[r.EventID] = struct{}{}
		latest = append(latest, r)
	}
	return latest
}

// Join pairs every rating with the event it references, in rating order.
//
// Ratings for unknown events are dropped: the event may have left the cache.
// Join does not deduplicate; run Latest first when one rating per event is
// wanted.
func Join(ratings []model.Rating, events []model.Event) []model.EventRating {
	set := model.NewEventSet(events...)

	out := make([]model.EventRating, 0, len(ratings))
	for _, r := range ratings {
		e, ok := set.Get(r.EventID)
		if !ok {
			continue
		}
		out = append(out, model.EventRating{Event: e, Rating: r})
	}
	return out
}

// Unrated returns the events without any rating, in input order.
func Unrated(events []model.Event, ratings []model.Rating) []model.Event {
	rated := make(map[uuid.UUID]struct{}, len(ratings))
	for _, r := range ratings {
		rated[r.EventID] = struct{}{}
	}

	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if _, ok := rated[e.ID]; !ok {
			out = append(out, e)
		}
	}
	return out
}

// FilterMinScore keeps the pairs whose rating reaches threshold (inclusive).
func FilterMinScore(ers []model.EventRating, threshold float64) []model.EventRating {
	out := make([]model.EventRating, 0, len(ers))
	for _, er := range ers {
		if er.Rating.Score >= threshold {
			out = append(out, er)
		}
	}
	return out
}

// SortByScore orders pairs best first. Equal scores order by event start,
// then slug, so listings are stable across runs.
func SortByScore(ers []model.EventRating) {
	sort.SliceStable(ers, func(i, j int) bool {
		a, b := ers[i], ers[j]
		if a.Rating.Score != b.Rating.Score {
			return a.Rating.Score > b.Rating.Score
		}
		if !a.Event.ScheduleStart.Equal(b.Event.ScheduleStart) {
			return a.Event.ScheduleStart.Before(b.Event.ScheduleStart)
		}
		return a.Event.Slug < b.Event.Slug
	})
}
