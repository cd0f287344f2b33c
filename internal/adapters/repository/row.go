package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/top-on/optimal-congress/internal/domain/model"
)

// TimeFormat is the fixed-width UTC format used for timestamps, so that
// lexicographic order matches chronological order.
const TimeFormat = "2006-01-02T15:04:05.000000000Z"

type eventRow struct {
	ID            string
	Name          string
	Slug          string
	Track         sql.NullString
	Assembly      string
	Room          sql.NullString
	Language      sql.NullString
	Description   string
	ScheduleStart string
	ScheduleEnd   string
}

func (r *eventRow) toEvent() (model.Event, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: event id %q: %w", ErrCorruptRow, r.ID, err)
	}
	start, err := time.Parse(TimeFormat, r.ScheduleStart)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: schedule_start %q: %w", ErrCorruptRow, r.ScheduleStart, err)
	}
	end, err := time.Parse(TimeFormat, r.ScheduleEnd)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: schedule_end %q: %w", ErrCorruptRow, r.ScheduleEnd, err)
	}

	e := model.Event{
		ID:            id,
		Name:          r.Name,
		Slug:          r.Slug,
		Assembly:      r.Assembly,
		Description:   r.Description,
		ScheduleStart: start,
		ScheduleEnd:   end,
	}
	if r.Track.Valid {
		e.Track = r.Track.String
	}
	if r.Room.Valid {
		room, err := uuid.Parse(r.Room.String)
		if err != nil {
			return model.Event{}, fmt.Errorf("%w: room %q: %w", ErrCorruptRow, r.Room.String, err)
		}
		e.Room = &room
	}
	if r.Language.Valid {
		e.Language = model.ParseLanguages(r.Language.String)
	}
	return e, nil
}

func eventToRow(e model.Event) eventRow {
	r := eventRow{
		ID:            e.ID.String(),
		Name:          e.Name,
		Slug:          e.Slug,
		Assembly:      e.Assembly,
		Description:   e.Description,
		ScheduleStart: e.ScheduleStart.UTC().Format(TimeFormat),
		ScheduleEnd:   e.ScheduleEnd.UTC().Format(TimeFormat),
	}
	if e.Track != "" {
		r.Track = sql.NullString{String: e.Track, Valid: true}
	}
	if e.Room != nil {
		r.Room = sql.NullString{String: e.Room.String(), Valid: true}
	}
	if len(e.Language) > 0 {
		r.Language = sql.NullString{String: e.Language.String(), Valid: true}
	}
	return r
}

type ratingRow struct {
	EventID string
	Score   float64
	Ts      string
}

func (r *ratingRow) toRating() (model.Rating, error) {
	id, err := uuid.Parse(r.EventID)
	if err != nil {
		return model.Rating{}, fmt.Errorf("%w: rating event id %q: %w", ErrCorruptRow, r.EventID, err)
	}
	ts, err := time.Parse(TimeFormat, r.Ts)
	if err != nil {
		return model.Rating{}, fmt.Errorf("%w: rating ts %q: %w", ErrCorruptRow, r.Ts, err)
	}
	return model.Rating{EventID: id, Score: r.Score, Timestamp: ts}, nil
}

func ratingToRow(r model.Rating) ratingRow {
	return ratingRow{
		EventID: r.EventID.String(),
		Score:   r.Score,
		Ts:      r.Timestamp.UTC().Format(TimeFormat),
	}
}

// validateEvent rejects events that cannot be scheduled.
func validateEvent(e model.Event) error {
	if e.ID == uuid.Nil {
		return fmt.Errorf("%w: id is required", ErrInvalidEvent)
	}
	if e.Slug == "" {
		return fmt.Errorf("%w: slug is required for %s", ErrInvalidEvent, e.ID)
	}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidEvent, e.ID, err)
	}
	return nil
}
