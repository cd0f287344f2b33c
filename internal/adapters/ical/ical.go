// Package ical exports a schedule as an iCalendar (RFC 5545) file.
package ical

import (
	"fmt"
	"io"
	"net/url"
	"time"

	goical "github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/top-on/optimal-congress/internal/domain/model"
)

const (
	defaultProductID = "-//optimal-congress//schedule//EN"
	uidDomain        = "optimal-congress"
)

// Option applies a configuration option to the Exporter.
type Option func(*Exporter)

// WithHubRoute sets the base URL of event pages, used for the URL property.
func WithHubRoute(route string) Option {
	return func(x *Exporter) {
		x.hubRoute = route
	}
}

// WithRooms lets LOCATION name the room of each event.
func WithRooms(rooms []model.Room) Option {
	return func(x *Exporter) {
		for _, r := range rooms {
			x.rooms[r.ID] = r
		}
	}
}

// WithName sets the calendar display name.
func WithName(name string) Option {
	return func(x *Exporter) {
		x.name = name
	}
}

// WithClock overrides the DTSTAMP source.
func WithClock(now func() time.Time) Option {
	return func(x *Exporter) {
		if now != nil {
			x.now = now
		}
	}
}

// Exporter renders events as VEVENTs.
type Exporter struct {
	hubRoute string
	rooms    map[uuid.UUID]model.Room
	name     string
	now      func() time.Time
}

// NewExporter creates an Exporter.
func NewExporter(opts ...Option) *Exporter {
	x := &Exporter{
		rooms: make(map[uuid.UUID]model.Room),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Calendar builds the calendar for events. All times are written in UTC.
func (x *Exporter) Calendar(events []model.Event) (*goical.Calendar, error) {
	cal := goical.NewCalendar()
	cal.Props.SetText(goical.PropVersion, "2.0")
	cal.Props.SetText(goical.PropProductID, defaultProductID)
	if x.name != "" {
		cal.Props.SetText("X-WR-CALNAME", x.name)
	}

	stamp := x.now().UTC()
	for _, e := range events {
		ev := goical.NewEvent()
		ev.Props.SetText(goical.PropUID, e.ID.String()+"@"+uidDomain)
		ev.Props.SetDateTime(goical.PropDateTimeStamp, stamp)
		ev.Props.SetDateTime(goical.PropDateTimeStart, e.ScheduleStart.UTC())
		ev.Props.SetDateTime(goical.PropDateTimeEnd, e.ScheduleEnd.UTC())
		ev.Props.SetText(goical.PropSummary, e.Name)
		if e.Description != "" {
			ev.Props.SetText(goical.PropDescription, e.Description)
		}
		if x.hubRoute != "" {
			u, err := url.Parse(e.URL(x.hubRoute))
			if err != nil {
				return nil, fmt.Errorf("event %s url: %w", e.ID, err)
			}
			ev.Props.SetURI(goical.PropURL, u)
		}
		if e.Room != nil {
			if room, ok := x.rooms[*e.Room]; ok {
				ev.Props.SetText(goical.PropLocation, room.Name)
			}
		}
		cal.Children = append(cal.Children, ev.Component)
	}
	return cal, nil
}

// Encode writes the calendar for events to w. It returns ErrEmptyCalendar
// without writing anything when events is empty.
func (x *Exporter) Encode(w io.Writer, events []model.Event) error {
	if len(events) == 0 {
		return ErrEmptyCalendar
	}
	cal, err := x.Calendar(events)
	if err != nil {
		return err
	}
	if err := goical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}
