package model_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/smartystreets/goconvey/convey"
	model "github.com/top-on/optimal-congress/internal/domain/model"
)

var tzDE = time.FixedZone("CET", 60*60)

func at(hour, minute int) time.Time {
	return time.Date(2023, 12, 27, hour, minute, 0, 0, tzDE)
}

func mustEvent(slug string, start, end time.Time) model.Event {
	e, err := model.NewEvent(uuid.New(), slug, start, end)
	if err != nil {
		panic(err)
	}
	return e
}

func TestEventsOverlap(t *testing.T) {
	convey.Convey("Given pairs of events", t, func() {
		cases := []struct {
			name     string
			a, b     model.Event
			expected bool
		}{
			{"partially overlapping", mustEvent("foo", at(12, 0), at(14, 0)), mustEvent("bar", at(13, 0), at(15, 0)), true},
			{"disjoint", mustEvent("foo", at(12, 0), at(14, 0)), mustEvent("bar", at(15, 0), at(17, 0)), false},
			{"touching at the boundary", mustEvent("foo", at(12, 0), at(13, 0)), mustEvent("bar", at(13, 0), at(14, 0)), false},
			{"nested", mustEvent("foo", at(10, 0), at(18, 0)), mustEvent("bar", at(12, 0), at(13, 0)), true},
			{"identical", mustEvent("foo", at(10, 0), at(11, 0)), mustEvent("bar", at(10, 0), at(11, 0)), true},
		}

		for _, tc := range cases {
			tc := tc
			convey.Convey("When the events are "+tc.name, func() {
				ab := model.EventsOverlap(tc.a, tc.b)
				ba := model.EventsOverlap(tc.b, tc.a)

				convey.Convey("Then the result is symmetric and as expected", func() {
					convey.So(ab, convey.ShouldEqual, ba)
					convey.So(ab, convey.ShouldEqual, tc.expected)
				})
			})
		}

		convey.Convey("When the intervals are in different time zones", func() {
			utcStart := at(13, 0).UTC()
			a := mustEvent("foo", at(12, 0), at(14, 0))
			b := mustEvent("bar", utcStart, utcStart.Add(time.Hour))

			convey.Convey("Then instants are compared, not wall clocks", func() {
				convey.So(model.EventsOverlap(a, b), convey.ShouldBeTrue)
			})
		})
	})
}

func TestNewEvent(t *testing.T) {
	convey.Convey("Given event construction", t, func() {
		id := uuid.New()
		room := uuid.New()

		convey.Convey("When the interval is valid", func() {
			e, err := model.NewEvent(id, "opening", at(10, 30), at(11, 0),
				model.WithName("Opening Ceremony"),
				model.WithTrack("CCC"),
				model.WithAssembly("37C3"),
				model.WithRoom(room),
				model.WithLanguage("de", "en"),
				model.WithDescription("welcome"),
			)

			convey.Convey("Then all fields are set", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(e.ID, convey.ShouldEqual, id)
				convey.So(e.Name, convey.ShouldEqual, "Opening Ceremony")
				convey.So(e.Slug, convey.ShouldEqual, "opening")
				convey.So(e.Track, convey.ShouldEqual, "CCC")
				convey.So(*e.Room, convey.ShouldEqual, room)
				convey.So([]string(e.Language), convey.ShouldResemble, []string{"de", "en"})
				convey.So(e.Duration(), convey.ShouldEqual, 30*time.Minute)
			})

			convey.Convey("And it renders for display", func() {
				convey.So(e.String(), convey.ShouldEqual, "'Opening Ceremony' (2023-12-27 10:30 - 11:00)")
				convey.So(e.URL("https://hub.example/event/"), convey.ShouldEqual, "https://hub.example/event/opening")
			})
		})

		convey.Convey("When the name is omitted", func() {
			e, err := model.NewEvent(id, "opening", at(10, 30), at(11, 0))

			convey.Convey("Then the slug is used", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(e.Name, convey.ShouldEqual, "opening")
			})
		})

		convey.Convey("When the end equals the start", func() {
			_, err := model.NewEvent(id, "empty", at(10, 0), at(10, 0))

			convey.Convey("Then it is rejected as an invalid interval", func() {
				convey.So(errors.Is(err, model.ErrInvalidInterval), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the end is before the start", func() {
			_, err := model.NewEvent(id, "backwards", at(11, 0), at(10, 0))

			convey.Convey("Then it is rejected as an invalid interval", func() {
				convey.So(errors.Is(err, model.ErrInvalidInterval), convey.ShouldBeTrue)
			})
		})
	})
}

func TestEventIdentity(t *testing.T) {
	convey.Convey("Given two events", t, func() {
		first := mustEvent("foo", at(12, 0), at(14, 0))

		convey.Convey("When they share the id but differ in metadata", func() {
			second := first
			second.Name = "bar"
			second.Slug = "bar"
			second.ScheduleStart = at(13, 0)
			second.ScheduleEnd = at(15, 0)

			convey.Convey("Then they are equal", func() {
				convey.So(first.Equal(second), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When they have identical metadata but different ids", func() {
			second := first
			second.ID = uuid.New()

			convey.Convey("Then they are not equal", func() {
				convey.So(first.Equal(second), convey.ShouldBeFalse)
			})
		})
	})
}

func TestEventJSON(t *testing.T) {
	convey.Convey("Given an event payload from the conference API", t, func() {
		payload := `{
			"id": "6c1fa5bb-3a53-4a3d-9d0e-6c2f0d0b9a11",
			"name": "Fnord News Show",
			"slug": "fnord-news-show",
			"track": null,
			"assembly": "37C3",
			"room": null,
			"language": "de, en",
			"description": "fnord",
			"schedule_start": "2023-12-28T21:00:00+01:00",
			"schedule_end": "2023-12-28T22:00:00+01:00",
			"kind": "official"
		}`

		convey.Convey("When decoding it", func() {
			var e model.Event
			err := json.Unmarshal([]byte(payload), &e)

			convey.Convey("Then optional fields and unknown keys are tolerated", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(e.Track, convey.ShouldEqual, "")
				convey.So(e.Room, convey.ShouldBeNil)
				convey.So([]string(e.Language), convey.ShouldResemble, []string{"de", "en"})
				convey.So(e.Duration(), convey.ShouldEqual, time.Hour)
				convey.So(e.Validate(), convey.ShouldBeNil)
			})
		})
	})
}
