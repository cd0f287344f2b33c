package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/top-on/optimal-congress/internal/domain/model"
)

var cet = time.FixedZone("CET", 60*60)

func testEvent(slug string, hour int, opts ...model.EventOption) model.Event {
	start := time.Date(2023, 12, 27, hour, 0, 0, 0, cet)
	e, err := model.NewEvent(uuid.New(), slug, start, start.Add(time.Hour), opts...)
	if err != nil {
		panic(err)
	}
	return e
}

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "cache", "congress.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nested", "dir", "congress.db")

	store, err := Open(context.Background(), dbPath, WithBusyTimeout(time.Second), WithMaxOpenConns(2))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if store.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", store.Path(), dbPath)
	}

	journalMode, err := store.journalMode()
	if err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %q, want %q", journalMode, "wal")
	}
}

func TestOpen_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "congress.db")
	ctx := context.Background()

	first, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	r := model.NewRating(uuid.New(), 7)
	if err := first.AddRatings(ctx, r); err != nil {
		t.Fatalf("AddRatings: %v", err)
	}
	first.Close()

	second, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	ratings, err := second.Ratings(ctx)
	if err != nil {
		t.Fatalf("Ratings: %v", err)
	}
	if len(ratings) != 1 || !ratings[0].Equal(r) {
		t.Fatalf("ratings after reopen = %v, want [%v]", ratings, r)
	}
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"sqlite": func(t *testing.T) Store { return openTestStore(t) },
		"memory": func(*testing.T) Store { return NewMemoryStore() },
	}

	for name, open := range stores {
		name, open := name, open
		t.Run(name, func(t *testing.T) {
			Convey("Given an empty "+name+" store", t, func() {
				ctx := context.Background()
				s := open(t)

				room := uuid.New()
				opening := testEvent("opening", 10,
					model.WithName("Opening"),
					model.WithTrack("CCC"),
					model.WithRoom(room),
					model.WithLanguage("de", "en"),
					model.WithDescription("welcome"),
				)
				talk := testEvent("talk", 12)
				early := testEvent("early", 9)

				Convey("When events are replaced", func() {
					So(s.ReplaceEvents(ctx, []model.Event{opening, talk, early}), ShouldBeNil)

					Convey("Then they read back ordered by start with every field", func() {
						events, err := s.Events(ctx)
						So(err, ShouldBeNil)
						So(events, ShouldHaveLength, 3)
						So(events[0].Slug, ShouldEqual, "early")
						So(events[1].Slug, ShouldEqual, "opening")

						got := events[1]
						So(got.ID, ShouldEqual, opening.ID)
						So(got.Name, ShouldEqual, "Opening")
						So(got.Track, ShouldEqual, "CCC")
						So(*got.Room, ShouldEqual, room)
						So([]string(got.Language), ShouldResemble, []string{"de", "en"})
						So(got.Description, ShouldEqual, "welcome")
						So(got.ScheduleStart.Equal(opening.ScheduleStart), ShouldBeTrue)
						So(got.ScheduleEnd.Equal(opening.ScheduleEnd), ShouldBeTrue)
					})

					Convey("And single events can be looked up", func() {
						got, err := s.Event(ctx, talk.ID)
						So(err, ShouldBeNil)
						So(got.Slug, ShouldEqual, "talk")

						_, err = s.Event(ctx, uuid.New())
						So(errors.Is(err, ErrNotFound), ShouldBeTrue)
					})

					Convey("And a second replace drops the old set", func() {
						So(s.ReplaceEvents(ctx, []model.Event{talk}), ShouldBeNil)
						events, err := s.Events(ctx)
						So(err, ShouldBeNil)
						So(events, ShouldHaveLength, 1)
						So(events[0].ID, ShouldEqual, talk.ID)
					})
				})

				Convey("When an event has an invalid interval", func() {
					bad := talk
					bad.ScheduleEnd = bad.ScheduleStart.Add(-time.Minute)
					err := s.ReplaceEvents(ctx, []model.Event{opening, bad})

					Convey("Then nothing is stored", func() {
						So(errors.Is(err, ErrInvalidEvent), ShouldBeTrue)
						So(errors.Is(err, model.ErrInvalidInterval), ShouldBeTrue)
						c, err := s.Counts(ctx)
						So(err, ShouldBeNil)
						So(c.Events, ShouldEqual, 0)
					})
				})

				Convey("When rooms are replaced", func() {
					rooms := []model.Room{
						{ID: uuid.New(), Name: "Saal Zuse", Assembly: "37C3"},
						{ID: uuid.New(), Name: "Saal 1", Assembly: "37C3"},
					}
					So(s.ReplaceRooms(ctx, rooms), ShouldBeNil)

					got, err := s.Rooms(ctx)
					So(err, ShouldBeNil)
					So(got, ShouldHaveLength, 2)
					So(got[0].Name, ShouldEqual, "Saal 1")
					So(got[1].Equal(rooms[0]), ShouldBeTrue)
				})

				Convey("When ratings are added over time", func() {
					t1 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
					r1 := model.NewRating(opening.ID, 8, model.WithTimestamp(t1))
					r2 := model.NewRating(talk.ID, 3, model.WithTimestamp(t1))
					r3 := model.NewRating(opening.ID, 10, model.WithTimestamp(t1.Add(24*time.Hour)))

					So(s.AddRatings(ctx, r1, r2), ShouldBeNil)
					So(s.AddRatings(ctx, r3), ShouldBeNil)
					So(s.AddRatings(ctx), ShouldBeNil)

					Convey("Then the full history is kept in insertion order", func() {
						ratings, err := s.Ratings(ctx)
						So(err, ShouldBeNil)
						So(ratings, ShouldHaveLength, 3)
						So(ratings[0].Equal(r1), ShouldBeTrue)
						So(ratings[1].Equal(r2), ShouldBeTrue)
						So(ratings[2].Equal(r3), ShouldBeTrue)
					})

					Convey("And a rating with the same event and time replaces the score", func() {
						So(s.AddRatings(ctx, model.NewRating(opening.ID, 1, model.WithTimestamp(t1))), ShouldBeNil)
						ratings, err := s.Ratings(ctx)
						So(err, ShouldBeNil)
						So(ratings, ShouldHaveLength, 3)
						So(ratings[0].Score, ShouldEqual, 1.0)
					})

					Convey("And counts reflect the history", func() {
						So(s.ReplaceEvents(ctx, []model.Event{opening}), ShouldBeNil)
						c, err := s.Counts(ctx)
						So(err, ShouldBeNil)
						So(c, ShouldResemble, Counts{Events: 1, Rooms: 0, Ratings: 3})
					})
				})

				Convey("When the store is empty", func() {
					events, err := s.Events(ctx)
					So(err, ShouldBeNil)
					So(events, ShouldBeEmpty)

					ratings, err := s.Ratings(ctx)
					So(err, ShouldBeNil)
					So(ratings, ShouldBeEmpty)
				})
			})
		})
	}
}
