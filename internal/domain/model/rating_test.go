package model_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/smartystreets/goconvey/convey"
	model "github.com/top-on/optimal-congress/internal/domain/model"
)

func TestRating(t *testing.T) {
	convey.Convey("Given ratings", t, func() {
		id := uuid.New()
		ts := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

		convey.Convey("When no timestamp is given", func() {
			before := time.Now()
			r := model.NewRating(id, 8)

			convey.Convey("Then the creation time is used", func() {
				convey.So(r.Timestamp, convey.ShouldHappenOnOrAfter, before)
				convey.So(r.Score, convey.ShouldEqual, 8.0)
			})
		})

		convey.Convey("When two ratings share every field", func() {
			a := model.NewRating(id, 8, model.WithTimestamp(ts))
			b := model.NewRating(id, 8, model.WithTimestamp(ts.In(tzDE)))

			convey.Convey("Then they are indistinguishable", func() {
				convey.So(a.Equal(b), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the score differs", func() {
			a := model.NewRating(id, 8, model.WithTimestamp(ts))
			b := model.NewRating(id, 9, model.WithTimestamp(ts))

			convey.Convey("Then they differ", func() {
				convey.So(a.Equal(b), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When a negative score is given", func() {
			r := model.NewRating(id, -3.5, model.WithTimestamp(ts))

			convey.Convey("Then it is accepted as is", func() {
				convey.So(r.Score, convey.ShouldEqual, -3.5)
			})
		})
	})
}

func TestEventRatingEqual(t *testing.T) {
	convey.Convey("Given event ratings", t, func() {
		e := mustEvent("foo", at(12, 0), at(13, 0))
		ts := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
		r := model.NewRating(e.ID, 5, model.WithTimestamp(ts))

		a := model.EventRating{Event: e, Rating: r}
		renamed := e
		renamed.Name = "renamed"
		b := model.EventRating{Event: renamed, Rating: r}
		c := model.EventRating{Event: e, Rating: model.NewRating(e.ID, 6, model.WithTimestamp(ts))}

		convey.So(a.Equal(b), convey.ShouldBeTrue)
		convey.So(a.Equal(c), convey.ShouldBeFalse)
	})
}

func TestEventSet(t *testing.T) {
	convey.Convey("Given an event set", t, func() {
		a := mustEvent("a", at(10, 0), at(11, 0))
		b := mustEvent("b", at(11, 0), at(12, 0))
		dup := a
		dup.Name = "newer metadata"

		set := model.NewEventSet(a, b, dup)

		convey.Convey("Then repeated ids are dropped, first wins", func() {
			convey.So(set.Len(), convey.ShouldEqual, 2)
			got, ok := set.Get(a.ID)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(got.Name, convey.ShouldEqual, "a")
		})

		convey.Convey("Then insertion order is kept", func() {
			events := set.Events()
			convey.So(events[0].Slug, convey.ShouldEqual, "a")
			convey.So(events[1].Slug, convey.ShouldEqual, "b")
		})

		convey.Convey("When adding a new event", func() {
			c := mustEvent("c", at(12, 0), at(13, 0))

			convey.So(set.Add(c), convey.ShouldBeTrue)
			convey.So(set.Add(c), convey.ShouldBeFalse)
			convey.So(set.Contains(c.ID), convey.ShouldBeTrue)
		})
	})
}
