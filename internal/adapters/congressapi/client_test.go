package congressapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/top-on/optimal-congress/internal/adapters/congressapi"
	"github.com/top-on/optimal-congress/internal/domain/model"
)

const eventsPayload = `[
	{
		"id": "6c1fa5bb-3a53-4a3d-9d0e-6c2f0d0b9a11",
		"name": "Opening Ceremony",
		"slug": "opening",
		"track": null,
		"assembly": "37C3",
		"room": "0f7c3c2a-7d5b-4b57-a1f0-1f6f54c1a5c2",
		"language": "en",
		"description": "",
		"schedule_start": "2023-12-27T10:30:00+01:00",
		"schedule_end": "2023-12-27T11:00:00+01:00",
		"schedule_duration": "00:30:00"
	},
	{
		"id": "2b0d2a4e-d2f6-4f0c-9c43-0fa0c1d8b7e3",
		"name": "Fnord News Show",
		"slug": "fnord",
		"track": "Entertainment",
		"assembly": "37C3",
		"room": null,
		"language": ["de", "en"],
		"description": "fnord",
		"schedule_start": "2023-12-28T21:00:00+01:00",
		"schedule_end": "2023-12-28T22:00:00+01:00"
	},
	{
		"id": "6c1fa5bb-3a53-4a3d-9d0e-6c2f0d0b9a11",
		"name": "Opening Ceremony (repeat)",
		"slug": "opening-repeat",
		"assembly": "37C3",
		"description": "",
		"schedule_start": "2023-12-27T10:30:00+01:00",
		"schedule_end": "2023-12-27T11:00:00+01:00"
	}
]`

const roomsPayload = `[
	{"id": "0f7c3c2a-7d5b-4b57-a1f0-1f6f54c1a5c2", "name": "Saal 1", "assembly": "37C3", "capacity": 3000}
]`

func newServer(routes map[string]string, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestFetch(t *testing.T) {
	Convey("Given a conference API", t, func() {
		ctx := context.Background()
		srv := newServer(map[string]string{"/events": eventsPayload, "/rooms": roomsPayload}, http.StatusOK)
		defer srv.Close()

		client := congressapi.New(srv.URL+"/events", srv.URL+"/rooms",
			congressapi.WithHTTPClient(srv.Client()),
			congressapi.WithTimeout(time.Second),
			congressapi.WithUserAgent("test"),
		)

		Convey("When fetching events", func() {
			events, err := client.FetchEvents(ctx)

			Convey("Then they are decoded and repeated ids collapse", func() {
				So(err, ShouldBeNil)
				So(events, ShouldHaveLength, 2)
				So(events[0].Name, ShouldEqual, "Opening Ceremony")
				So(events[0].Room, ShouldNotBeNil)
				So([]string(events[0].Language), ShouldResemble, []string{"en"})
				So(events[1].Track, ShouldEqual, "Entertainment")
				So(events[1].Room, ShouldBeNil)
				So(events[1].Duration(), ShouldEqual, time.Hour)
			})
		})

		Convey("When fetching rooms", func() {
			rooms, err := client.FetchRooms(ctx)

			Convey("Then unknown fields are ignored", func() {
				So(err, ShouldBeNil)
				So(rooms, ShouldHaveLength, 1)
				So(rooms[0].Name, ShouldEqual, "Saal 1")
			})
		})
	})

	Convey("Given an API that returns an error status", t, func() {
		srv := newServer(map[string]string{"/events": `{"detail":"down"}`}, http.StatusServiceUnavailable)
		defer srv.Close()

		client := congressapi.New(srv.URL+"/events", srv.URL+"/rooms", congressapi.WithHTTPClient(srv.Client()))
		_, err := client.FetchEvents(context.Background())

		Convey("Then the fetch fails with the status", func() {
			So(errors.Is(err, congressapi.ErrUnexpectedStatus), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "503")
		})
	})

	Convey("Given an API that returns malformed JSON", t, func() {
		srv := newServer(map[string]string{"/rooms": `{"not": "a list"}`}, http.StatusOK)
		defer srv.Close()

		client := congressapi.New(srv.URL+"/events", srv.URL+"/rooms", congressapi.WithHTTPClient(srv.Client()))
		_, err := client.FetchRooms(context.Background())

		So(errors.Is(err, congressapi.ErrDecode), ShouldBeTrue)
	})

	Convey("Given an event whose end precedes its start", t, func() {
		payload := `[{"id": "6c1fa5bb-3a53-4a3d-9d0e-6c2f0d0b9a11", "slug": "broken", "name": "b",
			"schedule_start": "2023-12-27T11:00:00+01:00", "schedule_end": "2023-12-27T10:00:00+01:00"}]`
		srv := newServer(map[string]string{"/events": payload}, http.StatusOK)
		defer srv.Close()

		client := congressapi.New(srv.URL+"/events", srv.URL+"/rooms", congressapi.WithHTTPClient(srv.Client()))
		_, err := client.FetchEvents(context.Background())

		Convey("Then the fetch is rejected at ingest", func() {
			So(errors.Is(err, model.ErrInvalidInterval), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "broken")
		})
	})

	Convey("Given a cancelled context", t, func() {
		srv := newServer(map[string]string{"/events": eventsPayload}, http.StatusOK)
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := congressapi.New(srv.URL+"/events", srv.URL+"/rooms", congressapi.WithHTTPClient(srv.Client()))
		_, err := client.FetchEvents(ctx)

		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}
