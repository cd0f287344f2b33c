// Package congressapi downloads the public event and room listings of the
// conference.
package congressapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/top-on/optimal-congress/internal/domain/model"
	"github.com/top-on/optimal-congress/pkg/logger"
	"github.com/top-on/optimal-congress/pkg/metrics"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "optimal-congress"
	maxErrorBody     = 512

	resourceEvents = "events"
	resourceRooms  = "rooms"
)

// Client fetches events and rooms from fixed endpoints.
type Client struct {
	eventsURL string
	roomsURL  string

	http      *http.Client
	timeout   time.Duration
	userAgent string
	logger    logger.Logger
}

// New creates a client for the given events and rooms endpoints.
func New(eventsURL, roomsURL string, opts ...Option) *Client {
	c := &Client{
		eventsURL: eventsURL,
		roomsURL:  roomsURL,
		http:      http.DefaultClient,
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchEvents downloads all events. Every event is validated; repeated ids
// keep their first occurrence.
func (c *Client) FetchEvents(ctx context.Context) ([]model.Event, error) {
	var raw []model.Event
	if err := c.getJSON(ctx, resourceEvents, c.eventsURL, &raw); err != nil {
		return nil, err
	}

	set := model.NewEventSet()
	for _, e := range raw {
		if err := e.Validate(); err != nil {
			metrics.RecordFetchError(resourceEvents)
			return nil, fmt.Errorf("event %s (%s): %w", e.ID, e.Slug, err)
		}
		if !set.Add(e) {
			c.logger.Debug(ctx, "duplicate event id in API response", logger.String("id", e.ID.String()))
		}
	}
	return set.Events(), nil
}

// FetchRooms downloads all rooms.
func (c *Client) FetchRooms(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	if err := c.getJSON(ctx, resourceRooms, c.roomsURL, &rooms); err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = []model.Room{}
	}
	return rooms, nil
}

func (c *Client) getJSON(ctx context.Context, resource, url string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", resource, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordFetchError(resource)
		return fmt.Errorf("fetch %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordFetchError(resource)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s returned %d: %s", ErrUnexpectedStatus, url, resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordFetchError(resource)
		return fmt.Errorf("read %s: %w", resource, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		metrics.RecordFetchError(resource)
		return fmt.Errorf("%w: %s: %w", ErrDecode, resource, err)
	}

	took := time.Since(start)
	count := 0
	switch v := out.(type) {
	case *[]model.Event:
		count = len(*v)
	case *[]model.Room:
		count = len(*v)
	}
	metrics.RecordFetch(resource, count, float64(took.Milliseconds()))
	c.logger.Debug(ctx, "fetched",
		logger.String("resource", resource),
		logger.Int("count", count),
		logger.Duration("took", took),
	)
	return nil
}
