package service

import "errors"

var (
	// ErrUnknownEvent is returned when a rating references an event that is
	// not in the cache.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrInvalidScore is returned for scores that are NaN or infinite.
	ErrInvalidScore = errors.New("invalid score")
	// ErrNoFetcher is returned by Fetch when no API client is configured.
	ErrNoFetcher = errors.New("no fetcher configured")
	// ErrEmptySchedule is returned when exporting a schedule without events.
	ErrEmptySchedule = errors.New("empty schedule")
)
