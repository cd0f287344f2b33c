// Package config defines the planner configuration and its loading.
//
// Conventions:
// - New() builds a Config with defaults; Load layers file and env on top.
// - Validation and loader errors wrap this package's sentinel errors.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/top-on/optimal-congress/internal/domain/schedule"
	"github.com/top-on/optimal-congress/pkg/logger"
)

// Defaults for the 37C3 conference.
const (
	DefaultAPIEvents     = "https://api.events.ccc.de/congress/2023/events"
	DefaultAPIRooms      = "https://api.events.ccc.de/congress/2023/rooms"
	DefaultHubEventRoute = "https://events.ccc.de/congress/2023/hub/en/event"

	appDir       = "optimal-congress"
	cacheFile    = "congress.db"
	localZone    = "Local"
	defaultAddr  = ":9080"
	defaultLevel = "info"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json log records.
	LogFormat string `koanf:"log_format"`

	// APIEvents and APIRooms are the conference API endpoints.
	APIEvents string `koanf:"api_events"`
	APIRooms  string `koanf:"api_rooms"`
	// HubEventRoute is the base URL of event pages; the slug is appended.
	HubEventRoute string `koanf:"hub_event_route"`

	// CachePath is the SQLite file holding events, rooms and ratings.
	CachePath string `koanf:"cache_path"`

	// HTTPTimeoutMS bounds each conference API request.
	HTTPTimeoutMS int `koanf:"http_timeout_ms"`

	// Solver is "interval" or "branch_and_bound".
	Solver string `koanf:"solver"`
	// SolveTimeoutMS bounds one optimization. Zero disables the bound.
	SolveTimeoutMS int `koanf:"solve_timeout_ms"`

	// Addr configures the HTTP listen address of the serve command.
	Addr string `koanf:"addr"`

	// Timezone is an IANA zone name used for display and export, or "Local".
	Timezone string `koanf:"timezone"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       defaultLevel,
		LogFormat:      logger.FormatText,
		APIEvents:      DefaultAPIEvents,
		APIRooms:       DefaultAPIRooms,
		HubEventRoute:  DefaultHubEventRoute,
		CachePath:      defaultCachePath(),
		HTTPTimeoutMS:  15_000,
		Solver:         schedule.SolverInterval,
		SolveTimeoutMS: 10_000,
		Addr:           defaultAddr,
		Timezone:       localZone,
	}
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, appDir, cacheFile)
}

// HTTPTimeout returns HTTPTimeoutMS as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}

// SolveTimeout returns SolveTimeoutMS as a duration.
func (c *Config) SolveTimeout() time.Duration {
	return time.Duration(c.SolveTimeoutMS) * time.Millisecond
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, localZone) {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch {
	case c.APIEvents == "":
		return fmt.Errorf("%w: api_events must not be empty", ErrInvalidConfig)
	case c.APIRooms == "":
		return fmt.Errorf("%w: api_rooms must not be empty", ErrInvalidConfig)
	case c.CachePath == "":
		return fmt.Errorf("%w: cache_path must not be empty", ErrInvalidConfig)
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.HTTPTimeoutMS <= 0:
		return fmt.Errorf("%w: http_timeout_ms must be positive, got %d", ErrInvalidConfig, c.HTTPTimeoutMS)
	case c.SolveTimeoutMS < 0:
		return fmt.Errorf("%w: solve_timeout_ms must not be negative, got %d", ErrInvalidConfig, c.SolveTimeoutMS)
	}

	if _, err := schedule.SolverByName(c.Solver); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	switch strings.ToLower(c.LogFormat) {
	case "", logger.FormatText, logger.FormatJSON:
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
