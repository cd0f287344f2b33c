package config

import "errors"

var (
	// ErrInvalidConfig marks a planner setting that is out of range, such as
	// an unknown solver or timezone.
	ErrInvalidConfig = errors.New("invalid planner setting")
	// ErrLoadConfig marks a .env, YAML or environment source that could not
	// be read.
	ErrLoadConfig = errors.New("read planner config")
)
