package csvio

import "errors"

// Sentinel kinds for CSV errors.
var (
	ErrMissingColumn = errors.New("missing column")
	ErrMalformedRow  = errors.New("malformed row")
)
