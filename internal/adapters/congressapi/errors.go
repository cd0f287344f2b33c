package congressapi

import "errors"

// Sentinel kinds for conference API errors.
var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrDecode           = errors.New("decode response")
)
