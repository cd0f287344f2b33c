package ical

import "errors"

// ErrEmptyCalendar is returned by Encode when there are no events, since a
// calendar without components is not valid iCalendar.
var ErrEmptyCalendar = errors.New("calendar has no events")
