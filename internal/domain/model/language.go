package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Languages lists the languages an event is held in, e.g. ["de", "en"].
//
// The conference API is inconsistent about the encoding: the field may be
// null, a comma separated string or a JSON list. All of them decode here.
type Languages []string

// ParseLanguages splits a comma separated language list. Empty input yields nil.
func ParseLanguages(s string) Languages {
	var out Languages
	for _, part := range strings.Split(s, ",") {
		if lang := strings.TrimSpace(part); lang != "" {
			out = append(out, lang)
		}
	}
	return out
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Languages) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode language string: %w", err)
		}
		*l = ParseLanguages(s)
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("decode language list: %w", err)
		}
		*l = ParseLanguages(strings.Join(list, ","))
	default:
		return fmt.Errorf("decode language: unexpected JSON %s", string(data))
	}
	return nil
}

// String joins the languages as "de, en".
func (l Languages) String() string {
	return strings.Join(l, ", ")
}
