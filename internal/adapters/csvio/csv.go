// Package csvio exports and imports ratings as CSV for bulk editing.
//
// The file has the columns rating,name,url,event_id. Only rating and
// event_id are read back; name and url help a human editing the file.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/top-on/optimal-congress/internal/domain/model"
	"github.com/top-on/optimal-congress/internal/domain/rating"
)

// Column names.
const (
	ColRating  = "rating"
	ColName    = "name"
	ColURL     = "url"
	ColEventID = "event_id"
)

// Header is the column order written by WriteRatings.
var Header = []string{ColRating, ColName, ColURL, ColEventID}

// Row is one imported rating.
type Row struct {
	Line    int
	EventID uuid.UUID
	Score   float64
}

// WriteRatings writes ers best first. hubRoute builds the url column.
func WriteRatings(w io.Writer, ers []model.EventRating, hubRoute string) error {
	sorted := append([]model.EventRating(nil), ers...)
	rating.SortByScore(sorted)

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, er := range sorted {
		record := []string{
			strconv.FormatFloat(er.Rating.Score, 'g', -1, 64),
			er.Event.Name,
			er.Event.URL(hubRoute),
			er.Event.ID.String(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write %s: %w", er.Event.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ReadRatings parses a ratings file. Columns are found by header name and
// extra columns are ignored. Rows with an empty rating are skipped so that a
// dumped file can be edited by clearing cells.
func ReadRatings(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	scoreIdx, idIdx := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case ColRating:
			scoreIdx = i
		case ColEventID:
			idIdx = i
		}
	}
	if scoreIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColRating)
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColEventID)
	}

	rows := make([]Row, 0)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedRow, err)
		}
		line, _ := cr.FieldPos(0)

		if scoreIdx >= len(record) || idIdx >= len(record) {
			return nil, fmt.Errorf("%w: line %d: expected at least %d fields, got %d",
				ErrMalformedRow, line, max(scoreIdx, idIdx)+1, len(record))
		}

		rawScore := strings.TrimSpace(record[scoreIdx])
		if rawScore == "" {
			continue
		}
		score, err := strconv.ParseFloat(rawScore, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: rating %q: %w", ErrMalformedRow, line, rawScore, err)
		}
		if math.IsNaN(score) || math.IsInf(score, 0) {
			return nil, fmt.Errorf("%w: line %d: rating %q is not finite", ErrMalformedRow, line, rawScore)
		}
		id, err := uuid.Parse(strings.TrimSpace(record[idIdx]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: event_id %q: %w", ErrMalformedRow, line, record[idIdx], err)
		}

		rows = append(rows, Row{Line: line, EventID: id, Score: score})
	}
	return rows, nil
}
