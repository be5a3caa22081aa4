// Package loader reads heart-rate records from delimited text files.
//
// The file must start with a header row. Columns are located by name, so
// extra columns (such as a leading row index) and column order do not matter.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"hrplot/internal/model"
)

// Column names the file producer and the loader agree on.
const (
	ColMeasuredAt = "measured_at_ms"
	ColHeartRate  = "heart_rate"
)

var (
	// ErrNoHeader is returned when the input does not even contain a header row.
	ErrNoHeader = errors.New("csv: missing header row")
	// ErrMissingColumn is returned when a required column is absent from the header.
	ErrMissingColumn = errors.New("csv: missing required column")
	// ErrNotFinite is wrapped by a RowError for NaN or infinite heart rates.
	ErrNotFinite = errors.New("value is not a finite number")
)

// RowError reports a cell that could not be parsed.
type RowError struct {
	Line   int // 1-based line number in the file, header is line 1
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("csv line %d: parsing %s %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Load reads all records from the CSV file at path, in file order.
func Load(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV file: %w", err)
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return records, nil
}

// Parse reads all records from r, in input order. A header-only input
// yields an empty, non-nil slice.
func Parse(r io.Reader) ([]model.Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	tsIdx, hrIdx, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, 1024)
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}

		rec, err := parseRow(row, line, tsIdx, hrIdx)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func locateColumns(header []string) (tsIdx, hrIdx int, err error) {
	tsIdx, hrIdx = -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case ColMeasuredAt:
			tsIdx = i
		case ColHeartRate:
			hrIdx = i
		}
	}
	if tsIdx < 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrMissingColumn, ColMeasuredAt)
	}
	if hrIdx < 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrMissingColumn, ColHeartRate)
	}
	return tsIdx, hrIdx, nil
}

func parseRow(row []string, line, tsIdx, hrIdx int) (model.Record, error) {
	tsRaw := strings.TrimSpace(row[tsIdx])
	ms, err := strconv.ParseInt(tsRaw, 10, 64)
	if err != nil {
		return model.Record{}, &RowError{Line: line, Column: ColMeasuredAt, Value: tsRaw, Err: err}
	}

	hrRaw := strings.TrimSpace(row[hrIdx])
	hr, err := strconv.ParseFloat(hrRaw, 64)
	if err != nil {
		return model.Record{}, &RowError{Line: line, Column: ColHeartRate, Value: hrRaw, Err: err}
	}
	if math.IsNaN(hr) || math.IsInf(hr, 0) {
		return model.Record{}, &RowError{Line: line, Column: ColHeartRate, Value: hrRaw, Err: ErrNotFinite}
	}

	return model.Record{MeasuredAtMs: ms, HeartRate: hr}, nil
}
