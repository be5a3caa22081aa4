package loader

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrplot/internal/model"
)

func TestParse_FileOrder(t *testing.T) {
	in := "measured_at_ms,heart_rate\n" +
		"3000,72\n" +
		"1000,70\n" +
		"2000,71.5\n"

	records, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []model.Record{
		{MeasuredAtMs: 3000, HeartRate: 72},
		{MeasuredAtMs: 1000, HeartRate: 70},
		{MeasuredAtMs: 2000, HeartRate: 71.5},
	}, records)
}

func TestParse_ColumnsByName(t *testing.T) {
	// Same shape as the exporter output: a leading index column.
	in := ",measured_at_ms,heart_rate\n" +
		"0,1700000000000,64\n" +
		"1,1700000001000,65\n"

	records, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(1700000000000), records[0].MeasuredAtMs)
	assert.Equal(t, 65.0, records[1].HeartRate)
}

func TestParse_ReorderedColumns(t *testing.T) {
	in := "heart_rate,device,measured_at_ms\n80,strap,5000\n"

	records, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []model.Record{{MeasuredAtMs: 5000, HeartRate: 80}}, records)
}

func TestParse_HeaderOnly(t *testing.T) {
	records, err := Parse(strings.NewReader("measured_at_ms,heart_rate\n"))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestParse_MissingColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("measured_at_ms,bpm\n1000,70\n"))
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), ColHeartRate)

	_, err = Parse(strings.NewReader("time,heart_rate\n1000,70\n"))
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), ColMeasuredAt)
}

func TestParse_MalformedRows(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		line   int
		column string
		err    error
	}{
		{"non-numeric heart rate", "measured_at_ms,heart_rate\n1000,70\n2000,abc\n", 3, ColHeartRate, strconv.ErrSyntax},
		{"fractional timestamp", "measured_at_ms,heart_rate\n1000.5,70\n", 2, ColMeasuredAt, strconv.ErrSyntax},
		{"empty timestamp", "measured_at_ms,heart_rate\n,70\n", 2, ColMeasuredAt, strconv.ErrSyntax},
		{"NaN heart rate", "measured_at_ms,heart_rate\n0,70\n1000,NaN\n", 3, ColHeartRate, ErrNotFinite},
		{"infinite heart rate", "measured_at_ms,heart_rate\n0,70\n1000,Inf\n", 3, ColHeartRate, ErrNotFinite},
		{"signed infinite heart rate", "measured_at_ms,heart_rate\n0,+Inf\n", 2, ColHeartRate, ErrNotFinite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			var rowErr *RowError
			require.True(t, errors.As(err, &rowErr), "got %v", err)
			assert.Equal(t, tt.line, rowErr.Line)
			assert.Equal(t, tt.column, rowErr.Column)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParse_RaggedRow(t *testing.T) {
	_, err := Parse(strings.NewReader("measured_at_ms,heart_rate\n1000\n"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heartrate.csv")
	require.NoError(t, os.WriteFile(path, []byte("measured_at_ms,heart_rate\n0,70\n1000,71\n"), 0o644))

	records, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
