// Package sqlite stores imported heart-rate recordings in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hrplot/internal/logger"
	"hrplot/internal/model"
)

// ErrRecordingNotFound is returned when a recording ID is unknown.
var ErrRecordingNotFound = errors.New("sqlite: recording not found")

// Reader provides read-only access to imported recordings.
type Reader struct {
	db *sql.DB
}

// NewReader opens a SQLite connection for reading.
func NewReader(dbPath string) (*Reader, error) {
	db, err := open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite open reader: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)

	slog.Debug("sqlite reader opened", slog.String("path", dbPath))
	return &Reader{db: db}, nil
}

// ReadRecords returns a recording's records in their original file order.
func (r *Reader) ReadRecords(ctx context.Context, id string) ([]model.Record, error) {
	if _, err := r.Recording(ctx, id); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT measured_at_ms, heart_rate
		FROM heart_rate_records
		WHERE recording_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite query heart_rate_records: %w", err)
	}
	defer rows.Close()

	records := []model.Record{}
	for rows.Next() {
		var rec model.Record
		if err := rows.Scan(&rec.MeasuredAtMs, &rec.HeartRate); err != nil {
			return nil, fmt.Errorf("sqlite scan heart_rate_records: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite read heart_rate_records: %w", err)
	}

	attrs := append(logger.LogWithRun(ctx),
		slog.String("recording_id", id),
		slog.Int("samples", len(records)),
	)
	slog.InfoContext(ctx, "recording loaded", attrs...)
	return records, nil
}

// Recording returns the metadata of one recording.
func (r *Reader) Recording(ctx context.Context, id string) (model.Recording, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, source, samples, imported_at FROM recordings WHERE id = ?`, id)
	rec, err := scanRecording(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Recording{}, fmt.Errorf("%w: %s", ErrRecordingNotFound, id)
	}
	return rec, err
}

// Latest returns the most recently imported recording.
func (r *Reader) Latest(ctx context.Context) (model.Recording, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, source, samples, imported_at FROM recordings
		ORDER BY imported_at DESC, rowid DESC
		LIMIT 1
	`)
	rec, err := scanRecording(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Recording{}, ErrRecordingNotFound
	}
	return rec, err
}

// ListRecordings returns all recordings, newest first.
func (r *Reader) ListRecordings(ctx context.Context) ([]model.Recording, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source, samples, imported_at FROM recordings
		ORDER BY imported_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite query recordings: %w", err)
	}
	defer rows.Close()

	var out []model.Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecording(s scanner) (model.Recording, error) {
	var rec model.Recording
	var importedAt int64
	if err := s.Scan(&rec.ID, &rec.Source, &rec.Samples, &importedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Recording{}, err
		}
		return model.Recording{}, fmt.Errorf("sqlite scan recording: %w", err)
	}
	rec.ImportedAt = time.Unix(importedAt, 0).UTC()
	return rec, nil
}

// Close closes the reader.
func (r *Reader) Close() error {
	return r.db.Close()
}
