package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"hrplot/internal/model"
)

const defaultBatchSize = 500

// WriterConfig configures the SQLite writer.
type WriterConfig struct {
	DBPath    string // path to SQLite database file, e.g. "data/heartrate.db"
	BatchSize int    // rows per prepared-statement batch, default 500
}

// Writer imports raw heart-rate recordings. Only input records are stored;
// derived values are always recomputed when a recording is plotted.
type Writer struct {
	db        *sql.DB
	batchSize int
	now       func() time.Time
}

// New creates a new SQLite Writer, initializes the database with WAL mode and schema.
func New(cfg WriterConfig) (*Writer, error) {
	db, err := open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	// Set connection pool for single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}

	slog.Info("sqlite opened", slog.String("path", cfg.DBPath))
	return &Writer{db: db, batchSize: batch, now: time.Now}, nil
}

func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	return db, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS recordings (
			id          TEXT    PRIMARY KEY,
			source      TEXT    NOT NULL,
			samples     INTEGER NOT NULL,
			imported_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS heart_rate_records (
			recording_id   TEXT    NOT NULL REFERENCES recordings(id) ON DELETE CASCADE,
			seq            INTEGER NOT NULL,
			measured_at_ms INTEGER NOT NULL,
			heart_rate     REAL    NOT NULL,
			PRIMARY KEY (recording_id, seq)
		);
	`)
	return err
}

// Import stores records as a new recording in a single transaction, keeping
// their order in seq so the recording reads back in file order.
func (w *Writer) Import(ctx context.Context, source string, records []model.Record) (model.Recording, error) {
	rec := model.Recording{
		ID:         uuid.NewString(),
		Source:     source,
		Samples:    len(records),
		ImportedAt: w.now().UTC().Truncate(time.Second),
	}

	start := time.Now()
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Recording{}, fmt.Errorf("sqlite begin: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO recordings (id, source, samples, imported_at) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Source, rec.Samples, rec.ImportedAt.Unix(),
	); err != nil {
		tx.Rollback()
		return model.Recording{}, fmt.Errorf("sqlite insert recording: %w", err)
	}

	for off := 0; off < len(records); off += w.batchSize {
		end := min(off+w.batchSize, len(records))
		if err := insertBatch(ctx, tx, rec.ID, off, records[off:end]); err != nil {
			tx.Rollback()
			return model.Recording{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Recording{}, fmt.Errorf("sqlite commit: %w", err)
	}

	slog.Info("recording imported",
		slog.String("recording_id", rec.ID),
		slog.Int("samples", rec.Samples),
		slog.Duration("took", time.Since(start)),
	)
	return rec, nil
}

// insertBatch inserts records starting at sequence number first.
func insertBatch(ctx context.Context, tx *sql.Tx, id string, first int, records []model.Record) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO heart_rate_records (recording_id, seq, measured_at_ms, heart_rate)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("sqlite prepare: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, id, first+i, r.MeasuredAtMs, r.HeartRate); err != nil {
			return fmt.Errorf("sqlite insert record %d: %w", first+i, err)
		}
	}
	return nil
}

// Delete removes a recording and its records.
func (w *Writer) Delete(ctx context.Context, id string) error {
	res, err := w.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite delete recording: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordingNotFound
	}
	return nil
}

// Close closes the database.
func (w *Writer) Close() error {
	return w.db.Close()
}
