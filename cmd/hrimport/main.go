// cmd/hrimport stores heart-rate CSV files as recordings in SQLite so they
// can be plotted later with hrplot --source=sqlite.
//
// Usage:
//
//	go run ./cmd/hrimport --db=data/heartrate.db heartrate.csv [more.csv ...]
//	go run ./cmd/hrimport --db=data/heartrate.db --list
//	go run ./cmd/hrimport --db=data/heartrate.db --delete=<id>
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"hrplot/config"
	"hrplot/internal/loader"
	"hrplot/internal/logger"
	sqlitestore "hrplot/internal/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	dbPath := flag.String("db", cfg.SQLitePath, "Path to SQLite recording store")
	list := flag.Bool("list", false, "List stored recordings and exit")
	del := flag.String("delete", "", "Delete the recording with this ID and exit")
	flag.Parse()

	log := logger.Init("hrimport", logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *dbPath, *list, *del, flag.Args()); err != nil {
		log.Error("hrimport failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, dbPath string, list bool, del string, files []string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("creating db dir: %w", err)
	}

	writer, err := sqlitestore.New(sqlitestore.WriterConfig{DBPath: dbPath})
	if err != nil {
		return err
	}
	defer writer.Close()

	switch {
	case del != "":
		if err := writer.Delete(ctx, del); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", del)
		return nil
	case list:
		return printRecordings(ctx, dbPath)
	}

	if len(files) == 0 {
		return fmt.Errorf("no CSV files given")
	}
	for _, path := range files {
		records, err := loader.Load(path)
		if err != nil {
			return err
		}
		rec, err := writer.Import(ctx, path, records)
		if err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		fmt.Printf("%s\t%s\t%d samples\n", rec.ID, path, rec.Samples)
	}
	return nil
}

func printRecordings(ctx context.Context, dbPath string) error {
	reader, err := sqlitestore.NewReader(dbPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	recs, err := reader.ListRecordings(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOURCE\tSAMPLES\tIMPORTED")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.ID, r.Source, r.Samples, r.ImportedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}
