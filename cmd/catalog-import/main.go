// Command catalog-import loads gzipped NDJSON supplier feeds into the
// catalog. Feeds from different suppliers may overlap; the first occurrence
// of an external ref wins within a run, and re-running refreshes previously
// imported rows (upsert by ref).
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/vailshop/catalog-admin/internal/storage/postgres"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	// scanBufSize bounds a single feed line; description fields can be long.
	scanBufSize = 1 << 20
)

func main() {
	var (
		feedDir     string
		databaseURL string
	)

	flag.StringVar(&feedDir, "feed-dir", "feeds", "directory containing *.ndjson.gz supplier feeds")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, feedDir, databaseURL); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, feedDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(feedDir, "*.ndjson.gz"))
	if err != nil {
		return errors.Wrap(err, "list feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.ndjson.gz files in %s", feedDir)
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	rows := make(chan postgres.ImportRow, 1024)

	g, gctx := errgroup.WithContext(ctx)
	for _, file := range files {
		g.Go(func() error {
			return scanFeed(gctx, file, rows)
		})
	}
	go func() {
		_ = g.Wait()
		close(rows)
	}()

	// Single writer: the bloom filter and the importer's category cache are
	// not safe for concurrent use.
	importer := postgres.NewImporter(pool)
	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)

	var imported, duplicates int
	for row := range rows {
		if seen.TestOrAddString(row.Ref) {
			duplicates++
			continue
		}

		categoryID, err := importer.EnsureCategory(ctx, row.Category)
		if err != nil {
			return err
		}
		if err := importer.Upsert(ctx, row, categoryID); err != nil {
			return err
		}
		imported++
	}

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("import finished",
		slog.Int("files", len(files)),
		slog.Int("imported", imported),
		slog.Int("duplicates", duplicates),
	)
	return nil
}

// scanFeed streams one gzipped NDJSON feed into the rows channel. Rows that
// fail to parse or carry a non-positive price are skipped with a warning.
func scanFeed(ctx context.Context, path string, rows chan<- postgres.ImportRow) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "gunzip %s", path)
	}
	defer gz.Close()

	name := filepath.Base(path)
	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), scanBufSize)

	var skipped int
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var row postgres.ImportRow
		if err := json.Unmarshal(line, &row); err != nil {
			skipped++
			continue
		}
		if row.Ref == "" || row.Title == "" || row.Category == "" || !row.Price.IsPositive() {
			skipped++
			continue
		}

		select {
		case rows <- row:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	if skipped > 0 {
		slog.Warn("skipped malformed feed rows", slog.String("file", name), slog.Int("count", skipped))
	}
	slog.Info("feed scanned", slog.String("file", name))
	return nil
}
