// Command catalog-ingest imports supplier product feeds into the catalog.
// Feeds are gzip-compressed NDJSON files, one product per line. All feeds in
// the data directory are parsed concurrently; when the same product appears
// in more than one feed the first occurrence wins.
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
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/pescastur/storefront/internal/domain/product"
	"github.com/pescastur/storefront/internal/repository"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	batchSize     = 500
)

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.ndjson.gz supplier feeds")
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

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.ndjson.gz"))
	if err != nil {
		return errors.Wrap(err, "list feeds")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.ndjson.gz feeds found in %s", dataDir)
	}

	slog.Info("parsing feeds", slog.Int("files", len(files)))

	feeds, err := parseFeeds(ctx, files)
	if err != nil {
		return errors.Wrap(err, "parse feeds")
	}

	products := dedupe(feeds)
	slog.Info("feeds merged", slog.Int("products", len(products)))

	if len(products) == 0 {
		slog.Info("nothing to import")
		return nil
	}

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := repository.NewProductRepository(pool)
	for start := 0; start < len(products); start += batchSize {
		end := min(start+batchSize, len(products))
		if err := repo.BatchUpsert(ctx, products[start:end]); err != nil {
			return errors.Wrapf(err, "upsert batch %d..%d", start, end)
		}
		slog.Info("import progress", slog.Int("written", end), slog.Int("total", len(products)))
	}

	return nil
}

// parseFeeds reads every feed concurrently. Results keep the input file
// order so deduplication is deterministic.
func parseFeeds(ctx context.Context, files []string) ([][]product.Product, error) {
	feeds := make([][]product.Product, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(parseFeed(ctx, i, f, feeds))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return feeds, nil
}

func parseFeed(ctx context.Context, idx int, path string, feeds [][]product.Product) func() error {
	return func() error {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()

		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()

		var (
			parsed  []product.Product
			skipped int
			line    int
		)

		scanner := bufio.NewScanner(gz)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			if err := ctx.Err(); err != nil {
				return err
			}
			line++

			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}

			var p product.Product
			if err := json.Unmarshal([]byte(text), &p); err != nil {
				slog.Warn("skipping malformed line",
					slog.String("file", path),
					slog.Int("line", line),
					slog.String("error", err.Error()),
				)
				skipped++
				continue
			}
			if p.UID == "" || p.Name == "" {
				skipped++
				continue
			}

			parsed = append(parsed, p)
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("feed parsed",
			slog.String("file", path),
			slog.Int("products", len(parsed)),
			slog.Int("skipped", skipped),
		)

		feeds[idx] = parsed
		return nil
	}
}

// dedupe flattens the feeds keeping the first occurrence of each product.
// A bloom filter screens the common no-collision case; only probable
// duplicates pay for the exact map lookup.
func dedupe(feeds [][]product.Product) []product.Product {
	filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	seen := make(map[string]struct{})

	var merged []product.Product
	for _, feed := range feeds {
		for _, p := range feed {
			if filter.TestString(p.UID) {
				if _, dup := seen[p.UID]; dup {
					continue
				}
			}
			filter.AddString(p.UID)
			seen[p.UID] = struct{}{}
			merged = append(merged, p)
		}
	}
	return merged
}
