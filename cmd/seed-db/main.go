// Command seed-db loads the embedded PescAstur catalog into PostgreSQL.
// Existing products are updated in place, so the command is safe to re-run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pescastur/storefront/db"
	"github.com/pescastur/storefront/internal/domain/product"
	"github.com/pescastur/storefront/internal/repository"
)

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "", "path to a products JSON file (default: embedded catalog)")
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

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	data := db.SeedProducts
	if productsFile != "" {
		var err error
		data, err = os.ReadFile(productsFile)
		if err != nil {
			return err
		}
	}

	var products []product.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return err
	}

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return err
	}

	repo := repository.NewProductRepository(pool)
	if err := repo.BatchUpsert(ctx, products); err != nil {
		return err
	}

	slog.Info("catalog seeded", "products", len(products))
	return nil
}
