// Command goldfetch warms the daily gold price cache.
//
// Intended for cron, so the first page view of the day does not pay for the
// upstream fetch:
//
//	goldfetch -db ./data/zakat.db
//
// Exits non-zero when the feed is unreachable and no usable price exists
// for today.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/yousefshawky/zakatyyy/internal/config"
	"github.com/yousefshawky/zakatyyy/internal/database"
	"github.com/yousefshawky/zakatyyy/internal/gold"
	"github.com/yousefshawky/zakatyyy/internal/zakat"
)

func main() {
	var (
		dbPath = flag.String("db", "", "path to the SQLite database (defaults to DATABASE_PATH)")
		force  = flag.Bool("force", false, "refetch even if today's price is already cached")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if *dbPath == "" {
		*dbPath = cfg.DatabasePath
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(cfg, log, *dbPath, *force); err != nil {
		log.Error("goldfetch failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger, dbPath string, force bool) error {
	db, err := database.Open(database.DefaultConfig(dbPath), log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	today := zakat.FormatDate(time.Now())

	if !force {
		if cached, err := db.GetGoldPrice(ctx, today); err == nil {
			log.Info("price already cached",
				slog.String("day", cached.Day),
				slog.String("price", cached.Price.String()),
			)
			return nil
		}
	}

	client := gold.NewClient(cfg.GoldAPIKey)
	if cfg.GoldAPIURL != "" {
		client.BaseURL = cfg.GoldAPIURL
	}

	perOunce, err := client.FetchOuncePrice(ctx)
	if err != nil {
		return fmt.Errorf("fetch gold price: %w", err)
	}

	nisaab := gold.NisaabFromOunce(perOunce)
	if err := db.PutGoldPrice(ctx, today, nisaab, time.Now()); err != nil {
		return fmt.Errorf("cache gold price: %w", err)
	}

	log.Info("price cached",
		slog.String("day", today),
		slog.String("per_ounce", perOunce.String()),
		slog.String("nisaab", nisaab.String()),
	)
	return nil
}
