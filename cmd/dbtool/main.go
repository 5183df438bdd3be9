package main

import (
	"context"
	"os"
	"strings"
	"time"

	"roadtrip-route-service/internal/adapters/repositories"
	"roadtrip-route-service/internal/config"
	"roadtrip-route-service/internal/platform/db"
	"roadtrip-route-service/internal/platform/obs"

	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
)

// dbtool initializes the Postgres schema and loads the location catalogue.
func main() {
	log := obs.NewLogger(os.Stderr, config.Get("LOG_LEVEL", "info"))
	slog.SetDefault(log)

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	seedPath := config.Get("SEED_PATH", "data/seeds/state_capitals.json")
	if err := initAndSeed(ctx, databaseURL, seedPath, log); err != nil {
		log.Error("dbtool failed", "err", err)
		os.Exit(1)
	}
}

func initAndSeed(ctx context.Context, databaseURL, seedPath string, log *slog.Logger) error {
	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Info("initializing database schema")
	if err := repositories.InitPostgresSchema(ctx, conn); err != nil {
		return err
	}
	log.Info("schema ready")

	locs, err := repositories.LoadLocationSeeds(seedPath)
	if err != nil {
		return err
	}

	log.Info("seeding database", "path", seedPath, "locations", len(locs))
	if err := repositories.SeedPostgresLocations(ctx, conn, locs); err != nil {
		return err
	}
	log.Info("seeding complete")

	return nil
}
