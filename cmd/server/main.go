package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"roadtrip-route-service/internal/adapters/cache"
	"roadtrip-route-service/internal/adapters/repositories"
	"roadtrip-route-service/internal/api"
	"roadtrip-route-service/internal/config"
	"roadtrip-route-service/internal/domain"
	"roadtrip-route-service/internal/platform/db"
	"roadtrip-route-service/internal/platform/obs"
	"roadtrip-route-service/internal/ports"
	"roadtrip-route-service/internal/services"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

// main is the application composition root.
// It wires concrete adapters (SQLite or Postgres, optional Redis) behind ports
// and starts the HTTP server.
func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load(config.Get("CONFIG_PATH", ""))
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	log := obs.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(log)
	if envErr != nil {
		log.Info("no .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	repo, closeDB, err := openRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	var routeCache ports.RouteCache
	if strings.TrimSpace(cfg.RedisURL) != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		routeCache = cache.NewRedisRouteCache(client, cfg.CacheTTL)
		log.Info("route cache enabled", "addr", opts.Addr, "ttl", cfg.CacheTTL)
	}

	optimizer := services.NewOptimizer(services.OptimizerOptions{
		RadiusStep:          cfg.Optimizer.RadiusStep,
		MaxRadius:           cfg.Optimizer.MaxRadius,
		MaxAttempts:         cfg.Optimizer.MaxAttempts,
		StagnationThreshold: cfg.Optimizer.StagnationThreshold,
		YieldInterval:       cfg.Optimizer.YieldInterval,
		WrapAround:          cfg.Optimizer.WrapAround,
		Seed:                cfg.Optimizer.Seed,
		Logger:              log,
	})

	svc, err := services.NewRouteService(services.RouteServiceConfig{
		Repo:      repo,
		Cache:     routeCache,
		Optimizer: optimizer,
		Season:    domain.Season{Year: cfg.SeasonYear},
		Logger:    log,
	})
	if err != nil {
		return err
	}

	// Timeouts leave room for a slow optimization on a large catalogue.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(svc, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openRepository picks Postgres when DATABASE_URL is set and SQLite otherwise,
// then initializes the schema and seeds the catalogue.
func openRepository(ctx context.Context, cfg config.Config, log *slog.Logger) (ports.RouteRepository, func(), error) {
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		locs, err := repositories.LoadLocationSeeds(cfg.SeedPath)
		if err != nil {
			return nil, nil, err
		}

		pg, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitPostgresSchema(ctx, pg); err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
		if err := repositories.SeedPostgresLocations(ctx, pg, locs); err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
		log.Info("using postgres", "locations", len(locs))
		return repositories.NewSQLRouteRepository(pg), closer(pg, log), nil
	}

	lite, err := db.OpenSqlite(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	// Initialize schema and seed on startup for local runs.
	if err := initAndSeed(lite, cfg.SeedPath); err != nil {
		_ = lite.Close()
		return nil, nil, err
	}
	log.Info("using sqlite", "path", cfg.DBPath, "seed", cfg.SeedPath)
	return repositories.NewSqliteRouteRepository(lite), closer(lite, log), nil
}

func initAndSeed(lite *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(lite); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(lite, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}

func closer(d *sql.DB, log *slog.Logger) func() {
	return func() {
		if err := d.Close(); err != nil {
			log.Warn("close database", "err", err)
		}
	}
}
