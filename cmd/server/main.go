// Package main runs the market service: the feed clock, the HTTP API and the
// websocket push hub, backed by in-memory or Postgres/ClickHouse archives.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"token-pulse/internal/api"
	"token-pulse/internal/config"
	"token-pulse/internal/feed"
	"token-pulse/internal/logging"
	"token-pulse/internal/market"
	"token-pulse/internal/simulation"
	"token-pulse/internal/storage"
	chstore "token-pulse/internal/storage/clickhouse"
	"token-pulse/internal/storage/memory"
	"token-pulse/internal/storage/migrations"
	pgstore "token-pulse/internal/storage/postgres"
)

// archive holds the storage sinks the feed writes to.
type archive struct {
	name    string
	catalog storage.TokenCatalogStore
	samples storage.PriceSampleStore
}

func main() {
	configPath := flag.String("config", os.Getenv("PULSE_CONFIG"), "Path to YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides http.addr)")
	universe := flag.Int("universe", 0, "Number of tokens to generate (overrides market.universe_size)")
	interval := flag.Duration("interval", 0, "Tick interval (overrides market.tick_interval)")
	seed := flag.Int64("seed", 0, "Simulator seed, 0 = time-based (overrides market.seed)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string")
	logFile := flag.String("log-file", "", "Rotated log file (in addition to stdout)")
	debug := flag.Bool("debug", false, "Log every tick")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// Flags explicitly set on the command line win over file and env.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.HTTP.Addr = *addr
		case "universe":
			cfg.Market.UniverseSize = *universe
		case "interval":
			cfg.Market.TickInterval = *interval
		case "seed":
			cfg.Market.Seed = *seed
		case "use-memory":
			cfg.Storage.UseMemory = *useMemory
		case "postgres-dsn":
			cfg.Storage.PostgresDSN = *postgresDSN
			cfg.Storage.UseMemory = false
		case "clickhouse-dsn":
			cfg.Storage.ClickhouseDSN = *clickhouseDSN
			cfg.Storage.UseMemory = false
		case "log-file":
			cfg.Logging.File = *logFile
		case "debug":
			if *debug {
				cfg.Logging.Level = "debug"
			}
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	out := logging.NewOutput(cfg.Logging.File)
	defer out.Close()
	logger := out.Logger("server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	arch, cleanup, err := createArchive(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()
	logger.Printf("Archive: %s", arch.name)

	// Create market
	sim, err := simulation.New(simulation.DefaultConfig(), simulatorSource(cfg.Market.Seed))
	if err != nil {
		logger.Fatalf("Failed to create simulator: %v", err)
	}
	store := market.NewStore(market.Options{
		Simulator: sim,
		Logger:    out.Logger("market"),
	})
	if err := store.Init(cfg.Market.UniverseSize); err != nil {
		logger.Fatalf("Failed to initialize market: %v", err)
	}

	runner := feed.NewRunner(feed.RunnerOptions{
		Store:       store,
		Samples:     arch.samples,
		Catalog:     arch.catalog,
		ArchiveName: arch.name,
		Interval:    cfg.Market.TickInterval,
		Verbose:     cfg.Debug(),
		Logger:      out.Logger("feed"),
	})

	server := api.NewServer(api.Options{
		Addr:    cfg.HTTP.Addr,
		Store:   store,
		Hub:     api.NewHub(store, out.Logger("ws")),
		Feed:    runner,
		Samples: arch.samples,
		Logger:  out.Logger("api"),
	})

	// Channel to signal completion
	done := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
			cancel()
		case <-done:
			return
		}

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	errCh := make(chan error, 3)
	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("feed: %w", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := server.Hub().Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("websocket hub: %w", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP shutdown error: %v", err)
	}
	wg.Wait()
	close(done)

	if runErr != nil {
		logger.Fatalf("Server error: %v", runErr)
	}
	logger.Println("Shutdown complete")
}

// simulatorSource returns a seeded source, or nil for a time-based one.
func simulatorSource(seed int64) simulation.Source {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewSource(seed))
}

// createArchive creates the catalog and sample stores and applies migrations.
func createArchive(ctx context.Context, cfg *config.Config) (*archive, func(), error) {
	if cfg.Storage.UseMemory {
		return &archive{
			name:    "memory",
			catalog: memory.NewTokenCatalogStore(),
			samples: memory.NewPriceSampleStoreWithLimit(cfg.Storage.SampleLimit),
		}, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate postgres: %w", err)
	}

	// ClickHouse
	chConn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return &archive{
		name:    "postgres+clickhouse",
		catalog: pgstore.NewTokenCatalogStore(pool),
		samples: chstore.NewPriceSampleStore(chConn),
	}, cleanup, nil
}
