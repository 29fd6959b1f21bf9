// Package main runs the long-lived accounting service: a periodic refresh
// cycle persisting position samples and reward snapshots, an optional
// WebSocket price feed, and a Prometheus metrics endpoint.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"lendlab/internal/ledger"
	"lendlab/internal/ledger/stub"
	"lendlab/internal/observability"
	"lendlab/internal/refresh"
	"lendlab/internal/storage"
	"lendlab/internal/storage/memory"
	"lendlab/internal/storage/migrations"
	pgstore "lendlab/internal/storage/postgres"

	chstore "lendlab/internal/storage/clickhouse"
)

func main() {
	loadEnvFile()

	owner := flag.String("owner", os.Getenv("LENDLAB_OWNER"), "Owner wallet address")
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("LENDLAB_RPC_ENDPOINT"), "Lending market RPC endpoint (omit for fixture market)")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("LENDLAB_WS_ENDPOINT"), "Price feed WebSocket endpoint (optional)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of databases")
	refreshInterval := flag.Duration("refresh-interval", refresh.DefaultInterval, "Refresh cycle interval")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")
	verbose := flag.Bool("verbose", false, "Verbose refresh logging")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags)

	if *owner == "" {
		*owner = stub.DemoOwner
	}
	if err := ledger.ValidateOwnerAddress(*owner); err != nil {
		logger.Fatalf("invalid owner address: %v", err)
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required unless --use-memory is set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stores
	var (
		samples   storage.PositionSampleStore
		snapshots storage.RewardSnapshotStore
	)
	if *useMemory {
		samples = memory.NewPositionSampleStore()
		snapshots = memory.NewRewardSnapshotStore()
	} else {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("postgres migrations: %v", err)
		}
		snapshots = pgstore.NewRewardSnapshotStore(pool)

		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("clickhouse migrations: %v", err)
		}
		defer conn.Close()
		samples = chstore.NewPositionSampleStore(conn)
	}

	// Market reader
	var reader ledger.Reader
	if *rpcEndpoint != "" {
		reader = ledger.NewHTTPClient(*rpcEndpoint)
	} else {
		logger.Println("no --rpc-endpoint, serving fixture market")
		fixture := stub.NewReader()
		stub.SeedDemo(fixture)
		reader = fixture
	}

	// Optional price feed
	var prices <-chan ledger.PriceUpdate
	if *wsEndpoint != "" {
		feed, err := ledger.NewPriceFeed(ctx, *wsEndpoint, nil)
		if err != nil {
			logger.Fatalf("connect price feed: %v", err)
		}
		defer feed.Close()
		prices = feed.Updates()
	}

	runner := refresh.New(refresh.Options{
		Reader:    reader,
		Owner:     *owner,
		Samples:   samples,
		Snapshots: snapshots,
		Interval:  *refreshInterval,
		Verbose:   *verbose,
	})

	// Metrics endpoint
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		status := map[string]any{"status": "ok"}
		if cycle := runner.Latest(); cycle != nil {
			status["last_refresh_ms"] = cycle.TimestampMs
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	})
	httpServer := &http.Server{Addr: *metricsAddr, Handler: mux}
	go func() {
		logger.Printf("metrics listening on %s", *metricsAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("metrics server: %v", err)
		}
	}()

	done := make(chan error, 1)
	go func() {
		done <- runner.Run(ctx, prices)
	}()
	logger.Printf("refreshing %s every %s", *owner, *refreshInterval)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Printf("received %s, shutting down", sig)
		cancel()
		<-done
	case err := <-done:
		if err != nil && err != context.Canceled {
			logger.Printf("refresh loop stopped: %v", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("metrics server shutdown: %v", err)
	}
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
