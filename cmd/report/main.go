// Package main generates a position report for one owner: risk overview
// with utilization bands, claimable rewards, yield estimates, and claim
// history, rendered as Markdown and CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"lendlab/internal/ledger"
	"lendlab/internal/ledger/stub"
	"lendlab/internal/refresh"
	"lendlab/internal/reporting"
	"lendlab/internal/storage"
	"lendlab/internal/storage/memory"
	"lendlab/internal/storage/migrations"
	pgstore "lendlab/internal/storage/postgres"
)

func main() {
	owner := flag.String("owner", stub.DemoOwner, "Owner wallet address")
	rpcEndpoint := flag.String("rpc-endpoint", "", "Lending market RPC endpoint (omit for fixture market)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (omit for in-memory stores)")
	outputDir := flag.String("output-dir", "", "Output directory for generated files (omit to print to stdout)")
	verbose := flag.Bool("verbose", false, "Verbose refresh logging")
	flag.Parse()

	ctx := context.Background()

	if err := ledger.ValidateOwnerAddress(*owner); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid owner address: %v\n", err)
		os.Exit(1)
	}

	var reader ledger.Reader
	if *rpcEndpoint != "" {
		reader = ledger.NewHTTPClient(*rpcEndpoint)
	} else {
		fixture := stub.NewReader()
		stub.SeedDemo(fixture)
		reader = fixture
	}

	var (
		snapshots storage.RewardSnapshotStore
		records   storage.ClaimRecordStore
	)
	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: connect postgres: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			fmt.Fprintf(os.Stderr, "Error: migrations: %v\n", err)
			os.Exit(1)
		}
		snapshots = pgstore.NewRewardSnapshotStore(pool)
		records = pgstore.NewClaimRecordStore(pool)
	} else {
		snapshots = memory.NewRewardSnapshotStore()
		records = memory.NewClaimRecordStore()
	}

	runner := refresh.New(refresh.Options{
		Reader:    reader,
		Owner:     *owner,
		Snapshots: snapshots,
		Verbose:   *verbose,
	})
	cycle, err := runner.RunOnce(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: refresh failed: %v\n", err)
		os.Exit(1)
	}

	generator := reporting.NewGenerator(snapshots, records)
	report, err := generator.Generate(ctx, *owner, cycle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: report generation failed: %v\n", err)
		os.Exit(1)
	}

	markdown := reporting.RenderMarkdown(report)

	if *outputDir == "" {
		fmt.Print(markdown)
		return
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: create output dir: %v\n", err)
		os.Exit(1)
	}

	outputs := map[string]string{
		"REPORT.md":     markdown,
		"positions.csv": reporting.RenderCSV(report.Positions),
		"yields.csv":    reporting.RenderYieldCSV(report.Yields),
	}
	for name, content := range outputs {
		path := filepath.Join(*outputDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
	}
}
