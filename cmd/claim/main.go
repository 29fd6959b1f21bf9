// Package main builds and optionally executes a reward claim plan for one
// owner: refresh the market, assemble the reward ledger, plan the claim
// (direct or consolidated into a single asset), and print the result.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"lendlab/internal/domain"
	"lendlab/internal/ledger"
	"lendlab/internal/ledger/stub"
	"lendlab/internal/planner"
	"lendlab/internal/refresh"
	"lendlab/internal/routing"
	"lendlab/internal/storage"
	pgstore "lendlab/internal/storage/postgres"
)

func main() {
	owner := flag.String("owner", stub.DemoOwner, "Owner wallet address")
	mode := flag.String("mode", "CLAIM_AND_DEPOSIT", "Claim mode: CLAIM_TO_WALLET | CLAIM_AND_DEPOSIT | SWAP_TO_WALLET | SWAP_AND_DEPOSIT")
	target := flag.String("target", "", "Target coin type for swapping modes")
	rpcEndpoint := flag.String("rpc-endpoint", "", "Lending market RPC endpoint (omit for fixture market)")
	routerEndpoint := flag.String("router-endpoint", "", "Swap router REST endpoint (omit for fixture routing)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL DSN for recording the claim outcome (optional)")
	dryRun := flag.Bool("dry-run", false, "Build and print the plan without executing")
	verbose := flag.Bool("verbose", false, "Verbose planner logging")
	flag.Parse()

	ctx := context.Background()

	claimMode := domain.ClaimMode(strings.ToUpper(*mode))
	if !claimMode.IsValid() {
		fmt.Fprintf(os.Stderr, "Error: invalid --mode %q\n", *mode)
		os.Exit(1)
	}
	if claimMode.IsSwapping() && *target == "" {
		fmt.Fprintln(os.Stderr, "Error: --target is required for swapping modes")
		os.Exit(1)
	}

	if err := ledger.ValidateOwnerAddress(*owner); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid owner address: %v\n", err)
		os.Exit(1)
	}

	// Market reader: live RPC or the fixture market.
	var reader ledger.Reader
	if *rpcEndpoint != "" {
		reader = ledger.NewHTTPClient(*rpcEndpoint)
	} else {
		fixture := stub.NewReader()
		stub.SeedDemo(fixture)
		reader = fixture
	}

	runner := refresh.New(refresh.Options{Reader: reader, Owner: *owner, Verbose: *verbose})
	cycle, err := runner.RunOnce(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: refresh failed: %v\n", err)
		os.Exit(1)
	}

	if len(cycle.RewardMap) == 0 {
		fmt.Println("Nothing to claim.")
		return
	}

	provider := buildProvider(*routerEndpoint, *target, cycle)

	obligationIDs := make([]string, 0, len(cycle.Obligations))
	for _, o := range cycle.Obligations {
		obligationIDs = append(obligationIDs, o.ID)
	}

	p := planner.New(planner.Options{Provider: provider, Verbose: *verbose})
	plan, err := p.Build(ctx, planner.Config{
		Owner:          *owner,
		Mode:           claimMode,
		TargetCoinType: *target,
		ObligationIDs:  obligationIDs,
	}, cycle.RewardMap)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: plan failed: %v\n", err)
		os.Exit(1)
	}

	printPlan(plan)

	if *dryRun {
		fmt.Println("\nDry run; plan not executed.")
		return
	}

	var records storage.ClaimRecordStore
	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: connect postgres: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()
		records = pgstore.NewClaimRecordStore(pool)
	}

	result, err := planner.Execute(ctx, plan, localSubmitter{}, records)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: execution failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\n%s, digest %s\n", result, result.Digest)
}

// buildProvider returns the live router when configured, otherwise a stub
// quoting at the fixture market's price ratios relative to the target.
func buildProvider(endpoint, target string, cycle *refresh.CycleResult) routing.QuoteProvider {
	if endpoint != "" {
		return routing.NewHTTPProvider(endpoint)
	}

	prices := make(map[string]float64, len(cycle.Reserves))
	for _, res := range cycle.Reserves {
		prices[res.CoinType] = res.Price
	}

	provider := routing.NewStubProvider()
	targetPrice := prices[target]
	if targetPrice <= 0 {
		return provider
	}
	for coinType, price := range prices {
		if price > 0 {
			provider.Ratios[coinType] = price / targetPrice
		}
	}
	return provider
}

// localSubmitter finalizes a plan without a chain connection, deriving a
// deterministic digest from the plan ID. Used for fixture runs; a live
// signer would replace it.
type localSubmitter struct{}

func (localSubmitter) Submit(_ context.Context, plan *domain.ClaimPlan) (string, error) {
	sum := sha256.Sum256([]byte("submitted|" + plan.ID))
	return hex.EncodeToString(sum[:]), nil
}

func printPlan(plan *domain.ClaimPlan) {
	fmt.Printf("Plan %s (%s)\n", plan.ID[:8], plan.Mode)
	if plan.TargetCoinType != "" {
		fmt.Printf("Target: %s\n", plan.TargetCoinType)
	}
	fmt.Printf("Assets: %d/%d consolidated, created %s\n",
		plan.AssetsConsolidated, plan.AssetsRequested,
		time.UnixMilli(plan.CreatedAtMs).UTC().Format(time.RFC3339))

	fmt.Println("\nCommands:")
	for i, cmd := range plan.Commands {
		switch cmd.Kind {
		case domain.CommandClaim, domain.CommandClaimAndDeposit, domain.CommandClaimAndSend:
			fmt.Printf("  %2d. %-17s obligation=%s claims=%d\n", i+1, cmd.Kind, cmd.ObligationID, len(cmd.Claims))
		case domain.CommandSwap:
			fmt.Printf("  %2d. %-17s %s -> %s (slippage %.1f%%)\n", i+1, cmd.Kind, cmd.Route.FromCoinType, cmd.Route.ToCoinType, cmd.SlippagePct)
		default:
			fmt.Printf("  %2d. %-17s %s\n", i+1, cmd.Kind, cmd.CoinType)
		}
	}

	if len(plan.Skipped) > 0 {
		fmt.Println("\nSkipped assets:")
		for _, s := range plan.Skipped {
			fmt.Printf("  - %s: %s\n", s.CoinType, s.Reason)
		}
	}
}
