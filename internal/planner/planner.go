// Package planner assembles consolidation-claim plans: ordered, atomic
// units of work that claim accrued rewards across obligations, optionally
// consolidate them into one target asset via the routing provider, and
// finish with a deposit or transfer. A plan either builds completely or
// is discarded; nothing partial escapes this package.
package planner

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"lendlab/internal/domain"
	"lendlab/internal/idhash"
	"lendlab/internal/routing"
)

// SlippagePct is the fixed tolerance applied to consolidation swaps.
const SlippagePct = 3.0

// state tracks plan assembly progress. FAILED is reachable from any step;
// reaching it discards the whole in-progress plan.
type state int

const (
	stateCollecting state = iota
	stateExtracting
	stateRouting
	stateSwapping
	stateMerging
	stateFinalizing
	stateDone
	stateFailed
)

func (s state) String() string {
	switch s {
	case stateCollecting:
		return "COLLECTING_STREAMS"
	case stateExtracting:
		return "EXTRACTING"
	case stateRouting:
		return "ROUTING"
	case stateSwapping:
		return "SWAPPING"
	case stateMerging:
		return "MERGING"
	case stateFinalizing:
		return "FINALIZING"
	case stateDone:
		return "DONE"
	case stateFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// Config selects what a plan does with the claimed rewards.
type Config struct {
	// Owner is the wallet address receiving coins or collateral.
	Owner string
	// Mode selects raw payout, redeposit, or single-asset consolidation.
	Mode domain.ClaimMode
	// TargetCoinType is the consolidation asset; required for swapping
	// modes, ignored otherwise.
	TargetCoinType string
	// ObligationIDs is the caller's refreshed obligation set. Claims
	// referencing anything outside it fail the precondition check.
	ObligationIDs []string
}

// Planner builds claim plans against a quote provider.
type Planner struct {
	provider routing.QuoteProvider
	verbose  bool
	now      func() int64
}

// Options for creating a Planner.
type Options struct {
	// Provider is required for swapping modes.
	Provider routing.QuoteProvider
	Verbose  bool
	// Now overrides the clock, for tests.
	Now func() int64
}

// New creates a Planner.
func New(opts Options) *Planner {
	now := opts.Now
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}
	return &Planner{
		provider: opts.Provider,
		verbose:  opts.Verbose,
		now:      now,
	}
}

// Build assembles a claim plan from a reward ledger snapshot. The
// snapshot is read-only for the duration of planning; accrual that
// happens meanwhile simply lands in the next refresh's reward map.
//
// Per-asset routing and swap failures degrade the plan (the asset is
// skipped and reported); only an empty consolidation result is fatal.
func (p *Planner) Build(ctx context.Context, cfg Config, rewardMap map[string]*domain.ClaimableReward) (*domain.ClaimPlan, error) {
	if cfg.Owner == "" {
		return nil, ErrWalletNotConnected
	}
	if !cfg.Mode.IsValid() {
		return nil, fmt.Errorf("invalid claim mode %q", cfg.Mode)
	}
	if cfg.Mode.IsSwapping() && cfg.TargetCoinType == "" {
		return nil, fmt.Errorf("mode %s requires a target coin type", cfg.Mode)
	}
	if len(rewardMap) == 0 {
		return nil, ErrNothingToClaim
	}

	known := make(map[string]bool, len(cfg.ObligationIDs))
	for _, id := range cfg.ObligationIDs {
		known[id] = true
	}
	for _, entry := range rewardMap {
		for _, claim := range entry.Claims {
			if !known[claim.ObligationID] {
				return nil, fmt.Errorf("claim references %s: %w", claim.ObligationID, ErrObligationNotFound)
			}
		}
	}

	plan := &domain.ClaimPlan{
		OwnerID:         cfg.Owner,
		Mode:            cfg.Mode,
		AssetsRequested: len(rewardMap),
		CreatedAtMs:     p.now(),
	}
	if cfg.Mode.IsSwapping() {
		plan.TargetCoinType = cfg.TargetCoinType
	}

	coinTypes := sortedCoinTypes(rewardMap)
	plan.ID = idhash.ComputePlanID(cfg.Owner, cfg.Mode.String(), plan.TargetCoinType, coinTypes, plan.CreatedAtMs)

	p.log("%s: building plan %s, mode=%s, %d assets", stateCollecting, plan.ID[:8], cfg.Mode, len(rewardMap))

	claimsByObligation := groupByObligation(rewardMap, coinTypes)

	if !cfg.Mode.IsSwapping() {
		return p.buildDirect(plan, claimsByObligation)
	}
	return p.buildConsolidation(ctx, cfg, plan, rewardMap, coinTypes, claimsByObligation)
}

// obligationClaims is one obligation's extraction call list, split per
// reward asset so each claim command yields one coin.
type obligationClaims struct {
	obligationID string
	byAsset      map[string][]domain.RewardClaim
	assetOrder   []string
}

// groupByObligation partitions the reward map's claims per obligation,
// preserving deterministic asset order.
func groupByObligation(rewardMap map[string]*domain.ClaimableReward, coinTypes []string) []obligationClaims {
	index := make(map[string]*obligationClaims)
	var order []string

	for _, coinType := range coinTypes {
		for _, claim := range rewardMap[coinType].Claims {
			grouped, ok := index[claim.ObligationID]
			if !ok {
				grouped = &obligationClaims{
					obligationID: claim.ObligationID,
					byAsset:      make(map[string][]domain.RewardClaim),
				}
				index[claim.ObligationID] = grouped
				order = append(order, claim.ObligationID)
			}
			if _, seen := grouped.byAsset[coinType]; !seen {
				grouped.assetOrder = append(grouped.assetOrder, coinType)
			}
			grouped.byAsset[coinType] = append(grouped.byAsset[coinType], claim)
		}
	}

	sort.Strings(order)
	result := make([]obligationClaims, 0, len(order))
	for _, id := range order {
		result = append(result, *index[id])
	}
	return result
}

// buildDirect emits one claim-and-deposit or claim-and-send call per
// obligation; no loose coins, no routing.
func (p *Planner) buildDirect(plan *domain.ClaimPlan, grouped []obligationClaims) (*domain.ClaimPlan, error) {
	kind := domain.CommandClaimAndSend
	if plan.Mode.IsDepositing() {
		kind = domain.CommandClaimAndDeposit
	}

	for _, g := range grouped {
		var claims []domain.RewardClaim
		for _, asset := range g.assetOrder {
			claims = append(claims, g.byAsset[asset]...)
		}
		cmd := domain.Command{
			Kind:         kind,
			ObligationID: g.obligationID,
			Claims:       claims,
		}
		if kind == domain.CommandClaimAndSend {
			cmd.Recipient = plan.OwnerID
		}
		plan.Commands = append(plan.Commands, cmd)
	}

	plan.AssetsConsolidated = plan.AssetsRequested
	p.log("%s: %d direct claim calls", stateDone, len(plan.Commands))
	return plan, nil
}

// buildConsolidation runs the full extraction → routing → swapping →
// merging → finalizing pipeline.
func (p *Planner) buildConsolidation(
	ctx context.Context,
	cfg Config,
	plan *domain.ClaimPlan,
	rewardMap map[string]*domain.ClaimableReward,
	coinTypes []string,
	grouped []obligationClaims,
) (*domain.ClaimPlan, error) {
	// EXTRACTING: one claim command per (obligation, asset); the claimed
	// coins fold into one in-plan coin per asset.
	p.log("%s: extracting %d assets across %d obligations", stateExtracting, len(coinTypes), len(grouped))
	mergedCoins := make(map[string]*domain.Coin, len(coinTypes))
	for _, g := range grouped {
		for _, asset := range g.assetOrder {
			plan.Commands = append(plan.Commands, domain.Command{
				Kind:         domain.CommandClaim,
				ObligationID: g.obligationID,
				CoinType:     asset,
				Claims:       g.byAsset[asset],
			})
		}
	}
	for _, coinType := range coinTypes {
		mergedCoins[coinType] = domain.NewCoin(coinType, rewardMap[coinType].RawAmount)
	}

	// Partition: the target asset needs no route.
	var needsSwap []string
	var targetCoins []*domain.Coin
	consolidated := 0
	for _, coinType := range coinTypes {
		if coinType == cfg.TargetCoinType {
			targetCoins = append(targetCoins, mergedCoins[coinType])
			consolidated++
			continue
		}
		needsSwap = append(needsSwap, coinType)
	}

	// ROUTING: parallel fan-out with per-asset failure isolation. The
	// raw underestimate is the input amount, so the route stays valid
	// while accrual continues.
	var quotes map[string]routing.QuoteResult
	if len(needsSwap) > 0 {
		if p.provider == nil {
			return nil, fmt.Errorf("mode %s requires a quote provider", cfg.Mode)
		}
		requests := make([]routing.QuoteRequest, 0, len(needsSwap))
		for _, coinType := range needsSwap {
			requests = append(requests, routing.QuoteRequest{
				CoinType:  coinType,
				RawAmount: mergedCoins[coinType].RawAmount,
			})
		}
		p.log("%s: fetching %d quotes", stateRouting, len(requests))
		quotes = routing.FetchQuotes(ctx, p.provider, requests, cfg.TargetCoinType)
	}

	// SWAPPING: execute each obtained route; failures skip the asset.
	for _, coinType := range needsSwap {
		quote := quotes[coinType]
		if quote.Err != nil {
			p.log("%s: skipping %s: %v", stateSwapping, coinType, quote.Err)
			plan.Skipped = append(plan.Skipped, domain.SkippedAsset{CoinType: coinType, Reason: quote.Err.Error()})
			continue
		}

		output, err := p.provider.ExecuteRoute(ctx, quote.Route, mergedCoins[coinType], SlippagePct)
		if err != nil {
			p.log("%s: skipping %s: %v", stateSwapping, coinType, err)
			plan.Skipped = append(plan.Skipped, domain.SkippedAsset{CoinType: coinType, Reason: err.Error()})
			continue
		}

		plan.Commands = append(plan.Commands, domain.Command{
			Kind:        domain.CommandSwap,
			CoinType:    coinType,
			Route:       quote.Route,
			SlippagePct: SlippagePct,
		})
		targetCoins = append(targetCoins, output)
		consolidated++
	}

	// MERGING: associative fold of all target-asset coins; order of the
	// inputs does not affect the sum.
	result := domain.NewCoin(cfg.TargetCoinType, nil)
	for _, coin := range targetCoins {
		result.Merge(coin)
	}
	if len(targetCoins) > 1 {
		plan.Commands = append(plan.Commands, domain.Command{
			Kind:     domain.CommandMergeCoins,
			CoinType: cfg.TargetCoinType,
		})
	}

	// FINALIZING: fatal when nothing survived the skips.
	if result.IsZero() {
		p.log("%s: all %d assets skipped", stateFailed, plan.AssetsRequested)
		return nil, ErrNoConsolidationResult
	}

	final := domain.Command{Kind: domain.CommandDeposit, CoinType: cfg.TargetCoinType}
	if !plan.Mode.IsDepositing() {
		final = domain.Command{Kind: domain.CommandTransfer, CoinType: cfg.TargetCoinType, Recipient: cfg.Owner}
	}
	plan.Commands = append(plan.Commands, final)
	plan.AssetsConsolidated = consolidated

	p.log("%s: consolidated %d/%d assets into %s", stateDone, consolidated, plan.AssetsRequested, cfg.TargetCoinType)
	return plan, nil
}

// sortedCoinTypes returns the reward map's keys in deterministic order.
func sortedCoinTypes(rewardMap map[string]*domain.ClaimableReward) []string {
	coinTypes := make([]string, 0, len(rewardMap))
	for coinType := range rewardMap {
		coinTypes = append(coinTypes, coinType)
	}
	sort.Strings(coinTypes)
	return coinTypes
}

func (p *Planner) log(format string, args ...interface{}) {
	if p.verbose {
		log.Printf("[planner] "+format, args...)
	}
}
