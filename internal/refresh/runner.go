// Package refresh drives the periodic client-side accounting cycle: pull
// fresh market and position state from the ledger, rebuild the reward
// map, classify risk, and persist time-series samples for later analysis.
package refresh

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"lendlab/internal/domain"
	"lendlab/internal/ledger"
	"lendlab/internal/observability"
	"lendlab/internal/rewards"
	"lendlab/internal/risk"
	"lendlab/internal/storage"
)

// DefaultInterval is the refresh cadence when none is configured.
const DefaultInterval = 30 * time.Second

// Runner executes refresh cycles for one owner.
type Runner struct {
	reader    ledger.Reader
	owner     string
	samples   storage.PositionSampleStore
	snapshots storage.RewardSnapshotStore
	interval  time.Duration
	verbose   bool
	now       func() int64

	mu     sync.Mutex
	latest *CycleResult
}

// Options for creating a Runner.
type Options struct {
	// Reader is required.
	Reader ledger.Reader
	// Owner is the wallet address whose obligations are refreshed.
	Owner string

	// Samples and Snapshots are optional; a nil store skips persistence.
	Samples   storage.PositionSampleStore
	Snapshots storage.RewardSnapshotStore

	Interval time.Duration
	Verbose  bool
	// Now overrides the clock for tests.
	Now func() int64
}

// New creates a Runner.
func New(opts Options) *Runner {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	now := opts.Now
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}
	return &Runner{
		reader:    opts.Reader,
		owner:     opts.Owner,
		samples:   opts.Samples,
		snapshots: opts.Snapshots,
		interval:  interval,
		verbose:   opts.Verbose,
		now:       now,
	}
}

// CycleResult is the outcome of one refresh cycle.
type CycleResult struct {
	TimestampMs int64

	Reserves    []*domain.Reserve
	Obligations []*domain.Obligation

	// RewardMap groups claimable rewards by asset across all obligations.
	RewardMap map[string]*domain.ClaimableReward
	// SkippedStreams lists streams dropped from the reward map and why.
	SkippedStreams []rewards.SkippedStream

	// RiskStates classifies every obligation as of this cycle.
	RiskStates map[string]risk.State
}

// RunOnce executes a single refresh cycle.
func (r *Runner) RunOnce(ctx context.Context) (*CycleResult, error) {
	started := time.Now()
	result, err := r.runCycle(ctx)
	if err != nil {
		observability.RecordRefreshRun("error", time.Since(started).Seconds())
		return nil, err
	}

	observability.RecordRefreshRun("ok", time.Since(started).Seconds())
	observability.DefaultMetrics.ObligationsRefreshed.Set(float64(len(result.Obligations)))
	observability.DefaultMetrics.LastSuccessfulRefresh.SetToCurrentTime()

	stateCounts := make(map[string]int)
	for _, state := range result.RiskStates {
		stateCounts[state.String()]++
	}
	observability.UpdateRiskStates(stateCounts)

	r.mu.Lock()
	r.latest = result
	r.mu.Unlock()

	return result, nil
}

// Latest returns the most recent successful cycle result, or nil before
// the first cycle completes. Price ticks received between cycles mutate
// the result's reserve prices in place.
func (r *Runner) Latest() *CycleResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

// applyPriceUpdate folds one live tick into the latest cycle's reserves.
// Reports whether a listed reserve matched the tick's asset; a full cycle
// supersedes every tick applied before it.
func (r *Runner) applyPriceUpdate(update ledger.PriceUpdate) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latest == nil {
		return false
	}
	for _, res := range r.latest.Reserves {
		if res.CoinType == update.CoinType {
			res.Price = update.Price
			return true
		}
	}
	return false
}

func (r *Runner) runCycle(ctx context.Context) (*CycleResult, error) {
	nowMs := r.now()

	reserves, err := r.reader.Reserves(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch reserves: %w", err)
	}

	obligations, err := r.reader.ObligationsByOwner(ctx, r.owner)
	if err != nil {
		return nil, fmt.Errorf("fetch obligations: %w", err)
	}

	var accruals []*domain.UserRewardAccrual
	for _, o := range obligations {
		perObligation, err := r.reader.RewardAccruals(ctx, o.ID)
		if err != nil {
			return nil, fmt.Errorf("fetch accruals for %s: %w", o.ID, err)
		}
		accruals = append(accruals, perObligation...)
	}

	metadata, err := r.reader.CoinMetadata(ctx, rewardCoinTypes(reserves))
	if err != nil {
		return nil, fmt.Errorf("fetch coin metadata: %w", err)
	}

	rewardMap, skipped := rewards.BuildRewardMap(obligations, reserves, accruals, metadata)

	states := make(map[string]risk.State, len(obligations))
	for _, o := range obligations {
		states[o.ID] = risk.Classify(o)
	}

	result := &CycleResult{
		TimestampMs:    nowMs,
		Reserves:       reserves,
		Obligations:    obligations,
		RewardMap:      rewardMap,
		SkippedStreams: skipped,
		RiskStates:     states,
	}

	r.persist(ctx, result)

	r.log("cycle at %d: %d reserves, %d obligations, %d claimable assets, %d skipped streams",
		nowMs, len(reserves), len(obligations), len(rewardMap), len(skipped))

	return result, nil
}

// persist writes samples and snapshots to the configured stores. Storage
// failures are logged, not propagated: the in-memory cycle result is
// already complete and the next cycle will write fresh rows anyway.
func (r *Runner) persist(ctx context.Context, result *CycleResult) {
	if r.samples != nil {
		samples := make([]*domain.PositionSample, 0, len(result.Obligations))
		for _, o := range result.Obligations {
			samples = append(samples, &domain.PositionSample{
				ObligationID:       o.ID,
				TimestampMs:        result.TimestampMs,
				DepositedAmountUSD: o.DepositedAmountUSD,
				BorrowedAmountUSD:  o.BorrowedAmountUSD,
				WeightedBorrowsUSD: risk.WeightedBorrowsUSD(o),
			})
		}
		if err := r.samples.InsertBulk(ctx, samples); err != nil {
			log.Printf("[refresh] store position samples: %v", err)
		}
	}

	if r.snapshots != nil {
		snapshots := buildSnapshots(result.Reserves, result.TimestampMs)
		if err := r.snapshots.InsertBulk(ctx, snapshots); err != nil {
			log.Printf("[refresh] store reward snapshots: %v", err)
		}
	}
}

// buildSnapshots records one row per currently active reward stream, with
// the reward asset priced off its own reserve when the market lists one.
func buildSnapshots(reserves []*domain.Reserve, nowMs int64) []*domain.RewardSnapshot {
	prices := make(map[string]float64, len(reserves))
	for _, res := range reserves {
		prices[res.CoinType] = res.Price
	}

	var snapshots []*domain.RewardSnapshot
	active := 0
	for _, res := range reserves {
		for _, side := range []domain.Side{domain.SideDeposit, domain.SideBorrow} {
			for _, stream := range res.PoolRewards(side) {
				if !stream.IsActiveAt(nowMs) {
					continue
				}
				active++
				snapshots = append(snapshots, &domain.RewardSnapshot{
					ReserveCoinType: res.CoinType,
					Side:            side,
					TimestampMs:     nowMs,
					RewardCoinType:  stream.CoinType,
					Price:           prices[stream.CoinType],
				})
			}
		}
	}
	observability.DefaultMetrics.RewardStreamsActive.Set(float64(active))
	return snapshots
}

// rewardCoinTypes collects the distinct reward assets across all streams.
func rewardCoinTypes(reserves []*domain.Reserve) []string {
	seen := make(map[string]struct{})
	var coinTypes []string
	for _, res := range reserves {
		for _, side := range []domain.Side{domain.SideDeposit, domain.SideBorrow} {
			for _, stream := range res.PoolRewards(side) {
				if _, ok := seen[stream.CoinType]; ok {
					continue
				}
				seen[stream.CoinType] = struct{}{}
				coinTypes = append(coinTypes, stream.CoinType)
			}
		}
	}
	return coinTypes
}

// Run executes refresh cycles on the configured interval until the
// context is cancelled. Ticks from the optional price feed channel are
// folded into the latest cycle's reserve prices, visible through Latest
// until the next full cycle replaces them. Cycle errors are logged and
// the loop continues; only context cancellation stops it.
func (r *Runner) Run(ctx context.Context, prices <-chan ledger.PriceUpdate) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	if _, err := r.RunOnce(ctx); err != nil {
		log.Printf("[refresh] initial cycle: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				log.Printf("[refresh] cycle: %v", err)
			}
		case update, ok := <-prices:
			if !ok {
				prices = nil
				continue
			}
			observability.DefaultMetrics.PriceUpdates.Inc()
			if r.applyPriceUpdate(update) {
				r.log("price update: %s = %f", update.CoinType, update.Price)
			} else {
				r.log("price update for unlisted asset %s dropped", update.CoinType)
			}
		}
	}
}

func (r *Runner) log(format string, args ...interface{}) {
	if r.verbose {
		log.Printf("[refresh] "+format, args...)
	}
}
