package reporting

import (
	"context"
	"errors"
	"sort"
	"time"

	"lendlab/internal/domain"
	"lendlab/internal/refresh"
	"lendlab/internal/rewards"
	"lendlab/internal/risk"
	"lendlab/internal/storage"
)

// Generator produces reports from a refresh cycle result and stored history.
type Generator struct {
	snapshots storage.RewardSnapshotStore // optional, enables yield rows
	records   storage.ClaimRecordStore    // optional, enables history rows
	now       func() time.Time            // injectable clock for deterministic output
}

// NewGenerator creates a report generator. Either store may be nil, which
// simply drops the corresponding report section.
func NewGenerator(snapshots storage.RewardSnapshotStore, records storage.ClaimRecordStore) *Generator {
	return &Generator{
		snapshots: snapshots,
		records:   records,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete report for one owner's cycle result.
func (g *Generator) Generate(ctx context.Context, owner string, cycle *refresh.CycleResult) (*Report, error) {
	report := &Report{
		GeneratedAt: g.now(),
		Owner:       owner,
		AsOfMs:      cycle.TimestampMs,
	}

	report.Positions = generatePositions(cycle)
	report.Rewards, report.SkippedStreams = generateRewards(cycle)

	yields, err := g.generateYields(ctx, cycle)
	if err != nil {
		return nil, err
	}
	report.Yields = yields

	history, err := g.generateHistory(ctx, owner)
	if err != nil {
		return nil, err
	}
	report.ClaimHistory = history

	return report, nil
}

func generatePositions(cycle *refresh.CycleResult) []PositionRow {
	rows := make([]PositionRow, 0, len(cycle.Obligations))
	for _, o := range cycle.Obligations {
		row := PositionRow{
			ObligationID:       o.ID,
			DepositedAmountUSD: o.DepositedAmountUSD,
			BorrowedAmountUSD:  o.BorrowedAmountUSD,
			WeightedBorrowsUSD: risk.WeightedBorrowsUSD(o),
			RiskState:          cycle.RiskStates[o.ID].String(),
		}
		for _, seg := range risk.UtilizationSegments(o) {
			row.Segments = append(row.Segments, SegmentRow{
				Kind:     string(seg.Kind),
				WidthPct: seg.WidthPct,
			})
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].ObligationID < rows[j].ObligationID })
	return rows
}

func generateRewards(cycle *refresh.CycleResult) ([]RewardRow, []SkippedStreamRow) {
	rows := make([]RewardRow, 0, len(cycle.RewardMap))
	for _, entry := range cycle.RewardMap {
		rows = append(rows, RewardRow{
			CoinType:  entry.CoinType,
			Symbol:    entry.Symbol,
			Amount:    entry.Amount,
			RawAmount: entry.RawAmount.String(),
			Claims:    len(entry.Claims),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CoinType < rows[j].CoinType })

	skipped := make([]SkippedStreamRow, 0, len(cycle.SkippedStreams))
	for _, s := range cycle.SkippedStreams {
		skipped = append(skipped, SkippedStreamRow{CoinType: s.CoinType, Reason: s.Reason.Error()})
	}
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].CoinType < skipped[j].CoinType })

	return rows, skipped
}

// generateYields estimates the reward APR every reserve side contributes to
// each obligation, using the obligation's current totals as the sample.
// Only sides the obligation actually holds earn the stream, so reserve
// sides without a matching deposit or borrow entry produce no row.
func (g *Generator) generateYields(ctx context.Context, cycle *refresh.CycleResult) ([]YieldRow, error) {
	if g.snapshots == nil {
		return nil, nil
	}

	var rows []YieldRow
	for _, o := range cycle.Obligations {
		sample := domain.PositionSample{
			ObligationID:       o.ID,
			TimestampMs:        cycle.TimestampMs,
			DepositedAmountUSD: o.DepositedAmountUSD,
			BorrowedAmountUSD:  o.BorrowedAmountUSD,
		}

		for _, res := range cycle.Reserves {
			for _, side := range []domain.Side{domain.SideDeposit, domain.SideBorrow} {
				streams := res.PoolRewards(side)
				if len(streams) == 0 {
					continue
				}
				if side == domain.SideDeposit && o.DepositForReserve(res.ArrayIndex) == nil {
					continue
				}
				if side == domain.SideBorrow && o.BorrowForReserve(res.ArrayIndex) == nil {
					continue
				}

				snapshots, err := g.snapshots.GetByReserveSide(ctx, res.CoinType, side, cycle.TimestampMs)
				if err != nil {
					return nil, err
				}

				rows = append(rows, YieldRow{
					ObligationID:    o.ID,
					ReserveCoinType: res.CoinType,
					ReserveSymbol:   res.Symbol,
					Side:            side.String(),
					APRPercent:      rewards.APRPercent(side, sample, snapshots, streams),
				})
			}
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ObligationID != rows[j].ObligationID {
			return rows[i].ObligationID < rows[j].ObligationID
		}
		if rows[i].ReserveCoinType != rows[j].ReserveCoinType {
			return rows[i].ReserveCoinType < rows[j].ReserveCoinType
		}
		return rows[i].Side < rows[j].Side
	})
	return rows, nil
}

func (g *Generator) generateHistory(ctx context.Context, owner string) ([]ClaimHistoryRow, error) {
	if g.records == nil {
		return nil, nil
	}

	records, err := g.records.GetByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	rows := make([]ClaimHistoryRow, 0, len(records))
	for _, r := range records {
		row := ClaimHistoryRow{
			PlanID:             r.PlanID,
			Mode:               r.Mode,
			AssetsRequested:    r.AssetsRequested,
			AssetsConsolidated: r.AssetsConsolidated,
			Status:             r.Status,
			SubmittedAtMs:      r.SubmittedAtMs,
		}
		if r.TargetCoinType != nil {
			row.TargetCoinType = *r.TargetCoinType
		}
		if r.Digest != nil {
			row.Digest = *r.Digest
		}
		rows = append(rows, row)
	}
	return rows, nil
}
