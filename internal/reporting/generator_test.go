package reporting

import (
	"context"
	"math/big"
	"strings"
	"testing"
	"time"

	"lendlab/internal/domain"
	"lendlab/internal/refresh"
	"lendlab/internal/risk"
	"lendlab/internal/storage/memory"
)

const (
	owner = "11111111111111111111111111111111"
	sui   = "0x2::sui::SUI"
	usdc  = "0xa::usdc"
)

func fixtureCycle() *refresh.CycleResult {
	reserve := &domain.Reserve{
		CoinType:     usdc,
		Symbol:       "USDC",
		MintDecimals: 6,
		Price:        1.0,
		ArrayIndex:   1,
		DepositRewards: []domain.PoolReward{
			{
				RewardIndex:  0,
				CoinType:     sui,
				StartTimeMs:  0,
				EndTimeMs:    int64(rewardsYearMs),
				TotalRewards: 100,
			},
		},
		// The obligation below holds no borrow here, so this stream must
		// never produce a yield row.
		BorrowRewards: []domain.PoolReward{
			{
				RewardIndex:  1,
				CoinType:     sui,
				StartTimeMs:  0,
				EndTimeMs:    int64(rewardsYearMs),
				TotalRewards: 50,
			},
		},
	}

	obligation := &domain.Obligation{
		ID:      "ob-1",
		OwnerID: owner,
		Deposits: []domain.Deposit{
			{CoinType: usdc, DepositedAmount: 1000, DepositedAmountUSD: 1000, Reserve: reserve},
		},
		DepositedAmountUSD:         1000,
		BorrowedAmountUSD:          400,
		WeightedBorrowsUSD:         450,
		MaxPriceWeightedBorrowsUSD: 450,
		MinPriceBorrowLimitUSD:     500,
		UnhealthyBorrowValueUSD:    700,
	}

	return &refresh.CycleResult{
		TimestampMs: 5000,
		Reserves:    []*domain.Reserve{reserve},
		Obligations: []*domain.Obligation{obligation},
		RewardMap: map[string]*domain.ClaimableReward{
			sui: {
				CoinType:  sui,
				Symbol:    "SUI",
				Amount:    0.002,
				RawAmount: big.NewInt(2_000_000),
				Claims: []domain.RewardClaim{
					{ObligationID: "ob-1", ReserveArrayIndex: 1, RewardIndex: 0, Side: domain.SideDeposit},
				},
			},
		},
		RiskStates: map[string]risk.State{"ob-1": risk.StateSafe},
	}
}

const rewardsYearMs = 365.0 * 24 * 60 * 60 * 1000

func TestGenerate_FullReport(t *testing.T) {
	snapshots := memory.NewRewardSnapshotStore()
	records := memory.NewClaimRecordStore()
	ctx := context.Background()

	err := snapshots.InsertBulk(ctx, []*domain.RewardSnapshot{
		{ReserveCoinType: usdc, Side: domain.SideDeposit, TimestampMs: 1000, RewardCoinType: sui, Price: 2.0},
	})
	if err != nil {
		t.Fatalf("seed snapshots: %v", err)
	}

	digest := "0xdigest"
	target := sui
	err = records.Insert(ctx, &domain.ClaimRecord{
		PlanID:             "abcdef1234567890",
		OwnerID:            owner,
		Mode:               domain.ClaimModeSwapDeposit.String(),
		TargetCoinType:     &target,
		AssetsRequested:    3,
		AssetsConsolidated: 2,
		Status:             domain.ClaimStatusConfirmed,
		Digest:             &digest,
		SubmittedAtMs:      4000,
	})
	if err != nil {
		t.Fatalf("seed records: %v", err)
	}

	gen := NewGenerator(snapshots, records).
		WithClock(func() time.Time { return time.UnixMilli(5000).UTC() })

	report, err := gen.Generate(ctx, owner, fixtureCycle())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(report.Positions) != 1 {
		t.Fatalf("expected 1 position row, got %d", len(report.Positions))
	}
	pos := report.Positions[0]
	if pos.RiskState != "SAFE" {
		t.Errorf("expected SAFE, got %s", pos.RiskState)
	}

	// Segment widths always cover the full bar.
	total := 0.0
	for _, seg := range pos.Segments {
		total += seg.WidthPct
	}
	if total < 99.99 || total > 100.01 {
		t.Errorf("segment widths sum to %f, want 100", total)
	}

	if len(report.Rewards) != 1 || report.Rewards[0].RawAmount != "2000000" {
		t.Errorf("unexpected reward rows: %+v", report.Rewards)
	}

	// 100 SUI x $2 over a year-long stream against $1000 deposited = 20%.
	// The borrow-side stream yields nothing: ob-1 has no borrow on usdc.
	if len(report.Yields) != 1 {
		t.Fatalf("expected 1 yield row, got %d", len(report.Yields))
	}
	if report.Yields[0].Side != domain.SideDeposit.String() {
		t.Errorf("expected a deposit-side yield row, got %s", report.Yields[0].Side)
	}
	if got := report.Yields[0].APRPercent; got < 19.99 || got > 20.01 {
		t.Errorf("expected APR 20, got %f", got)
	}

	if len(report.ClaimHistory) != 1 || report.ClaimHistory[0].AssetsConsolidated != 2 {
		t.Errorf("unexpected claim history: %+v", report.ClaimHistory)
	}
}

func TestGenerate_NilStoresSkipSections(t *testing.T) {
	gen := NewGenerator(nil, nil)

	report, err := gen.Generate(context.Background(), owner, fixtureCycle())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if report.Yields != nil {
		t.Errorf("expected no yield rows without a snapshot store")
	}
	if report.ClaimHistory != nil {
		t.Errorf("expected no history rows without a record store")
	}
}

func TestRenderMarkdown_ContainsSections(t *testing.T) {
	gen := NewGenerator(nil, nil).
		WithClock(func() time.Time { return time.UnixMilli(5000).UTC() })

	report, err := gen.Generate(context.Background(), owner, fixtureCycle())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(report)
	for _, want := range []string{
		"# Position Report",
		"## Positions",
		"## Claimable Rewards",
		"ob-1",
		"SAFE",
		"0x2::sui::SUI",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderCSV(t *testing.T) {
	csv := RenderCSV([]PositionRow{
		{ObligationID: "ob-1", DepositedAmountUSD: 1000, BorrowedAmountUSD: 400, WeightedBorrowsUSD: 450, RiskState: "SAFE"},
	})

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "ob-1,1000.000000,400.000000,450.000000,SAFE") {
		t.Errorf("unexpected row: %s", lines[1])
	}
}
