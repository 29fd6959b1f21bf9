package reporting

import "time"

// Report summarizes one owner's positions, rewards and claim history as of
// a refresh cycle.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Owner       string
	AsOfMs      int64

	// Positions (sorted by obligation ID)
	Positions []PositionRow

	// Claimable rewards (sorted by coin type)
	Rewards        []RewardRow
	SkippedStreams []SkippedStreamRow

	// Reward yield estimates (sorted by obligation, reserve, side)
	Yields []YieldRow

	// Claim history (sorted by submission time)
	ClaimHistory []ClaimHistoryRow
}

// PositionRow is one obligation's risk overview.
type PositionRow struct {
	ObligationID       string
	DepositedAmountUSD float64
	BorrowedAmountUSD  float64
	WeightedBorrowsUSD float64 // display-ratcheted
	RiskState          string
	Segments           []SegmentRow
}

// SegmentRow is one band of the utilization bar.
type SegmentRow struct {
	Kind     string
	WidthPct float64
}

// RewardRow is one claimable reward asset aggregated across obligations.
type RewardRow struct {
	CoinType  string
	Symbol    string
	Amount    float64
	RawAmount string // decimal string of the protocol-scaled amount
	Claims    int
}

// SkippedStreamRow records one reward stream excluded from the ledger.
type SkippedStreamRow struct {
	CoinType string
	Reason   string
}

// YieldRow is an annualized reward yield estimate for one side of a
// reserve, relative to one obligation's position.
type YieldRow struct {
	ObligationID    string
	ReserveCoinType string
	ReserveSymbol   string
	Side            string
	APRPercent      float64
}

// ClaimHistoryRow is one persisted claim plan outcome.
type ClaimHistoryRow struct {
	PlanID             string
	Mode               string
	TargetCoinType     string // empty for direct modes
	AssetsRequested    int
	AssetsConsolidated int
	Status             string
	Digest             string // empty when unconfirmed
	SubmittedAtMs      int64
}
