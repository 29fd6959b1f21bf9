package rewards

import "lendlab/internal/domain"

// YearMs is the annualization constant for reward stream contributions.
const YearMs = 365.0 * 24 * 60 * 60 * 1000

// APRPercent computes the annualized percentage yield the reward streams
// contributed to one side of a reserve at a historical sample point.
//
// The most recent snapshot at or before the sample timestamp decides which
// reward asset (and price) applies. Streams are then filtered to those
// emitting that asset whose [start, end) window contains the sample time.
// Each matching stream contributes
//
//	totalRewards × price × (yearMs / duration) / sideValueUSD
//
// and the summed contribution is reported in percent, negated for the
// borrow side since borrow-side rewards reduce effective borrowing cost.
// All guards degrade to zero: no snapshot, no active stream, zero side
// value or zero duration never raise an error.
func APRPercent(
	side domain.Side,
	sample domain.PositionSample,
	snapshots []*domain.RewardSnapshot,
	streams []domain.PoolReward,
) float64 {
	snapshot := latestSnapshotAt(snapshots, sample.TimestampMs)
	if snapshot == nil {
		return 0
	}

	sideValue := sample.DepositedAmountUSD
	if side == domain.SideBorrow {
		sideValue = sample.BorrowedAmountUSD
	}

	total := 0.0
	matched := false
	for _, stream := range streams {
		if stream.CoinType != snapshot.RewardCoinType {
			continue
		}
		if !stream.IsActiveAt(sample.TimestampMs) {
			continue
		}
		matched = true

		duration := stream.EndTimeMs - stream.StartTimeMs
		if duration <= 0 || sideValue == 0 {
			continue
		}
		total += stream.TotalRewards * snapshot.Price * (YearMs / float64(duration)) / sideValue
	}
	if !matched {
		return 0
	}

	percent := total * 100
	if side == domain.SideBorrow {
		percent = -percent
	}
	return percent
}

// latestSnapshotAt returns the most recent snapshot at or before ts, or
// nil when none exists. Snapshots need not be sorted.
func latestSnapshotAt(snapshots []*domain.RewardSnapshot, ts int64) *domain.RewardSnapshot {
	var best *domain.RewardSnapshot
	for _, s := range snapshots {
		if s.TimestampMs > ts {
			continue
		}
		if best == nil || s.TimestampMs > best.TimestampMs {
			best = s
		}
	}
	return best
}
