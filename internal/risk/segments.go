package risk

import "lendlab/internal/domain"

// SegmentKind labels one utilization band of the health bar.
type SegmentKind string

const (
	// SegmentBorrowed covers [0, weighted borrows].
	SegmentBorrowed SegmentKind = "BORROWED"
	// SegmentToLimit covers the gap up to the borrow limit.
	SegmentToLimit SegmentKind = "TO_LIMIT"
	// SegmentToThreshold covers the gap up to the liquidation threshold.
	SegmentToThreshold SegmentKind = "TO_THRESHOLD"
	// SegmentRemaining covers the rest of the deposited value.
	SegmentRemaining SegmentKind = "REMAINING"
	// SegmentEmpty is the single neutral band of an empty position.
	SegmentEmpty SegmentKind = "EMPTY"
)

// Segment is one contiguous percentage-of-deposits band. Widths of all
// segments returned for an obligation sum to 100.
type Segment struct {
	Kind     SegmentKind
	WidthPct float64
}

// UtilizationSegments partitions the deposited value into contiguous,
// non-overlapping percentage bands bounded by the weighted borrows, the
// borrow limit and the liquidation threshold, depending on which
// thresholds the position has crossed. Pure and idempotent for identical
// inputs.
func UtilizationSegments(o *domain.Obligation) []Segment {
	d := o.DepositedAmountUSD
	if d <= 0 {
		return []Segment{{Kind: SegmentEmpty, WidthPct: 100}}
	}

	wb := clamp(WeightedBorrowsUSD(o), 0, d)
	limit := clamp(o.MinPriceBorrowLimitUSD, wb, d)
	threshold := clamp(o.UnhealthyBorrowValueUSD, wb, d)
	if threshold < limit {
		threshold = limit
	}

	crossedLimit := HasCrossedBorrowLimit(o)
	crossedThreshold := HasCrossedLiquidationThreshold(o)

	var bounds []float64
	var kinds []SegmentKind
	switch {
	case crossedThreshold:
		bounds = []float64{0, wb, d}
		kinds = []SegmentKind{SegmentBorrowed, SegmentRemaining}
	case crossedLimit:
		bounds = []float64{0, wb, threshold, d}
		kinds = []SegmentKind{SegmentBorrowed, SegmentToThreshold, SegmentRemaining}
	default:
		bounds = []float64{0, wb, limit, threshold, d}
		kinds = []SegmentKind{SegmentBorrowed, SegmentToLimit, SegmentToThreshold, SegmentRemaining}
	}

	segments := make([]Segment, 0, len(kinds))
	for i, kind := range kinds {
		width := (bounds[i+1] - bounds[i]) / d * 100
		segments = append(segments, Segment{Kind: kind, WidthPct: width})
	}
	return segments
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
