package risk

import (
	"math"
	"testing"

	"lendlab/internal/domain"
)

const widthEpsilon = 1e-9

func sumWidths(segments []Segment) float64 {
	total := 0.0
	for _, s := range segments {
		total += s.WidthPct
	}
	return total
}

func TestUtilizationSegments_EmptyPosition(t *testing.T) {
	o := &domain.Obligation{}

	segments := UtilizationSegments(o)

	if len(segments) != 1 {
		t.Fatalf("expected 1 neutral segment, got %d", len(segments))
	}
	if segments[0].Kind != SegmentEmpty {
		t.Errorf("expected EMPTY segment, got %s", segments[0].Kind)
	}
	if segments[0].WidthPct != 100 {
		t.Errorf("expected 100%% width, got %f", segments[0].WidthPct)
	}
}

func TestUtilizationSegments_Safe(t *testing.T) {
	// deposits=1000 weighted=400 limit=500 threshold=700
	// → bands 400 / 100 / 200 / 300 of deposits
	o := &domain.Obligation{
		DepositedAmountUSD:         1000,
		WeightedBorrowsUSD:         400,
		MaxPriceWeightedBorrowsUSD: 400,
		MinPriceBorrowLimitUSD:     500,
		UnhealthyBorrowValueUSD:    700,
	}

	segments := UtilizationSegments(o)

	if len(segments) != 4 {
		t.Fatalf("expected 4 segments, got %d", len(segments))
	}

	want := []struct {
		kind  SegmentKind
		width float64
	}{
		{SegmentBorrowed, 40},
		{SegmentToLimit, 10},
		{SegmentToThreshold, 20},
		{SegmentRemaining, 30},
	}
	for i, w := range want {
		if segments[i].Kind != w.kind {
			t.Errorf("segment %d: expected kind %s, got %s", i, w.kind, segments[i].Kind)
		}
		if math.Abs(segments[i].WidthPct-w.width) > widthEpsilon {
			t.Errorf("segment %d: expected width %f, got %f", i, w.width, segments[i].WidthPct)
		}
	}
}

func TestUtilizationSegments_AtLimit(t *testing.T) {
	// weighted=650 past limit=500: limit boundary collapses, threshold stays
	o := &domain.Obligation{
		DepositedAmountUSD:         1000,
		WeightedBorrowsUSD:         650,
		MaxPriceWeightedBorrowsUSD: 650,
		MinPriceBorrowLimitUSD:     500,
		UnhealthyBorrowValueUSD:    700,
	}

	segments := UtilizationSegments(o)

	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	if segments[0].Kind != SegmentBorrowed || math.Abs(segments[0].WidthPct-65) > widthEpsilon {
		t.Errorf("unexpected first segment: %+v", segments[0])
	}
	if segments[1].Kind != SegmentToThreshold || math.Abs(segments[1].WidthPct-5) > widthEpsilon {
		t.Errorf("unexpected second segment: %+v", segments[1])
	}
	if segments[2].Kind != SegmentRemaining || math.Abs(segments[2].WidthPct-30) > widthEpsilon {
		t.Errorf("unexpected third segment: %+v", segments[2])
	}
}

func TestUtilizationSegments_Liquidatable(t *testing.T) {
	o := &domain.Obligation{
		DepositedAmountUSD:         1000,
		WeightedBorrowsUSD:         750,
		MaxPriceWeightedBorrowsUSD: 750,
		MinPriceBorrowLimitUSD:     500,
		UnhealthyBorrowValueUSD:    700,
	}

	segments := UtilizationSegments(o)

	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Kind != SegmentBorrowed || math.Abs(segments[0].WidthPct-75) > widthEpsilon {
		t.Errorf("unexpected first segment: %+v", segments[0])
	}
	if segments[1].Kind != SegmentRemaining || math.Abs(segments[1].WidthPct-25) > widthEpsilon {
		t.Errorf("unexpected second segment: %+v", segments[1])
	}
}

func TestUtilizationSegments_BoundariesClampedToDeposits(t *testing.T) {
	// Threshold above deposits: clamp into [0, D], widths still sum to 100
	o := &domain.Obligation{
		DepositedAmountUSD:         1000,
		WeightedBorrowsUSD:         400,
		MaxPriceWeightedBorrowsUSD: 400,
		MinPriceBorrowLimitUSD:     900,
		UnhealthyBorrowValueUSD:    1500,
	}

	segments := UtilizationSegments(o)

	if got := sumWidths(segments); math.Abs(got-100) > widthEpsilon {
		t.Errorf("widths must sum to 100, got %f", got)
	}
	for _, s := range segments {
		if s.WidthPct < 0 {
			t.Errorf("negative segment width: %+v", s)
		}
	}
}

func TestUtilizationSegments_WidthsAlwaysSumTo100(t *testing.T) {
	cases := []struct {
		name                string
		deposited, weighted float64
		limit, threshold    float64
	}{
		{"safe", 1000, 400, 500, 700},
		{"at limit", 1000, 650, 500, 700},
		{"liquidatable", 1000, 750, 500, 700},
		{"weighted above deposits", 1000, 1500, 500, 700},
		{"zero borrows", 1000, 0, 500, 700},
		{"tiny deposits", 0.01, 0.004, 0.005, 0.007},
	}

	for _, tc := range cases {
		o := &domain.Obligation{
			DepositedAmountUSD:         tc.deposited,
			WeightedBorrowsUSD:         tc.weighted,
			MaxPriceWeightedBorrowsUSD: tc.weighted,
			MinPriceBorrowLimitUSD:     tc.limit,
			UnhealthyBorrowValueUSD:    tc.threshold,
		}

		segments := UtilizationSegments(o)
		if got := sumWidths(segments); math.Abs(got-100) > 1e-6 {
			t.Errorf("%s: widths sum to %f, want 100", tc.name, got)
		}

		// Idempotence: identical input gives identical output
		again := UtilizationSegments(o)
		if len(again) != len(segments) {
			t.Errorf("%s: not idempotent, lengths %d vs %d", tc.name, len(segments), len(again))
			continue
		}
		for i := range segments {
			if segments[i] != again[i] {
				t.Errorf("%s: not idempotent at segment %d: %+v vs %+v", tc.name, i, segments[i], again[i])
			}
		}
	}
}
