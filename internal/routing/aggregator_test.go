package routing

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"lendlab/internal/domain"
)

func TestFetchQuotes_AllSucceed(t *testing.T) {
	provider := NewStubProvider()
	provider.Ratios["0xa::usdc"] = 1.0
	provider.Ratios["0xb::weth"] = 2.5

	requests := []QuoteRequest{
		{CoinType: "0xa::usdc", RawAmount: big.NewInt(1000)},
		{CoinType: "0xb::weth", RawAmount: big.NewInt(100)},
	}

	results := FetchQuotes(context.Background(), provider, requests, "0x2::sui::SUI")

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for coinType, res := range results {
		if res.Err != nil {
			t.Errorf("%s: unexpected error %v", coinType, res.Err)
		}
		if res.Route == nil || res.Route.ToCoinType != "0x2::sui::SUI" {
			t.Errorf("%s: unexpected route %+v", coinType, res.Route)
		}
	}
}

func TestFetchQuotes_FailureIsolation(t *testing.T) {
	provider := NewStubProvider()
	provider.Ratios["0xa::usdc"] = 1.0
	// 0xc::cetus has no ratio → ErrNoRoute

	requests := []QuoteRequest{
		{CoinType: "0xa::usdc", RawAmount: big.NewInt(1000)},
		{CoinType: "0xc::cetus", RawAmount: big.NewInt(500)},
	}

	results := FetchQuotes(context.Background(), provider, requests, "0x2::sui::SUI")

	if results["0xa::usdc"].Err != nil {
		t.Errorf("healthy request must not be affected: %v", results["0xa::usdc"].Err)
	}
	if !errors.Is(results["0xc::cetus"].Err, ErrNoRoute) {
		t.Errorf("expected ErrNoRoute, got %v", results["0xc::cetus"].Err)
	}
	// Both requests settled despite one failure
	if len(results) != 2 {
		t.Errorf("expected all requests settled, got %d", len(results))
	}
}

// slowProvider counts concurrent FindRoute calls to verify the bound.
type slowProvider struct {
	*StubProvider
	inFlight    atomic.Int64
	maxObserved atomic.Int64
}

func (s *slowProvider) FindRoute(ctx context.Context, from, to string, amountIn *big.Int) (*domain.Route, error) {
	cur := s.inFlight.Add(1)
	for {
		observed := s.maxObserved.Load()
		if cur <= observed || s.maxObserved.CompareAndSwap(observed, cur) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	s.inFlight.Add(-1)
	return s.StubProvider.FindRoute(ctx, from, to, amountIn)
}

func TestFetchQuotes_BoundedConcurrency(t *testing.T) {
	provider := &slowProvider{StubProvider: NewStubProvider()}
	requests := make([]QuoteRequest, 0, 30)
	for i := 0; i < 30; i++ {
		coinType := fmt.Sprintf("0x%d::coin", i)
		provider.Ratios[coinType] = 1.0
		requests = append(requests, QuoteRequest{CoinType: coinType, RawAmount: big.NewInt(int64(i + 1))})
	}

	FetchQuotes(context.Background(), provider, requests, "0x2::sui::SUI")

	if got := provider.maxObserved.Load(); got > MaxInFlightQuotes {
		t.Errorf("observed %d concurrent requests, bound is %d", got, MaxInFlightQuotes)
	}
}

func TestFetchQuotes_EmptyRequests(t *testing.T) {
	results := FetchQuotes(context.Background(), NewStubProvider(), nil, "0x2::sui::SUI")
	if len(results) != 0 {
		t.Errorf("expected empty result map, got %d", len(results))
	}
}
