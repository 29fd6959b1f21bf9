package routing

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"lendlab/internal/domain"
)

// StubProvider is an in-memory QuoteProvider for tests and demos. Routes
// are configured per source asset as a simple price ratio into the target;
// assets without a configured ratio report ErrNoRoute.
type StubProvider struct {
	mu sync.Mutex

	// Ratios maps source coin type to output-per-input ratio.
	Ratios map[string]float64
	// FailExecution lists coin types whose swap execution should fail.
	FailExecution map[string]bool

	findCalls    int
	executeCalls int
}

// NewStubProvider creates an empty stub provider.
func NewStubProvider() *StubProvider {
	return &StubProvider{
		Ratios:        make(map[string]float64),
		FailExecution: make(map[string]bool),
	}
}

// Compile-time interface check.
var _ QuoteProvider = (*StubProvider)(nil)

// FindRoute returns a configured route or ErrNoRoute.
func (s *StubProvider) FindRoute(_ context.Context, fromCoinType, toCoinType string, amountIn *big.Int) (*domain.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++

	ratio, ok := s.Ratios[fromCoinType]
	if !ok {
		return nil, fmt.Errorf("%s -> %s: %w", fromCoinType, toCoinType, ErrNoRoute)
	}

	expectedOut := scaleAmount(amountIn, ratio)
	return &domain.Route{
		FromCoinType: fromCoinType,
		ToCoinType:   toCoinType,
		AmountIn:     new(big.Int).Set(amountIn),
		ExpectedOut:  expectedOut,
		Provider:     "stub",
	}, nil
}

// ExecuteRoute yields the quoted output, or fails if configured to.
func (s *StubProvider) ExecuteRoute(_ context.Context, route *domain.Route, input *domain.Coin, _ float64) (*domain.Coin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executeCalls++

	if s.FailExecution[route.FromCoinType] {
		return nil, fmt.Errorf("%s: %w", route.FromCoinType, ErrSwapExecutionFailed)
	}

	ratio := s.Ratios[route.FromCoinType]
	return domain.NewCoin(route.ToCoinType, scaleAmount(input.RawAmount, ratio)), nil
}

// FindCalls reports how many route lookups were issued.
func (s *StubProvider) FindCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCalls
}

// scaleAmount multiplies a big integer amount by a float ratio, flooring
// the result.
func scaleAmount(amount *big.Int, ratio float64) *big.Int {
	product := new(big.Float).Mul(new(big.Float).SetInt(amount), big.NewFloat(ratio))
	result, _ := product.Int(nil)
	return result
}
