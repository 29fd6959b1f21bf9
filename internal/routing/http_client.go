package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"lendlab/internal/domain"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// HTTPProvider implements QuoteProvider against a routing aggregator's
// HTTP API.
type HTTPProvider struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// ProviderOption configures HTTPProvider.
type ProviderOption func(*HTTPProvider)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ProviderOption {
	return func(p *HTTPProvider) {
		p.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ProviderOption {
	return func(p *HTTPProvider) {
		p.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ProviderOption {
	return func(p *HTTPProvider) {
		p.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *HTTPProvider) {
		p.client = client
	}
}

// NewHTTPProvider creates a quote provider client for the given endpoint.
func NewHTTPProvider(endpoint string, opts ...ProviderOption) *HTTPProvider {
	p := &HTTPProvider{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Compile-time interface check.
var _ QuoteProvider = (*HTTPProvider)(nil)

// routeRequest is the wire request for route discovery.
type routeRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	AmountIn string `json:"amountIn"`
}

// routeResponse is the wire response for route discovery.
type routeResponse struct {
	Found       bool   `json:"found"`
	Provider    string `json:"provider"`
	ExpectedOut string `json:"expectedOut"`
}

// executeRequest is the wire request for route execution.
type executeRequest struct {
	From        string  `json:"from"`
	To          string  `json:"to"`
	AmountIn    string  `json:"amountIn"`
	SlippagePct float64 `json:"slippagePct"`
	Provider    string  `json:"provider"`
}

// executeResponse is the wire response for route execution.
type executeResponse struct {
	OK        bool   `json:"ok"`
	AmountOut string `json:"amountOut"`
	Message   string `json:"message"`
}

// FindRoute requests a route from the aggregator. A well-formed "not
// found" response maps to ErrNoRoute.
func (p *HTTPProvider) FindRoute(ctx context.Context, fromCoinType, toCoinType string, amountIn *big.Int) (*domain.Route, error) {
	req := routeRequest{From: fromCoinType, To: toCoinType, AmountIn: amountIn.String()}

	var resp routeResponse
	if err := p.post(ctx, "/v1/route", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Found {
		return nil, fmt.Errorf("%s -> %s: %w", fromCoinType, toCoinType, ErrNoRoute)
	}

	expectedOut, ok := new(big.Int).SetString(resp.ExpectedOut, 10)
	if !ok {
		return nil, fmt.Errorf("parse expectedOut %q", resp.ExpectedOut)
	}

	return &domain.Route{
		FromCoinType: fromCoinType,
		ToCoinType:   toCoinType,
		AmountIn:     new(big.Int).Set(amountIn),
		ExpectedOut:  expectedOut,
		Provider:     resp.Provider,
	}, nil
}

// ExecuteRoute executes an obtained route under the slippage tolerance.
func (p *HTTPProvider) ExecuteRoute(ctx context.Context, route *domain.Route, input *domain.Coin, slippagePct float64) (*domain.Coin, error) {
	req := executeRequest{
		From:        route.FromCoinType,
		To:          route.ToCoinType,
		AmountIn:    input.RawAmount.String(),
		SlippagePct: slippagePct,
		Provider:    route.Provider,
	}

	var resp executeResponse
	if err := p.post(ctx, "/v1/execute", req, &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("%s: %w", resp.Message, ErrSwapExecutionFailed)
	}

	amountOut, ok := new(big.Int).SetString(resp.AmountOut, 10)
	if !ok {
		return nil, fmt.Errorf("parse amountOut %q", resp.AmountOut)
	}

	return domain.NewCoin(route.ToCoinType, amountOut), nil
}

// post performs a JSON POST with retries and exponential backoff.
// Transport-level failures and 429/5xx responses are retried; a decoded
// application response is returned as-is.
func (p *HTTPProvider) post(ctx context.Context, path string, payload, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := p.retryDelay
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * p.backoffMult)
			if delay > p.maxDelay {
				delay = p.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
