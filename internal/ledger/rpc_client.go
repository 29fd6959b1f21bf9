package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
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

// HTTPClient implements Reader using HTTP JSON-RPC 2.0.
type HTTPClient struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	requestID   atomic.Uint64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a new lending market RPC client.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ Reader = (*HTTPClient)(nil)

// rpcRequest represents a JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs a JSON-RPC call with retries and exponential backoff.
func (c *HTTPClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	reqID := c.requestID.Add(1)
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
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

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		if rpcResp.Error != nil {
			// RPC errors are not retried
			return rpcResp.Error
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// Reserves fetches all reserves of the lending market.
func (c *HTTPClient) Reserves(ctx context.Context) ([]*domain.Reserve, error) {
	var result []reserveResult
	if err := c.call(ctx, "getReserves", nil, &result); err != nil {
		return nil, err
	}

	reserves := make([]*domain.Reserve, 0, len(result))
	for _, r := range result {
		reserves = append(reserves, &domain.Reserve{
			CoinType:       r.CoinType,
			Symbol:         r.Symbol,
			MintDecimals:   r.MintDecimals,
			Price:          r.Price,
			ArrayIndex:     r.ArrayIndex,
			BorrowWeight:   r.BorrowWeight,
			DepositRewards: convertPoolRewards(r.DepositPool),
			BorrowRewards:  convertPoolRewards(r.BorrowPool),
		})
	}
	return reserves, nil
}

// ObligationsByOwner fetches the owner's obligations.
func (c *HTTPClient) ObligationsByOwner(ctx context.Context, owner string) ([]*domain.Obligation, error) {
	if err := ValidateOwnerAddress(owner); err != nil {
		return nil, err
	}

	params := []interface{}{owner}
	var result []obligationResult
	if err := c.call(ctx, "getObligationsByOwner", params, &result); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("owner %s: %w", owner, ErrObligationNotFound)
	}

	// Reserve pointers on deposits/borrows are resolved against a fresh
	// reserve fetch so one call yields a consistent snapshot.
	reserves, err := c.Reserves(ctx)
	if err != nil {
		return nil, err
	}
	byIndex := make(map[int]*domain.Reserve, len(reserves))
	for _, r := range reserves {
		byIndex[r.ArrayIndex] = r
	}

	obligations := make([]*domain.Obligation, 0, len(result))
	for _, o := range result {
		obligation := &domain.Obligation{
			ID:                         o.ID,
			OwnerID:                    owner,
			DepositedAmountUSD:         o.DepositedAmountUSD,
			BorrowedAmountUSD:          o.BorrowedAmountUSD,
			WeightedBorrowsUSD:         o.WeightedBorrowsUSD,
			MaxPriceWeightedBorrowsUSD: o.MaxPriceWeightedBorrowsUSD,
			MinPriceBorrowLimitUSD:     o.MinPriceBorrowLimitUSD,
			UnhealthyBorrowValueUSD:    o.UnhealthyBorrowValueUSD,
		}
		for _, d := range o.Deposits {
			obligation.Deposits = append(obligation.Deposits, domain.Deposit{
				CoinType:           d.CoinType,
				DepositedAmount:    d.DepositedAmount,
				DepositedAmountUSD: d.DepositedAmountUSD,
				Reserve:            byIndex[d.ReserveArrayIndex],
			})
		}
		for _, b := range o.Borrows {
			obligation.Borrows = append(obligation.Borrows, domain.Borrow{
				CoinType:          b.CoinType,
				BorrowedAmount:    b.BorrowedAmount,
				BorrowedAmountUSD: b.BorrowedAmountUSD,
				Reserve:           byIndex[b.ReserveArrayIndex],
			})
		}
		obligations = append(obligations, obligation)
	}
	return obligations, nil
}

// RewardAccruals fetches the per-stream accrual records for one obligation.
func (c *HTTPClient) RewardAccruals(ctx context.Context, obligationID string) ([]*domain.UserRewardAccrual, error) {
	params := []interface{}{obligationID}
	var result []accrualResult
	if err := c.call(ctx, "getRewardAccruals", params, &result); err != nil {
		return nil, err
	}

	accruals := make([]*domain.UserRewardAccrual, 0, len(result))
	for _, a := range result {
		side := domain.Side(strings.ToUpper(a.Side))
		if !side.IsValid() {
			return nil, fmt.Errorf("invalid side %q for obligation %s", a.Side, obligationID)
		}
		accruals = append(accruals, &domain.UserRewardAccrual{
			ObligationID:                  obligationID,
			ReserveArrayIndex:             a.ReserveArrayIndex,
			RewardIndex:                   a.RewardIndex,
			Side:                          side,
			Share:                         a.Share,
			LastCumulativeRewardsPerShare: a.LastCumulativeRewardsPerShare,
		})
	}
	return accruals, nil
}

// CoinMetadata resolves decimals and symbols for the given assets.
func (c *HTTPClient) CoinMetadata(ctx context.Context, coinTypes []string) (map[string]domain.CoinMetadata, error) {
	if len(coinTypes) == 0 {
		return map[string]domain.CoinMetadata{}, nil
	}

	params := []interface{}{coinTypes}
	var result []coinMetadataResult
	if err := c.call(ctx, "getCoinMetadata", params, &result); err != nil {
		return nil, err
	}

	metadata := make(map[string]domain.CoinMetadata, len(result))
	for _, m := range result {
		metadata[m.CoinType] = domain.CoinMetadata{
			CoinType: m.CoinType,
			Symbol:   m.Symbol,
			Decimals: m.Decimals,
		}
	}
	return metadata, nil
}

func convertPoolRewards(results []poolRewardResult) []domain.PoolReward {
	rewards := make([]domain.PoolReward, 0, len(results))
	for _, p := range results {
		rewards = append(rewards, domain.PoolReward{
			RewardIndex:               p.RewardIndex,
			CoinType:                  p.CoinType,
			StartTimeMs:               p.StartTimeMs,
			EndTimeMs:                 p.EndTimeMs,
			TotalRewards:              p.TotalRewards,
			AllocatedRewards:          p.AllocatedRewards,
			CumulativeRewardsPerShare: p.CumulativeRewardsPerShare,
		})
	}
	return rewards
}
