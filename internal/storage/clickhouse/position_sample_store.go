package clickhouse

import (
	"context"
	"fmt"

	"lendlab/internal/domain"
	"lendlab/internal/storage"
)

// PositionSampleStore implements storage.PositionSampleStore using ClickHouse.
type PositionSampleStore struct {
	conn *Conn
}

// NewPositionSampleStore creates a new PositionSampleStore.
func NewPositionSampleStore(conn *Conn) *PositionSampleStore {
	return &PositionSampleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PositionSampleStore = (*PositionSampleStore)(nil)

// InsertBulk adds multiple samples. Fails entire batch on duplicate
// (obligation_id, timestamp_ms). MergeTree does not enforce uniqueness, so
// duplicates are checked explicitly before the batch insert.
func (s *PositionSampleStore) InsertBulk(ctx context.Context, samples []*domain.PositionSample) error {
	if len(samples) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		obligationID string
		timestampMs  int64
	}
	seen := make(map[key]struct{})
	for _, p := range samples {
		if p == nil || p.ObligationID == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.ObligationID, p.TimestampMs}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, p := range samples {
		exists, err := s.exists(ctx, p.ObligationID, p.TimestampMs)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO position_samples (
			obligation_id, timestamp_ms,
			deposited_amount_usd, borrowed_amount_usd, weighted_borrows_usd
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range samples {
		err = batch.Append(
			p.ObligationID, uint64(p.TimestampMs),
			p.DepositedAmountUSD, p.BorrowedAmountUSD, p.WeightedBorrowsUSD,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByObligationID retrieves all samples for an obligation, ordered by timestamp ASC.
func (s *PositionSampleStore) GetByObligationID(ctx context.Context, obligationID string) ([]*domain.PositionSample, error) {
	query := `
		SELECT obligation_id, timestamp_ms,
		       deposited_amount_usd, borrowed_amount_usd, weighted_borrows_usd
		FROM position_samples
		WHERE obligation_id = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, obligationID)
	if err != nil {
		return nil, fmt.Errorf("query by obligation id: %w", err)
	}
	defer rows.Close()

	return scanPositionSamples(rows)
}

// GetByTimeRange retrieves samples for an obligation within [start, end] (inclusive).
func (s *PositionSampleStore) GetByTimeRange(ctx context.Context, obligationID string, start, end int64) ([]*domain.PositionSample, error) {
	query := `
		SELECT obligation_id, timestamp_ms,
		       deposited_amount_usd, borrowed_amount_usd, weighted_borrows_usd
		FROM position_samples
		WHERE obligation_id = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, obligationID, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanPositionSamples(rows)
}

// exists checks if a sample with the given key exists.
func (s *PositionSampleStore) exists(ctx context.Context, obligationID string, timestampMs int64) (bool, error) {
	query := `
		SELECT count(*) FROM position_samples
		WHERE obligation_id = ? AND timestamp_ms = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, obligationID, uint64(timestampMs)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// chRows is the minimal row-iteration surface shared by Query results.
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanPositionSamples scans multiple rows.
func scanPositionSamples(rows chRows) ([]*domain.PositionSample, error) {
	var samples []*domain.PositionSample

	for rows.Next() {
		var p domain.PositionSample
		var timestampMs uint64

		err := rows.Scan(
			&p.ObligationID, &timestampMs,
			&p.DepositedAmountUSD, &p.BorrowedAmountUSD, &p.WeightedBorrowsUSD,
		)
		if err != nil {
			return nil, fmt.Errorf("scan position sample row: %w", err)
		}

		p.TimestampMs = int64(timestampMs)
		samples = append(samples, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate position sample rows: %w", err)
	}

	return samples, nil
}
