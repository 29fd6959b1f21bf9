package storage

import (
	"context"

	"lendlab/internal/domain"
)

// ClaimRecordStore provides access to claim_records storage.
type ClaimRecordStore interface {
	// Insert adds a new record. Returns ErrDuplicateKey if plan_id exists.
	Insert(ctx context.Context, r *domain.ClaimRecord) error

	// GetByID retrieves a record by its plan ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, planID string) (*domain.ClaimRecord, error)

	// GetByOwner retrieves all records for an owner, ordered by submitted_at_ms ASC.
	GetByOwner(ctx context.Context, ownerID string) ([]*domain.ClaimRecord, error)
}

// RewardSnapshotStore provides access to reward_snapshots storage.
type RewardSnapshotStore interface {
	// InsertBulk adds multiple snapshots atomically. Fails entire batch on
	// duplicate (reserve_coin_type, side, reward_coin_type, timestamp_ms).
	InsertBulk(ctx context.Context, snapshots []*domain.RewardSnapshot) error

	// GetByReserveSide retrieves snapshots for a reserve side taken at or
	// before upToMs, ordered by timestamp ASC.
	GetByReserveSide(ctx context.Context, reserveCoinType string, side domain.Side, upToMs int64) ([]*domain.RewardSnapshot, error)
}

// PositionSampleStore provides access to position_samples storage.
type PositionSampleStore interface {
	// InsertBulk adds multiple samples. Fails entire batch on duplicate
	// (obligation_id, timestamp_ms).
	InsertBulk(ctx context.Context, samples []*domain.PositionSample) error

	// GetByObligationID retrieves all samples for an obligation, ordered by timestamp ASC.
	GetByObligationID(ctx context.Context, obligationID string) ([]*domain.PositionSample, error)

	// GetByTimeRange retrieves samples for an obligation within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, obligationID string, start, end int64) ([]*domain.PositionSample, error)
}
