package postgres

import (
	"context"
	"fmt"

	"lendlab/internal/domain"
	"lendlab/internal/storage"
)

// RewardSnapshotStore implements storage.RewardSnapshotStore using PostgreSQL.
type RewardSnapshotStore struct {
	pool *Pool
}

// NewRewardSnapshotStore creates a new RewardSnapshotStore.
func NewRewardSnapshotStore(pool *Pool) *RewardSnapshotStore {
	return &RewardSnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RewardSnapshotStore = (*RewardSnapshotStore)(nil)

// InsertBulk adds multiple snapshots atomically. Fails entire batch on any duplicate.
func (s *RewardSnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.RewardSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO reward_snapshots (
			reserve_coin_type, side, timestamp_ms, reward_coin_type, price
		) VALUES ($1, $2, $3, $4, $5)
	`

	for _, snap := range snapshots {
		if snap == nil || snap.ReserveCoinType == "" || !snap.Side.IsValid() {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query,
			snap.ReserveCoinType, snap.Side.String(), snap.TimestampMs, snap.RewardCoinType, snap.Price,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert reward snapshot in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByReserveSide retrieves snapshots for a reserve side taken at or before
// upToMs, ordered by timestamp ASC.
func (s *RewardSnapshotStore) GetByReserveSide(ctx context.Context, reserveCoinType string, side domain.Side, upToMs int64) ([]*domain.RewardSnapshot, error) {
	query := `
		SELECT reserve_coin_type, side, timestamp_ms, reward_coin_type, price
		FROM reward_snapshots
		WHERE reserve_coin_type = $1 AND side = $2 AND timestamp_ms <= $3
		ORDER BY timestamp_ms ASC, reward_coin_type ASC
	`

	rows, err := s.pool.Query(ctx, query, reserveCoinType, side.String(), upToMs)
	if err != nil {
		return nil, fmt.Errorf("get reward snapshots by reserve/side: %w", err)
	}
	defer rows.Close()

	var snapshots []*domain.RewardSnapshot
	for rows.Next() {
		var snap domain.RewardSnapshot
		var sideStr string
		if err := rows.Scan(&snap.ReserveCoinType, &sideStr, &snap.TimestampMs, &snap.RewardCoinType, &snap.Price); err != nil {
			return nil, fmt.Errorf("scan reward snapshot row: %w", err)
		}
		snap.Side = domain.Side(sideStr)
		snapshots = append(snapshots, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reward snapshot rows: %w", err)
	}

	return snapshots, nil
}
