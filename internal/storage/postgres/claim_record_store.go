package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"lendlab/internal/domain"
	"lendlab/internal/storage"
)

// ClaimRecordStore implements storage.ClaimRecordStore using PostgreSQL.
type ClaimRecordStore struct {
	pool *Pool
}

// NewClaimRecordStore creates a new ClaimRecordStore.
func NewClaimRecordStore(pool *Pool) *ClaimRecordStore {
	return &ClaimRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ClaimRecordStore = (*ClaimRecordStore)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if plan_id exists.
func (s *ClaimRecordStore) Insert(ctx context.Context, r *domain.ClaimRecord) error {
	query := `
		INSERT INTO claim_records (
			plan_id, owner_id, mode, target_coin_type,
			assets_requested, assets_consolidated,
			status, digest, submitted_at_ms
		) VALUES (
			$1, $2, $3, $4,
			$5, $6,
			$7, $8, $9
		)
	`

	_, err := s.pool.Exec(ctx, query,
		r.PlanID, r.OwnerID, r.Mode, r.TargetCoinType,
		r.AssetsRequested, r.AssetsConsolidated,
		r.Status, r.Digest, r.SubmittedAtMs,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert claim record: %w", err)
	}
	return nil
}

// GetByID retrieves a record by its plan ID. Returns ErrNotFound if not exists.
func (s *ClaimRecordStore) GetByID(ctx context.Context, planID string) (*domain.ClaimRecord, error) {
	query := `
		SELECT
			plan_id, owner_id, mode, target_coin_type,
			assets_requested, assets_consolidated,
			status, digest, submitted_at_ms
		FROM claim_records
		WHERE plan_id = $1
	`

	row := s.pool.QueryRow(ctx, query, planID)
	r, err := scanClaimRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get claim record by id: %w", err)
	}
	return r, nil
}

// GetByOwner retrieves all records for an owner, ordered by submitted_at_ms ASC.
func (s *ClaimRecordStore) GetByOwner(ctx context.Context, ownerID string) ([]*domain.ClaimRecord, error) {
	query := `
		SELECT
			plan_id, owner_id, mode, target_coin_type,
			assets_requested, assets_consolidated,
			status, digest, submitted_at_ms
		FROM claim_records
		WHERE owner_id = $1
		ORDER BY submitted_at_ms ASC, plan_id ASC
	`

	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get claim records by owner: %w", err)
	}
	defer rows.Close()

	var records []*domain.ClaimRecord
	for rows.Next() {
		r, err := scanClaimRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim record row: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claim record rows: %w", err)
	}

	return records, nil
}

// scanClaimRecord scans a single row into a ClaimRecord.
func scanClaimRecord(row pgx.Row) (*domain.ClaimRecord, error) {
	var r domain.ClaimRecord

	err := row.Scan(
		&r.PlanID, &r.OwnerID, &r.Mode, &r.TargetCoinType,
		&r.AssetsRequested, &r.AssetsConsolidated,
		&r.Status, &r.Digest, &r.SubmittedAtMs,
	)
	if err != nil {
		return nil, err
	}

	return &r, nil
}
