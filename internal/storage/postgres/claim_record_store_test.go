package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"lendlab/internal/domain"
	"lendlab/internal/storage"
)

func TestClaimRecordStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewClaimRecordStore(pool)
	ctx := context.Background()

	record := &domain.ClaimRecord{
		PlanID:             "plan1",
		OwnerID:            "owner1",
		Mode:               domain.ClaimModeSwapDeposit.String(),
		TargetCoinType:     ptr("0x2::sui::SUI"),
		AssetsRequested:    3,
		AssetsConsolidated: 2,
		Status:             domain.ClaimStatusConfirmed,
		Digest:             ptr("0xabc"),
		SubmittedAtMs:      1704067200000,
	}

	require.NoError(t, store.Insert(ctx, record))

	got, err := store.GetByID(ctx, "plan1")
	require.NoError(t, err)
	require.Equal(t, "owner1", got.OwnerID)
	require.Equal(t, 2, got.AssetsConsolidated)
	require.NotNil(t, got.TargetCoinType)
	require.Equal(t, "0x2::sui::SUI", *got.TargetCoinType)
	require.NotNil(t, got.Digest)
	require.Equal(t, "0xabc", *got.Digest)
}

func TestClaimRecordStore_NullableColumns(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewClaimRecordStore(pool)
	ctx := context.Background()

	// Direct-mode records have no target asset; failed records have no digest.
	record := &domain.ClaimRecord{
		PlanID:        "plan1",
		OwnerID:       "owner1",
		Mode:          domain.ClaimModeDeposit.String(),
		Status:        domain.ClaimStatusFailed,
		SubmittedAtMs: 1704067200000,
	}

	require.NoError(t, store.Insert(ctx, record))

	got, err := store.GetByID(ctx, "plan1")
	require.NoError(t, err)
	require.Nil(t, got.TargetCoinType)
	require.Nil(t, got.Digest)
}

func TestClaimRecordStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewClaimRecordStore(pool)
	ctx := context.Background()

	record := &domain.ClaimRecord{PlanID: "plan1", OwnerID: "owner1", Mode: domain.ClaimModeDeposit.String(), Status: domain.ClaimStatusSubmitted}

	require.NoError(t, store.Insert(ctx, record))

	err := store.Insert(ctx, record)
	require.True(t, errors.Is(err, storage.ErrDuplicateKey), "expected ErrDuplicateKey, got %v", err)
}

func TestClaimRecordStore_GetByIDNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewClaimRecordStore(pool)

	_, err := store.GetByID(context.Background(), "missing")
	require.True(t, errors.Is(err, storage.ErrNotFound), "expected ErrNotFound, got %v", err)
}

func TestClaimRecordStore_GetByOwnerOrdered(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewClaimRecordStore(pool)
	ctx := context.Background()

	records := []*domain.ClaimRecord{
		{PlanID: "plan3", OwnerID: "owner1", Mode: domain.ClaimModeDeposit.String(), Status: domain.ClaimStatusConfirmed, SubmittedAtMs: 3000},
		{PlanID: "plan1", OwnerID: "owner1", Mode: domain.ClaimModeDeposit.String(), Status: domain.ClaimStatusConfirmed, SubmittedAtMs: 1000},
		{PlanID: "plan2", OwnerID: "owner2", Mode: domain.ClaimModeDeposit.String(), Status: domain.ClaimStatusFailed, SubmittedAtMs: 2000},
	}
	for _, r := range records {
		require.NoError(t, store.Insert(ctx, r))
	}

	result, err := store.GetByOwner(ctx, "owner1")
	require.NoError(t, err)
	require.Len(t, result, 2)
	require.Equal(t, "plan1", result[0].PlanID)
	require.Equal(t, "plan3", result[1].PlanID)
}
