package memory

import (
	"context"
	"errors"
	"testing"

	"lendlab/internal/domain"
	"lendlab/internal/storage"
)

func TestRewardSnapshotStore_InsertBulkAndQuery(t *testing.T) {
	store := NewRewardSnapshotStore()
	ctx := context.Background()

	snapshots := []*domain.RewardSnapshot{
		{ReserveCoinType: "0xa::usdc", Side: domain.SideDeposit, TimestampMs: 2000, RewardCoinType: "0x2::sui::SUI", Price: 1.2},
		{ReserveCoinType: "0xa::usdc", Side: domain.SideDeposit, TimestampMs: 1000, RewardCoinType: "0x2::sui::SUI", Price: 1.0},
		{ReserveCoinType: "0xa::usdc", Side: domain.SideBorrow, TimestampMs: 1500, RewardCoinType: "0x2::sui::SUI", Price: 1.1},
		{ReserveCoinType: "0xa::usdc", Side: domain.SideDeposit, TimestampMs: 3000, RewardCoinType: "0x2::sui::SUI", Price: 1.3},
	}

	if err := store.InsertBulk(ctx, snapshots); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByReserveSide(ctx, "0xa::usdc", domain.SideDeposit, 2500)
	if err != nil {
		t.Fatalf("GetByReserveSide failed: %v", err)
	}

	// Borrow-side and future snapshots are excluded; remainder in timestamp order.
	if len(result) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(result))
	}
	if result[0].TimestampMs != 1000 || result[1].TimestampMs != 2000 {
		t.Errorf("wrong order: %d, %d", result[0].TimestampMs, result[1].TimestampMs)
	}
}

func TestRewardSnapshotStore_DuplicateFailsBatch(t *testing.T) {
	store := NewRewardSnapshotStore()
	ctx := context.Background()

	first := &domain.RewardSnapshot{ReserveCoinType: "0xa::usdc", Side: domain.SideDeposit, TimestampMs: 1000, RewardCoinType: "0x2::sui::SUI"}
	if err := store.InsertBulk(ctx, []*domain.RewardSnapshot{first}); err != nil {
		t.Fatalf("first InsertBulk failed: %v", err)
	}

	batch := []*domain.RewardSnapshot{
		{ReserveCoinType: "0xa::usdc", Side: domain.SideDeposit, TimestampMs: 2000, RewardCoinType: "0x2::sui::SUI"},
		{ReserveCoinType: "0xa::usdc", Side: domain.SideDeposit, TimestampMs: 1000, RewardCoinType: "0x2::sui::SUI"},
	}
	err := store.InsertBulk(ctx, batch)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}

	// The whole batch must be rejected, including the fresh row.
	result, err := store.GetByReserveSide(ctx, "0xa::usdc", domain.SideDeposit, 3000)
	if err != nil {
		t.Fatalf("GetByReserveSide failed: %v", err)
	}
	if len(result) != 1 {
		t.Errorf("Expected 1 snapshot after failed batch, got %d", len(result))
	}
}

func TestRewardSnapshotStore_InvalidSide(t *testing.T) {
	store := NewRewardSnapshotStore()

	err := store.InsertBulk(context.Background(), []*domain.RewardSnapshot{
		{ReserveCoinType: "0xa::usdc", Side: "SIDEWAYS", TimestampMs: 1000},
	})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
