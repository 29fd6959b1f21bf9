package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"lendlab/internal/domain"
	"lendlab/internal/storage"
)

// RewardSnapshotStore is an in-memory implementation of storage.RewardSnapshotStore.
type RewardSnapshotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.RewardSnapshot // keyed by composite key
}

// NewRewardSnapshotStore creates a new in-memory reward snapshot store.
func NewRewardSnapshotStore() *RewardSnapshotStore {
	return &RewardSnapshotStore{
		data: make(map[string]*domain.RewardSnapshot),
	}
}

func snapshotKey(s *domain.RewardSnapshot) string {
	return fmt.Sprintf("%s|%s|%s|%d", s.ReserveCoinType, s.Side, s.RewardCoinType, s.TimestampMs)
}

// InsertBulk adds multiple snapshots atomically. Fails entire batch on any duplicate.
func (s *RewardSnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.RewardSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(snapshots))

	for _, snap := range snapshots {
		if snap == nil || snap.ReserveCoinType == "" || !snap.Side.IsValid() {
			return storage.ErrInvalidInput
		}
		key := snapshotKey(snap)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, snap := range snapshots {
		copy := *snap
		s.data[snapshotKey(snap)] = &copy
	}

	return nil
}

// GetByReserveSide retrieves snapshots for a reserve side taken at or before
// upToMs, ordered by timestamp ASC.
func (s *RewardSnapshotStore) GetByReserveSide(_ context.Context, reserveCoinType string, side domain.Side, upToMs int64) ([]*domain.RewardSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RewardSnapshot
	for _, snap := range s.data {
		if snap.ReserveCoinType == reserveCoinType && snap.Side == side && snap.TimestampMs <= upToMs {
			copy := *snap
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TimestampMs != result[j].TimestampMs {
			return result[i].TimestampMs < result[j].TimestampMs
		}
		return result[i].RewardCoinType < result[j].RewardCoinType
	})

	return result, nil
}

var _ storage.RewardSnapshotStore = (*RewardSnapshotStore)(nil)
