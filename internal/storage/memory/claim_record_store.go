package memory

import (
	"context"
	"sort"
	"sync"

	"lendlab/internal/domain"
	"lendlab/internal/storage"
)

// ClaimRecordStore is an in-memory implementation of storage.ClaimRecordStore.
type ClaimRecordStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ClaimRecord // keyed by plan_id
}

// NewClaimRecordStore creates a new in-memory claim record store.
func NewClaimRecordStore() *ClaimRecordStore {
	return &ClaimRecordStore{
		data: make(map[string]*domain.ClaimRecord),
	}
}

// Insert adds a new record. Returns ErrDuplicateKey if plan_id exists.
func (s *ClaimRecordStore) Insert(_ context.Context, r *domain.ClaimRecord) error {
	if r == nil || r.PlanID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.PlanID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *r
	s.data[r.PlanID] = &copy
	return nil
}

// GetByID retrieves a record by its plan ID. Returns ErrNotFound if not exists.
func (s *ClaimRecordStore) GetByID(_ context.Context, planID string) (*domain.ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[planID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *r
	return &copy, nil
}

// GetByOwner retrieves all records for an owner, ordered by submitted_at_ms ASC.
func (s *ClaimRecordStore) GetByOwner(_ context.Context, ownerID string) ([]*domain.ClaimRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ClaimRecord
	for _, r := range s.data {
		if r.OwnerID == ownerID {
			copy := *r
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].SubmittedAtMs != result[j].SubmittedAtMs {
			return result[i].SubmittedAtMs < result[j].SubmittedAtMs
		}
		return result[i].PlanID < result[j].PlanID
	})

	return result, nil
}

var _ storage.ClaimRecordStore = (*ClaimRecordStore)(nil)
