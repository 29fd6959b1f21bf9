package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"lendlab/internal/domain"
	"lendlab/internal/storage"
)

// PositionSampleStore is an in-memory implementation of storage.PositionSampleStore.
type PositionSampleStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PositionSample // keyed by (obligation_id, timestamp_ms)
}

// NewPositionSampleStore creates a new in-memory position sample store.
func NewPositionSampleStore() *PositionSampleStore {
	return &PositionSampleStore{
		data: make(map[string]*domain.PositionSample),
	}
}

func sampleKey(p *domain.PositionSample) string {
	return fmt.Sprintf("%s|%d", p.ObligationID, p.TimestampMs)
}

// InsertBulk adds multiple samples atomically. Fails entire batch on any duplicate.
func (s *PositionSampleStore) InsertBulk(_ context.Context, samples []*domain.PositionSample) error {
	if len(samples) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(samples))

	for _, sample := range samples {
		if sample == nil || sample.ObligationID == "" {
			return storage.ErrInvalidInput
		}
		key := sampleKey(sample)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, sample := range samples {
		copy := *sample
		s.data[sampleKey(sample)] = &copy
	}

	return nil
}

// GetByObligationID retrieves all samples for an obligation, ordered by timestamp ASC.
func (s *PositionSampleStore) GetByObligationID(_ context.Context, obligationID string) ([]*domain.PositionSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PositionSample
	for _, sample := range s.data {
		if sample.ObligationID == obligationID {
			copy := *sample
			result = append(result, &copy)
		}
	}

	sortSamples(result)
	return result, nil
}

// GetByTimeRange retrieves samples for an obligation within [start, end] (inclusive).
func (s *PositionSampleStore) GetByTimeRange(_ context.Context, obligationID string, start, end int64) ([]*domain.PositionSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PositionSample
	for _, sample := range s.data {
		if sample.ObligationID == obligationID && sample.TimestampMs >= start && sample.TimestampMs <= end {
			copy := *sample
			result = append(result, &copy)
		}
	}

	sortSamples(result)
	return result, nil
}

func sortSamples(samples []*domain.PositionSample) {
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].TimestampMs < samples[j].TimestampMs
	})
}

var _ storage.PositionSampleStore = (*PositionSampleStore)(nil)
