package repositories

import (
	"context"
	"errors"
	"sort"
	"sync"

	"fleet-dispatch-service/internal/domain"
)

// MemoryWorkHoursRepository keeps the ledger in process memory. Used by tests
// and by dispatchctl runs that have no database at hand.
type MemoryWorkHoursRepository struct {
	mu   sync.RWMutex
	recs map[string]domain.WorkHoursRecord
}

func NewMemoryWorkHoursRepository() *MemoryWorkHoursRepository {
	return &MemoryWorkHoursRepository{recs: make(map[string]domain.WorkHoursRecord)}
}

func (r *MemoryWorkHoursRepository) LoadAll(ctx context.Context) ([]domain.WorkHoursRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.WorkHoursRecord, 0, len(r.recs))
	for _, rec := range r.recs {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DriverID < out[j].DriverID })
	return out, nil
}

func (r *MemoryWorkHoursRepository) Save(ctx context.Context, rec domain.WorkHoursRecord) error {
	if rec.DriverID == "" {
		return errors.New("save work hours: driver id must be non-empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs[rec.DriverID] = rec
	return nil
}
