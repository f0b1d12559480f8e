package repository

import (
	"context"
	"sync"

	"adpulse/internal/models"
)

// MemoryStatusRepository is the in-process fallback when redis is down or
// not configured.
type MemoryStatusRepository struct {
	mu     sync.RWMutex
	status *models.SchedulerStatus
}

func NewMemoryStatusRepository() *MemoryStatusRepository {
	return &MemoryStatusRepository{}
}

func (r *MemoryStatusRepository) SaveStatus(_ context.Context, status models.SchedulerStatus) error {
	clone := status.Clone()
	r.mu.Lock()
	r.status = &clone
	r.mu.Unlock()
	return nil
}

func (r *MemoryStatusRepository) LoadStatus(_ context.Context) (*models.SchedulerStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.status == nil {
		return nil, nil
	}
	clone := r.status.Clone()
	return &clone, nil
}
