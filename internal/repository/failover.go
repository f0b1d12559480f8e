package repository

import (
	"context"
	"sync/atomic"
	"time"

	"adpulse/internal/domain"
	"adpulse/internal/models"

	"github.com/rs/zerolog"
)

// FailoverStatusRepository writes through the primary (redis) repository
// and falls back to memory when it is unreachable, retrying the primary
// after a cooldown.
type FailoverStatusRepository struct {
	primary   domain.StatusRepository
	fallback  domain.StatusRepository
	logger    zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverStatusRepository(primary, fallback domain.StatusRepository, logger zerolog.Logger) *FailoverStatusRepository {
	return &FailoverStatusRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverStatusRepository) SaveStatus(ctx context.Context, status models.SchedulerStatus) error {
	if r.primaryUp() {
		if err := r.primary.SaveStatus(ctx, status); err == nil {
			return r.fallback.SaveStatus(ctx, status)
		} else {
			r.markDown(err)
		}
	}
	return r.fallback.SaveStatus(ctx, status)
}

func (r *FailoverStatusRepository) LoadStatus(ctx context.Context) (*models.SchedulerStatus, error) {
	if r.primaryUp() {
		status, err := r.primary.LoadStatus(ctx)
		if err == nil {
			return status, nil
		}
		r.markDown(err)
	}
	return r.fallback.LoadStatus(ctx)
}

// primaryUp reports whether the primary should be tried, allowing a probe
// once per minute while it is marked down.
func (r *FailoverStatusRepository) primaryUp() bool {
	if !r.isDown.Load() {
		return true
	}
	last := time.Unix(r.lastCheck.Load(), 0)
	if time.Since(last) > time.Minute {
		r.isDown.Store(false)
		return true
	}
	return false
}

func (r *FailoverStatusRepository) markDown(err error) {
	r.logger.Warn().Err(err).Msg("primary status repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().Unix())
}
