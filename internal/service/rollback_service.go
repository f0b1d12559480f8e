package service

import (
	"context"
	"errors"
	"fmt"

	"adpulse/internal/domain"
	"adpulse/internal/events"
	"adpulse/internal/metrics"
	"adpulse/internal/models"
	"adpulse/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrRollbackIneligible rejects rollbacks of executions that did not
// complete or made no changes. Checked before any remote call.
var ErrRollbackIneligible = errors.New("execution is not eligible for rollback")

// RollbackService reverts the keyword state changes of a completed
// execution by issuing the inverse remote actions.
type RollbackService struct {
	repo     domain.Repository
	client   domain.AdsClient
	eventBus domain.EventPublisher
	locks    *worker.KeyedMutex
	retry    worker.RetryPolicy
	logger   zerolog.Logger
}

func NewRollbackService(repo domain.Repository, client domain.AdsClient, eventBus domain.EventPublisher, locks *worker.KeyedMutex, retry worker.RetryPolicy, logger zerolog.Logger) *RollbackService {
	if retry.MaxAttempts == 0 {
		retry = worker.DefaultRetryPolicy()
	}
	if locks == nil {
		locks = worker.NewKeyedMutex()
	}
	return &RollbackService{
		repo:     repo,
		client:   client,
		eventBus: eventBus,
		locks:    locks,
		retry:    retry,
		logger:   logger,
	}
}

func (s *RollbackService) Rollback(ctx context.Context, executionID, reason string) (*models.RollbackRecord, error) {
	execution, err := s.repo.GetExecution(ctx, executionID)
	if err != nil {
		return nil, err
	}
	if execution.Status != models.ExecutionStatusCompleted {
		return nil, fmt.Errorf("execution %s has status %s: %w", executionID, execution.Status, ErrRollbackIneligible)
	}
	if !execution.ChangedAnything() {
		return nil, fmt.Errorf("execution %s made no changes: %w", executionID, ErrRollbackIneligible)
	}

	accountKey := worker.AccountKey(execution.AccountID)
	if err := s.locks.Lock(ctx, accountKey); err != nil {
		return nil, err
	}
	defer s.locks.Unlock(accountKey)

	details, err := s.repo.GetExecutionDetails(ctx, executionID)
	if err != nil {
		return nil, err
	}

	rec := &models.RollbackRecord{
		ID:          uuid.NewString(),
		ExecutionID: executionID,
		Reason:      reason,
		Errors:      []string{},
	}

	for _, detail := range details {
		if detail.Status != models.DetailStatusSuccess {
			continue
		}

		if err := s.invert(ctx, execution.AccountID, detail); err != nil {
			// Keep going; a partial rollback is still worth recording.
			rec.Errors = append(rec.Errors, fmt.Sprintf("keyword %s: %v", detail.KeywordID, err))
			s.logger.Warn().Err(err).
				Str("execution_id", executionID).
				Str("keyword_id", detail.KeywordID).
				Msg("rollback action failed")
			continue
		}
		rec.RolledBackCount++
	}

	if err := s.repo.CreateRollback(ctx, rec); err != nil {
		return nil, err
	}
	metrics.IncRollback()

	s.logger.Info().
		Str("rollback_id", rec.ID).
		Str("execution_id", executionID).
		Int("rolled_back", rec.RolledBackCount).
		Int("errors", len(rec.Errors)).
		Msg("rollback finished")

	_ = s.eventBus.PublishJSON(events.EventRollbackCompleted, events.RollbackEventPayload{
		RollbackID:      rec.ID,
		ExecutionID:     executionID,
		Reason:          reason,
		RolledBackCount: rec.RolledBackCount,
		ErrorCount:      len(rec.Errors),
	})

	return rec, nil
}

// invert issues the opposite of the recorded action: a pause becomes an
// enable and vice versa.
func (s *RollbackService) invert(ctx context.Context, accountID string, detail *models.ExecutionDetail) error {
	return worker.Retry(ctx, s.retry, func(ctx context.Context) error {
		if detail.ActionType == models.ActionPause {
			return s.client.EnableKeyword(ctx, accountID, detail.KeywordID)
		}
		return s.client.PauseKeyword(ctx, accountID, detail.KeywordID)
	})
}
