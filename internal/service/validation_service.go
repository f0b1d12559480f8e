package service

import (
	"context"
	"time"

	"adpulse/internal/domain"
	"adpulse/internal/events"
	"adpulse/internal/metrics"
	"adpulse/internal/models"
	"adpulse/internal/worker"

	"github.com/rs/zerolog"
)

// ValidationService reconciles local entity counts against the remote API.
// It reports mismatches; repair is a separate operator action.
type ValidationService struct {
	repo     domain.Repository
	client   domain.AdsClient
	eventBus domain.EventPublisher
	retry    worker.RetryPolicy
	logger   zerolog.Logger
}

func NewValidationService(repo domain.Repository, client domain.AdsClient, eventBus domain.EventPublisher, retry worker.RetryPolicy, logger zerolog.Logger) *ValidationService {
	if retry.MaxAttempts == 0 {
		retry = worker.DefaultRetryPolicy()
	}
	return &ValidationService{
		repo:     repo,
		client:   client,
		eventBus: eventBus,
		retry:    retry,
		logger:   logger,
	}
}

func (s *ValidationService) RunValidation(ctx context.Context, accountID string) (*models.ValidationResult, error) {
	if _, err := s.repo.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}

	result := &models.ValidationResult{
		AccountID:   accountID,
		Results:     make([]models.EntityCheck, 0, len(models.EntityTypes)),
		ValidatedAt: time.Now(),
	}

	for _, entityType := range models.EntityTypes {
		check := models.EntityCheck{EntityType: entityType}

		local, err := s.repo.EntityCount(ctx, accountID, entityType)
		if err != nil {
			check.Status = models.CheckStatusError
			check.Error = err.Error()
			result.Results = append(result.Results, check)
			continue
		}
		check.LocalCount = local

		remote, err := worker.WithBackoff(ctx, s.retry, func(ctx context.Context) (int64, error) {
			return s.client.RemoteCount(ctx, accountID, entityType)
		})
		if err != nil {
			// One unreachable entity class does not abort the others.
			check.Status = models.CheckStatusError
			check.Error = err.Error()
			s.logger.Warn().Err(err).
				Str("account_id", accountID).
				Str("entity_type", entityType).
				Msg("remote count unavailable")
			result.Results = append(result.Results, check)
			continue
		}
		check.RemoteCount = remote

		if local == remote {
			check.Status = models.CheckStatusMatch
		} else {
			check.Status = models.CheckStatusMismatch
			metrics.IncValidationMismatch(entityType)
		}
		diff := remote - local
		if diff < 0 {
			diff = -diff
		}
		result.TotalDiff += diff

		result.Results = append(result.Results, check)
	}

	if err := s.repo.SaveValidationResult(ctx, result); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("account_id", accountID).
		Int64("total_diff", result.TotalDiff).
		Int("mismatches", result.MismatchCount()).
		Msg("validation completed")

	_ = s.eventBus.PublishJSON(events.EventValidationCompleted, events.ValidationEventPayload{
		AccountID:  accountID,
		TotalDiff:  result.TotalDiff,
		Mismatches: result.MismatchCount(),
	})

	return result, nil
}
