package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adpulse/internal/domain"
	"adpulse/internal/events"
	"adpulse/internal/metrics"
	"adpulse/internal/models"
	"adpulse/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrExecutionDisabled rejects engine runs for accounts that opted out.
var ErrExecutionDisabled = errors.New("keyword execution is disabled for account")

// Decision is the outcome of evaluating one keyword against thresholds.
// An empty Action means skip: no remote call is made.
type Decision struct {
	Action string
	Reason string
}

// DecideKeywordAction applies the account's thresholds to one snapshot.
// Pure function, no suspension.
func DecideKeywordAction(snapshot *models.KeywordSnapshot, cfg *models.KeywordExecutionConfig) Decision {
	switch snapshot.Status {
	case models.KeywordStatusEnabled:
		if snapshot.ACOS != nil && *snapshot.ACOS > cfg.ACOSThreshold {
			return Decision{Action: models.ActionPause, Reason: "acos_above_threshold"}
		}
		if snapshot.Sales == 0 && snapshot.Spend > cfg.SpendThreshold {
			return Decision{Action: models.ActionPause, Reason: "spend_without_sales"}
		}
		if snapshot.Sales == 0 && float64(snapshot.Clicks) > cfg.ClicksThreshold {
			return Decision{Action: models.ActionPause, Reason: "clicks_without_sales"}
		}
	case models.KeywordStatusPaused:
		if snapshot.Sales > 0 && snapshot.ACOS != nil && *snapshot.ACOS < cfg.ACOSThreshold {
			return Decision{Action: models.ActionEnable, Reason: "performing_below_threshold"}
		}
	}
	return Decision{Reason: "no_rule_matched"}
}

// ExecutionService is the keyword auto-execution engine: it evaluates
// snapshots against thresholds, mutates remote keyword state and commits a
// reversible audit record per run.
type ExecutionService struct {
	repo     domain.Repository
	client   domain.AdsClient
	eventBus domain.EventPublisher
	locks    *worker.KeyedMutex
	retry    worker.RetryPolicy
	logger   zerolog.Logger
}

func NewExecutionService(repo domain.Repository, client domain.AdsClient, eventBus domain.EventPublisher, locks *worker.KeyedMutex, retry worker.RetryPolicy, logger zerolog.Logger) *ExecutionService {
	if retry.MaxAttempts == 0 {
		retry = worker.DefaultRetryPolicy()
	}
	if locks == nil {
		locks = worker.NewKeyedMutex()
	}
	return &ExecutionService{
		repo:     repo,
		client:   client,
		eventBus: eventBus,
		locks:    locks,
		retry:    retry,
		logger:   logger,
	}
}

func (s *ExecutionService) RunKeywordExecution(ctx context.Context, accountID, executionType string) (*models.ExecutionRecord, error) {
	cfg, err := s.repo.GetExecutionConfig(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !cfg.IsEnabled {
		return nil, fmt.Errorf("account %s: %w", accountID, ErrExecutionDisabled)
	}
	if executionType == "" {
		executionType = models.ExecutionTypeManual
	}

	// Serialize against keyword syncs and rollbacks for this account.
	accountKey := worker.AccountKey(accountID)
	if err := s.locks.Lock(ctx, accountKey); err != nil {
		return nil, err
	}
	defer s.locks.Unlock(accountKey)

	snapshots, err := s.repo.KeywordSnapshots(ctx, accountID, cfg.LookbackDays)
	if err != nil {
		return nil, err
	}

	rec := &models.ExecutionRecord{
		ID:            uuid.NewString(),
		AccountID:     accountID,
		ConfigID:      cfg.ID,
		ExecutionType: executionType,
		TotalKeywords: len(snapshots),
		Status:        models.ExecutionStatusRunning,
		StartedAt:     time.Now(),
	}
	if err := s.repo.CreateExecution(ctx, rec); err != nil {
		return nil, err
	}

	dryRun := cfg.ExecutionMode == models.ExecutionModeManual
	attempted, succeeded := 0, 0

	for _, snapshot := range snapshots {
		decision := DecideKeywordAction(snapshot, cfg)
		detail := &models.ExecutionDetail{
			ExecutionID: rec.ID,
			KeywordID:   snapshot.ID,
			KeywordText: snapshot.KeywordText,
			ActionType:  decision.Action,
			Reason:      decision.Reason,
		}

		switch {
		case decision.Action == "":
			detail.Status = models.DetailStatusSkipped
			rec.SkippedCount++
		case dryRun:
			// Manual mode computes decisions for operator review only.
			detail.Status = models.DetailStatusSkipped
			detail.Reason = decision.Reason + " (dry_run)"
			rec.SkippedCount++
		default:
			attempted++
			if err := s.execute(ctx, accountID, snapshot.ID, decision.Action); err != nil {
				detail.Status = models.DetailStatusFailed
				detail.Error = err.Error()
				// A keyword we failed to act on stays untouched.
				rec.SkippedCount++
				metrics.IncKeywordAction(decision.Action, "failed")
				s.logger.Warn().Err(err).
					Str("account_id", accountID).
					Str("keyword_id", snapshot.ID).
					Str("action", decision.Action).
					Msg("keyword action failed")
			} else {
				detail.Status = models.DetailStatusSuccess
				succeeded++
				if decision.Action == models.ActionPause {
					rec.PausedCount++
				} else {
					rec.EnabledCount++
				}
				metrics.IncKeywordAction(decision.Action, "success")
			}
		}

		if err := s.repo.CreateExecutionDetail(ctx, detail); err != nil {
			s.logger.Error().Err(err).Str("execution_id", rec.ID).Msg("persist execution detail")
		}
	}

	rec.Status = models.ExecutionStatusCompleted
	if attempted > 0 && succeeded == 0 {
		rec.Status = models.ExecutionStatusFailed
	}
	now := time.Now()
	rec.CompletedAt = &now
	if err := s.repo.FinishExecution(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("execution_id", rec.ID).
		Str("account_id", accountID).
		Str("status", rec.Status).
		Int("total", rec.TotalKeywords).
		Int("paused", rec.PausedCount).
		Int("enabled", rec.EnabledCount).
		Int("skipped", rec.SkippedCount).
		Bool("dry_run", dryRun).
		Msg("keyword execution finished")

	_ = s.eventBus.PublishJSON(events.EventExecutionCompleted, events.ExecutionEventPayload{
		ExecutionID:   rec.ID,
		AccountID:     accountID,
		Status:        rec.Status,
		TotalKeywords: rec.TotalKeywords,
		PausedCount:   rec.PausedCount,
		EnabledCount:  rec.EnabledCount,
		SkippedCount:  rec.SkippedCount,
	})

	return rec, nil
}

func (s *ExecutionService) execute(ctx context.Context, accountID, keywordID, action string) error {
	return worker.Retry(ctx, s.retry, func(ctx context.Context) error {
		if action == models.ActionPause {
			return s.client.PauseKeyword(ctx, accountID, keywordID)
		}
		return s.client.EnableKeyword(ctx, accountID, keywordID)
	})
}
