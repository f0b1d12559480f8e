package worker

import (
	"context"
	"sync"
	"time"

	"adpulse/internal/domain"
	"adpulse/internal/events"
	"adpulse/internal/metrics"
	"adpulse/internal/models"

	"github.com/rs/zerolog"
)

// Options tunes the sync worker. Zero values fall back to production
// defaults.
type Options struct {
	Tick                  time.Duration
	MaxConcurrentAccounts int
	Retry                 RetryPolicy
}

// SyncWorker is the scheduling core: a single coordinating loop that fires
// tier and custom-schedule syncs on a fixed tick. It is the only writer of
// the scheduler status.
type SyncWorker struct {
	repo       domain.Repository
	client     domain.AdsClient
	creds      domain.CredentialStore
	eventBus   domain.EventPublisher
	statusRepo domain.StatusRepository
	locks      *KeyedMutex
	status     *statusTracker
	retry      RetryPolicy
	tick       time.Duration
	sem        chan struct{}
	logger     zerolog.Logger
}

func NewSyncWorker(
	repo domain.Repository,
	client domain.AdsClient,
	creds domain.CredentialStore,
	eventBus domain.EventPublisher,
	statusRepo domain.StatusRepository,
	locks *KeyedMutex,
	opts Options,
	logger zerolog.Logger,
) *SyncWorker {
	if opts.Tick <= 0 {
		opts.Tick = time.Duration(models.DefaultSchedulerTick) * time.Second
	}
	if opts.MaxConcurrentAccounts <= 0 {
		opts.MaxConcurrentAccounts = models.DefaultMaxConcurrentAccounts
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = DefaultRetryPolicy()
	}
	if locks == nil {
		locks = NewKeyedMutex()
	}

	return &SyncWorker{
		repo:       repo,
		client:     client,
		creds:      creds,
		eventBus:   eventBus,
		statusRepo: statusRepo,
		locks:      locks,
		status:     newStatusTracker(),
		retry:      opts.Retry,
		tick:       opts.Tick,
		sem:        make(chan struct{}, opts.MaxConcurrentAccounts),
		logger:     logger,
	}
}

// Locks exposes the shared keyed mutex so the decision engine and rollback
// serialize against keyword syncs.
func (w *SyncWorker) Locks() *KeyedMutex {
	return w.locks
}

// Status returns a point-in-time snapshot without blocking the loop.
func (w *SyncWorker) Status() models.SchedulerStatus {
	return w.status.snapshot()
}

// Start runs the loop until ctx is done.
func (w *SyncWorker) Start(ctx context.Context) {
	w.logger.Info().Dur("tick", w.tick).Msg("sync worker started")
	w.status.setRunning(true)
	defer func() {
		w.status.setRunning(false)
		w.logger.Info().Msg("sync worker stopped")
	}()

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	w.runTick(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			w.runTick(ctx, now)
		}
	}
}

func (w *SyncWorker) runTick(ctx context.Context, now time.Time) {
	w.status.tickStarted(now, now.Add(w.tick))

	accounts, err := w.repo.ListActiveAccounts(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("list active accounts")
		return
	}

	w.ensureDefaultSchedules(ctx, accounts, now)
	w.runDueTiers(ctx, accounts, now)
	w.runDueSchedules(ctx, now)
	w.publishStatus(ctx)
}

// ensureDefaultSchedules creates the daily catch-all schedule the first
// time an authorized account is seen without one.
func (w *SyncWorker) ensureDefaultSchedules(ctx context.Context, accounts []*models.Account, now time.Time) {
	for _, account := range accounts {
		creds, err := w.creds.GetCredentials(ctx, account.ID)
		if err != nil || creds.Expired(now) {
			continue
		}

		schedules, err := w.repo.GetSchedules(ctx, account.ID)
		if err != nil {
			w.logger.Error().Err(err).Str("account_id", account.ID).Msg("get schedules")
			continue
		}
		if len(schedules) > 0 {
			continue
		}

		if err := w.repo.CreateSchedule(ctx, models.DefaultSchedule(account.ID, now)); err != nil {
			w.logger.Error().Err(err).Str("account_id", account.ID).Msg("create default schedule")
			continue
		}
		w.logger.Info().Str("account_id", account.ID).Msg("default sync schedule created")
	}
}

func (w *SyncWorker) runDueTiers(ctx context.Context, accounts []*models.Account, now time.Time) {
	for _, tier := range models.AllTiers() {
		last := w.status.tierLastRun(tier)
		if last != nil && now.Sub(*last) < tier.Interval() {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		w.status.tierStarted(tier)
		w.logger.Info().Str("tier", tier.String()).Int("accounts", len(accounts)).Msg("tier due, dispatching")

		var wg sync.WaitGroup
		for _, account := range accounts {
			wg.Add(1)
			w.sem <- struct{}{}
			go func(account *models.Account) {
				defer wg.Done()
				defer func() { <-w.sem }()
				w.runTierForAccount(ctx, tier, account)
			}(account)
		}
		wg.Wait()

		w.status.tierFinished(tier, now)
	}
}

func (w *SyncWorker) runTierForAccount(ctx context.Context, tier models.SyncTier, account *models.Account) {
	key := SyncKey(account.ID, tier.String())
	if !w.locks.TryLock(key) {
		// Run still active from a previous tick; this due check coalesces.
		return
	}
	defer w.locks.Unlock(key)

	if tier.HasKeywordData() {
		// Do not read keyword state while the decision engine mutates it.
		accountKey := AccountKey(account.ID)
		if !w.locks.TryLock(accountKey) {
			return
		}
		defer w.locks.Unlock(accountKey)
	}

	w.status.recordAttempt()

	creds, err := w.creds.GetCredentials(ctx, account.ID)
	if err == nil && creds.Expired(time.Now()) {
		err = errAuthExpired(account.ID)
	}
	if err != nil {
		w.recordTierFailure(tier, account.ID, "", err)
		return
	}

	var failed bool
	synced := 0
	for _, syncType := range tier.SyncTypes() {
		n, err := w.dispatch(ctx, syncType, account.ID)
		if err != nil {
			if !failed {
				w.recordTierFailure(tier, account.ID, syncType, err)
			} else {
				w.status.appendError(models.SyncError{
					AccountID:  account.ID,
					Tier:       tier.String(),
					SyncType:   syncType,
					Message:    err.Error(),
					OccurredAt: time.Now(),
				})
			}
			failed = true
			continue
		}
		synced += n
	}
	if failed {
		return
	}

	w.status.recordSuccess()
	metrics.IncSyncRun(tier.String(), "success")
	_ = w.eventBus.PublishJSON(events.EventSyncCompleted, events.SyncEventPayload{
		AccountID: account.ID,
		Tier:      tier.String(),
		Synced:    synced,
		RanAt:     time.Now(),
	})
}

func (w *SyncWorker) recordTierFailure(tier models.SyncTier, accountID, syncType string, err error) {
	w.status.recordFailure(models.SyncError{
		AccountID:  accountID,
		Tier:       tier.String(),
		SyncType:   syncType,
		Message:    err.Error(),
		OccurredAt: time.Now(),
	})
	metrics.IncSyncRun(tier.String(), "failed")
	metrics.IncSchedulerError()

	w.logger.Error().Err(err).
		Str("account_id", accountID).
		Str("tier", tier.String()).
		Str("sync_type", syncType).
		Msg("tier sync failed")

	_ = w.eventBus.PublishJSON(events.EventSyncFailed, events.SyncEventPayload{
		AccountID: accountID,
		Tier:      tier.String(),
		SyncType:  syncType,
		Error:     err.Error(),
		RanAt:     time.Now(),
	})
}

// dispatch maps a data class to its remote sync, wrapped in the backoff
// executor. These are the only suspension points of a tier run.
func (w *SyncWorker) dispatch(ctx context.Context, syncType, accountID string) (int, error) {
	op := func(fn func(context.Context, string) (int, error)) (int, error) {
		return WithBackoff(ctx, w.retry, func(ctx context.Context) (int, error) {
			return fn(ctx, accountID)
		})
	}

	switch syncType {
	case models.SyncCampaignsStatus:
		return op(w.client.SyncCampaignStatuses)
	case models.SyncBudgets:
		return op(w.client.SyncBudgets)
	case models.SyncAdGroups:
		return op(w.client.SyncAdGroups)
	case models.SyncKeywords:
		return op(w.client.SyncKeywords)
	case models.SyncTargets:
		return op(w.client.SyncTargets)
	case models.SyncFull:
		return op(w.client.FullSync)
	default:
		return 0, errUnknownSyncType(syncType)
	}
}

// runDueSchedules evaluates per-account custom cadences with the frequency
// resolver instead of a fixed tier interval.
func (w *SyncWorker) runDueSchedules(ctx context.Context, now time.Time) {
	schedules, err := w.repo.ListDueSchedules(ctx, now)
	if err != nil {
		w.logger.Error().Err(err).Msg("list due schedules")
		return
	}

	for _, schedule := range schedules {
		interval, err := models.ResolveFrequency(schedule.Frequency)
		if err != nil {
			// Creation-time validation should make this unreachable.
			w.logger.Error().Err(err).Int64("schedule_id", schedule.ID).Msg("schedule has unknown frequency")
			continue
		}
		if ctx.Err() != nil {
			return
		}
		w.runSchedule(ctx, schedule, now, interval)
	}
}

func (w *SyncWorker) runSchedule(ctx context.Context, schedule *models.AccountSyncSchedule, now time.Time, interval time.Duration) {
	key := SyncKey(schedule.AccountID, "custom:"+schedule.SyncType)
	if !w.locks.TryLock(key) {
		return
	}
	defer w.locks.Unlock(key)

	touchesKeywords := schedule.SyncType == models.ScheduleSyncAll ||
		schedule.SyncType == models.ScheduleSyncKeywords ||
		schedule.SyncType == models.ScheduleSyncPerformance
	if touchesKeywords {
		accountKey := AccountKey(schedule.AccountID)
		if !w.locks.TryLock(accountKey) {
			return
		}
		defer w.locks.Unlock(accountKey)
	}

	w.status.recordAttempt()

	var failed error
	for _, syncType := range scheduleSyncTypes(schedule.SyncType) {
		if _, err := w.dispatch(ctx, syncType, schedule.AccountID); err != nil {
			failed = err
			w.status.recordFailure(models.SyncError{
				AccountID:  schedule.AccountID,
				Tier:       "custom",
				SyncType:   syncType,
				Message:    err.Error(),
				OccurredAt: time.Now(),
			})
			metrics.IncSchedulerError()
			break
		}
	}
	if failed == nil {
		w.status.recordSuccess()
	}

	if err := w.repo.MarkScheduleRun(ctx, schedule.ID, now, now.Add(interval)); err != nil {
		w.logger.Error().Err(err).Int64("schedule_id", schedule.ID).Msg("mark schedule run")
	}
}

// scheduleSyncTypes maps a custom schedule's scope to tier data classes.
func scheduleSyncTypes(syncType string) []string {
	switch syncType {
	case models.ScheduleSyncCampaigns:
		return []string{models.SyncCampaignsStatus, models.SyncBudgets}
	case models.ScheduleSyncKeywords:
		return []string{models.SyncKeywords}
	case models.ScheduleSyncPerformance:
		return []string{models.SyncKeywords}
	default: // all
		return []string{models.SyncFull}
	}
}

func (w *SyncWorker) publishStatus(ctx context.Context) {
	if w.statusRepo == nil {
		return
	}
	if err := w.statusRepo.SaveStatus(ctx, w.status.snapshot()); err != nil {
		w.logger.Warn().Err(err).Msg("publish scheduler status")
	}
}
