package worker

import (
	"sync"
	"time"

	"adpulse/internal/models"
)

// statusTracker owns the process-wide scheduler status. The sync worker is
// the only writer; readers get deep copies.
type statusTracker struct {
	mu sync.Mutex
	s  models.SchedulerStatus
}

func newStatusTracker() *statusTracker {
	return &statusTracker{s: models.NewSchedulerStatus()}
}

func (t *statusTracker) setRunning(running bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.IsRunning = running
}

func (t *statusTracker) tickStarted(now, next time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.LastRunTime = &now
	t.s.NextRunTime = &next
}

func (t *statusTracker) tierStarted(tier models.SyncTier) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.CurrentTier = tier.String()
}

func (t *statusTracker) tierFinished(tier models.SyncTier, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.TierLastRun[tier.String()] = &now
	if t.s.CurrentTier == tier.String() {
		t.s.CurrentTier = ""
	}
}

func (t *statusTracker) recordAttempt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.TotalSyncs++
}

func (t *statusTracker) recordSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.SuccessfulSyncs++
}

func (t *statusTracker) recordFailure(e models.SyncError) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.FailedSyncs++
	t.appendErrorLocked(e)
}

// appendError adds to the bounded error ring without counting a failed run.
func (t *statusTracker) appendError(e models.SyncError) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.appendErrorLocked(e)
}

func (t *statusTracker) appendErrorLocked(e models.SyncError) {
	t.s.Errors = append(t.s.Errors, e)
	if len(t.s.Errors) > models.MaxStatusErrors {
		t.s.Errors = t.s.Errors[len(t.s.Errors)-models.MaxStatusErrors:]
	}
}

func (t *statusTracker) tierLastRun(tier models.SyncTier) *time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	ts := t.s.TierLastRun[tier.String()]
	if ts == nil {
		return nil
	}
	v := *ts
	return &v
}

func (t *statusTracker) snapshot() models.SchedulerStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.s.Clone()
}
