package models

import "time"

// SyncError is one bounded entry in the scheduler's recent-failure ring.
type SyncError struct {
	AccountID  string    `json:"account_id"`
	Tier       string    `json:"tier"`
	SyncType   string    `json:"sync_type,omitempty"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SchedulerStatus is a point-in-time snapshot of the scheduler process.
// The scheduler core is the only writer; everyone else reads copies.
type SchedulerStatus struct {
	IsRunning       bool                  `json:"is_running"`
	LastRunTime     *time.Time            `json:"last_run_time"`
	NextRunTime     *time.Time            `json:"next_run_time"`
	TotalSyncs      int64                 `json:"total_syncs"`
	SuccessfulSyncs int64                 `json:"successful_syncs"`
	FailedSyncs     int64                 `json:"failed_syncs"`
	Errors          []SyncError           `json:"errors"`
	CurrentTier     string                `json:"current_tier"`
	TierLastRun     map[string]*time.Time `json:"tier_last_run"`
}

// NewSchedulerStatus returns the zeroed status used at process start:
// counters at zero and every tier marked as never run.
func NewSchedulerStatus() SchedulerStatus {
	tiers := make(map[string]*time.Time, len(AllTiers()))
	for _, t := range AllTiers() {
		tiers[t.String()] = nil
	}
	return SchedulerStatus{
		Errors:      []SyncError{},
		TierLastRun: tiers,
	}
}

// Clone returns a deep copy safe to hand to readers.
func (s SchedulerStatus) Clone() SchedulerStatus {
	out := s
	out.Errors = append([]SyncError(nil), s.Errors...)
	out.TierLastRun = make(map[string]*time.Time, len(s.TierLastRun))
	for tier, ts := range s.TierLastRun {
		if ts == nil {
			out.TierLastRun[tier] = nil
			continue
		}
		v := *ts
		out.TierLastRun[tier] = &v
	}
	return out
}
