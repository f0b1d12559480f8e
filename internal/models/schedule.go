package models

import "time"

// AccountSyncSchedule is a per-account custom cadence evaluated alongside
// the fixed tiers. Created on first successful authorization if the account
// has none; the scheduler advances LastRunAt/NextRunAt after each run and
// never deletes it.
type AccountSyncSchedule struct {
	ID                 int64      `json:"id"`
	AccountID          string     `json:"account_id"`
	SyncType           string     `json:"sync_type"` // all, campaigns, keywords, performance
	Frequency          string     `json:"frequency"`
	PreferredTime      *string    `json:"preferred_time,omitempty"`        // "HH:MM"
	PreferredDayOfWeek *int       `json:"preferred_day_of_week,omitempty"` // 0-6, Sunday = 0
	IsEnabled          bool       `json:"is_enabled"`
	LastRunAt          *time.Time `json:"last_run_at"`
	NextRunAt          *time.Time `json:"next_run_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Due reports whether the schedule should run at now. A schedule that has
// never been planned runs immediately.
func (s *AccountSyncSchedule) Due(now time.Time) bool {
	if !s.IsEnabled {
		return false
	}
	if s.NextRunAt == nil {
		return true
	}
	return !now.Before(*s.NextRunAt)
}

// DefaultSchedule is the cadence assigned when an account is first authorized.
func DefaultSchedule(accountID string, now time.Time) *AccountSyncSchedule {
	return &AccountSyncSchedule{
		AccountID: accountID,
		SyncType:  ScheduleSyncAll,
		Frequency: FrequencyDaily,
		IsEnabled: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
