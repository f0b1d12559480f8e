package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name     string
		schedule AccountSyncSchedule
		expected bool
	}{
		{"never planned runs immediately", AccountSyncSchedule{IsEnabled: true}, true},
		{"next run in the past", AccountSyncSchedule{IsEnabled: true, NextRunAt: &past}, true},
		{"next run exactly now", AccountSyncSchedule{IsEnabled: true, NextRunAt: &now}, true},
		{"next run in the future", AccountSyncSchedule{IsEnabled: true, NextRunAt: &future}, false},
		{"disabled never due", AccountSyncSchedule{IsEnabled: false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.schedule.Due(now))
		})
	}
}

func TestDefaultSchedule(t *testing.T) {
	now := time.Now()
	s := DefaultSchedule("acct-1", now)
	assert.Equal(t, "acct-1", s.AccountID)
	assert.Equal(t, ScheduleSyncAll, s.SyncType)
	assert.Equal(t, FrequencyDaily, s.Frequency)
	assert.True(t, s.IsEnabled)

	_, err := ResolveFrequency(s.Frequency)
	assert.NoError(t, err)
}
