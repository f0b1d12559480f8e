package models

import "time"

// ExecutionRecord is the audit header of one decision-engine run. Once
// completed, PausedCount + EnabledCount + SkippedCount == TotalKeywords
// and the record is never mutated again.
type ExecutionRecord struct {
	ID            string     `json:"id"`
	AccountID     string     `json:"account_id"`
	ConfigID      int64      `json:"config_id"`
	ExecutionType string     `json:"execution_type"` // scheduled, manual
	TotalKeywords int        `json:"total_keywords"`
	PausedCount   int        `json:"paused_count"`
	EnabledCount  int        `json:"enabled_count"`
	SkippedCount  int        `json:"skipped_count"`
	Status        string     `json:"status"` // running, completed, failed
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at"`
}

// ChangedAnything reports whether the run mutated remote keyword state.
func (r *ExecutionRecord) ChangedAnything() bool {
	return r.PausedCount > 0 || r.EnabledCount > 0
}

// ExecutionDetail is one keyword decision within an execution.
type ExecutionDetail struct {
	ID          int64     `json:"id"`
	ExecutionID string    `json:"execution_id"`
	KeywordID   string    `json:"keyword_id"`
	KeywordText string    `json:"keyword_text"`
	ActionType  string    `json:"action_type"` // pause, enable
	Status      string    `json:"status"`      // success, failed, skipped
	Reason      string    `json:"reason"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RollbackRecord documents the reversal of a completed execution. Rollback
// appends new history, it never edits the execution it reverts.
type RollbackRecord struct {
	ID              string    `json:"id"`
	ExecutionID     string    `json:"execution_id"`
	Reason          string    `json:"reason"`
	RolledBackCount int       `json:"rolled_back_count"`
	Errors          []string  `json:"errors"`
	CreatedAt       time.Time `json:"created_at"`
}
