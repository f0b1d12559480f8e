package models

import "time"

// KeywordExecutionConfig holds an account's thresholds for the automatic
// keyword decision engine.
type KeywordExecutionConfig struct {
	ID              int64     `json:"id"`
	AccountID       string    `json:"account_id"`
	IsEnabled       bool      `json:"is_enabled"`
	ExecutionMode   string    `json:"execution_mode"` // auto, manual
	ACOSThreshold   float64   `json:"acos_threshold"`
	SpendThreshold  float64   `json:"spend_threshold"`
	ClicksThreshold float64   `json:"clicks_threshold"`
	LookbackDays    int       `json:"lookback_days"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// KeywordSnapshot is the aggregated performance of one keyword over the
// lookback window. ACOS is nil when the window had no sales.
type KeywordSnapshot struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	KeywordText string    `json:"keyword_text"`
	Status      string    `json:"status"` // enabled, paused
	ACOS        *float64  `json:"acos"`
	Spend       float64   `json:"spend"`
	Clicks      int64     `json:"clicks"`
	Impressions int64     `json:"impressions"`
	Orders      int64     `json:"orders"`
	Sales       float64   `json:"sales"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	SyncedAt    time.Time `json:"synced_at"`
}
