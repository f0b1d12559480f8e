package domain

import (
	"context"
	"time"

	"adpulse/internal/models"
)

// Repository is the storage collaborator for accounts, schedules, keyword
// performance and the append-only audit trail.
type Repository interface {
	ListActiveAccounts(ctx context.Context) ([]*models.Account, error)
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	UpsertAccount(ctx context.Context, account *models.Account) error

	GetSchedules(ctx context.Context, accountID string) ([]*models.AccountSyncSchedule, error)
	ListDueSchedules(ctx context.Context, now time.Time) ([]*models.AccountSyncSchedule, error)
	CreateSchedule(ctx context.Context, schedule *models.AccountSyncSchedule) error
	MarkScheduleRun(ctx context.Context, id int64, lastRun, nextRun time.Time) error

	EntityCount(ctx context.Context, accountID, entityType string) (int64, error)
	SetEntityCount(ctx context.Context, accountID, entityType string, count int64) error

	UpsertKeywordSnapshot(ctx context.Context, snapshot *models.KeywordSnapshot) error
	KeywordSnapshots(ctx context.Context, accountID string, lookbackDays int) ([]*models.KeywordSnapshot, error)

	GetExecutionConfig(ctx context.Context, accountID string) (*models.KeywordExecutionConfig, error)
	SaveExecutionConfig(ctx context.Context, cfg *models.KeywordExecutionConfig) error

	CreateExecution(ctx context.Context, rec *models.ExecutionRecord) error
	FinishExecution(ctx context.Context, rec *models.ExecutionRecord) error
	GetExecution(ctx context.Context, id string) (*models.ExecutionRecord, error)
	CreateExecutionDetail(ctx context.Context, detail *models.ExecutionDetail) error
	GetExecutionDetails(ctx context.Context, executionID string) ([]*models.ExecutionDetail, error)
	CreateRollback(ctx context.Context, rec *models.RollbackRecord) error
	SaveValidationResult(ctx context.Context, result *models.ValidationResult) error
}

// CredentialStore resolves OAuth material per account. Invalid or expired
// credentials fail that account's run, never the scheduler.
type CredentialStore interface {
	GetCredentials(ctx context.Context, accountID string) (*models.Credentials, error)
}

// AdsClient is the remote advertising API. Sync methods pull one data class
// and apply it to local storage, returning the number of affected entities.
// Any call may fail rate-limited (HTTP 429) or with a transport error.
type AdsClient interface {
	SyncCampaignStatuses(ctx context.Context, accountID string) (int, error)
	SyncBudgets(ctx context.Context, accountID string) (int, error)
	SyncAdGroups(ctx context.Context, accountID string) (int, error)
	SyncKeywords(ctx context.Context, accountID string) (int, error)
	SyncTargets(ctx context.Context, accountID string) (int, error)
	FullSync(ctx context.Context, accountID string) (int, error)

	RemoteCount(ctx context.Context, accountID, entityType string) (int64, error)
	PauseKeyword(ctx context.Context, accountID, keywordID string) error
	EnableKeyword(ctx context.Context, accountID, keywordID string) error
}

// EventPublisher fans domain events out to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Notifier delivers operator-facing alerts.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// StatusRepository publishes scheduler status snapshots for the dashboard
// process and reads them back.
type StatusRepository interface {
	SaveStatus(ctx context.Context, status models.SchedulerStatus) error
	LoadStatus(ctx context.Context) (*models.SchedulerStatus, error)
}

// SchedulerCore is the read surface the control API exposes.
type SchedulerCore interface {
	Status() models.SchedulerStatus
}

// ValidationRunner reconciles local counts against the remote API.
type ValidationRunner interface {
	RunValidation(ctx context.Context, accountID string) (*models.ValidationResult, error)
}

// ExecutionRunner runs the keyword decision engine for one account.
type ExecutionRunner interface {
	RunKeywordExecution(ctx context.Context, accountID, executionType string) (*models.ExecutionRecord, error)
}

// RollbackRunner reverts a completed execution.
type RollbackRunner interface {
	Rollback(ctx context.Context, executionID, reason string) (*models.RollbackRecord, error)
}
