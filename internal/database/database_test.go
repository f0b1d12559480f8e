package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"adpulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestAccountsCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertAccount(ctx, &models.Account{ID: "acct-1", Name: "One", Region: "NA", IsActive: true}))
	require.NoError(t, db.UpsertAccount(ctx, &models.Account{ID: "acct-2", Name: "Two", Region: "EU", IsActive: false}))

	active, err := db.ListActiveAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "acct-1", active[0].ID)

	// Upsert updates in place.
	require.NoError(t, db.UpsertAccount(ctx, &models.Account{ID: "acct-1", Name: "Renamed", Region: "NA", IsActive: true}))
	got, err := db.GetAccount(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	_, err = db.GetAccount(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScheduleLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	s := &models.AccountSyncSchedule{
		AccountID: "acct-1",
		SyncType:  models.ScheduleSyncKeywords,
		Frequency: models.FrequencyHourly,
		IsEnabled: true,
	}
	require.NoError(t, db.CreateSchedule(ctx, s))
	assert.NotZero(t, s.ID)

	// Never planned counts as due.
	due, err := db.ListDueSchedules(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Nil(t, due[0].NextRunAt)

	now := time.Now()
	require.NoError(t, db.MarkScheduleRun(ctx, s.ID, now, now.Add(time.Hour)))

	due, err = db.ListDueSchedules(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, due)

	due, err = db.ListDueSchedules(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.NotNil(t, due[0].LastRunAt)
	assert.WithinDuration(t, now, *due[0].LastRunAt, time.Second)

	schedules, err := db.GetSchedules(ctx, "acct-1")
	require.NoError(t, err)
	assert.Len(t, schedules, 1)
}

func TestCreateScheduleRejectsUnknownFrequency(t *testing.T) {
	db := newTestDB(t)
	err := db.CreateSchedule(context.Background(), &models.AccountSyncSchedule{
		AccountID: "acct-1",
		SyncType:  models.ScheduleSyncAll,
		Frequency: "every_century",
		IsEnabled: true,
	})
	assert.ErrorIs(t, err, models.ErrUnknownFrequency)

	schedules, err := db.GetSchedules(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Empty(t, schedules, "rejected schedule is not stored")
}

func TestDisabledScheduleNeverDue(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.CreateSchedule(ctx, &models.AccountSyncSchedule{
		AccountID: "acct-1",
		SyncType:  models.ScheduleSyncAll,
		Frequency: models.FrequencyDaily,
		IsEnabled: false,
	}))

	due, err := db.ListDueSchedules(ctx, time.Now().Add(48*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestEntityCounts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	count, err := db.EntityCount(ctx, "acct-1", "ad_groups")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count, "missing row reads as zero")

	require.NoError(t, db.SetEntityCount(ctx, "acct-1", "ad_groups", 12))
	require.NoError(t, db.SetEntityCount(ctx, "acct-1", "ad_groups", 15))

	count, err = db.EntityCount(ctx, "acct-1", "ad_groups")
	require.NoError(t, err)
	assert.Equal(t, int64(15), count)
}

func TestKeywordSnapshotsAndLookback(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now()

	fresh := &models.KeywordSnapshot{
		ID: "kw-fresh", AccountID: "acct-1", KeywordText: "fresh", Status: models.KeywordStatusEnabled,
		WindowStart: now.AddDate(0, 0, -7), WindowEnd: now, SyncedAt: now,
	}
	stale := &models.KeywordSnapshot{
		ID: "kw-stale", AccountID: "acct-1", KeywordText: "stale", Status: models.KeywordStatusEnabled,
		WindowStart: now.AddDate(0, 0, -90), WindowEnd: now.AddDate(0, 0, -60), SyncedAt: now,
	}
	require.NoError(t, db.UpsertKeywordSnapshot(ctx, fresh))
	require.NoError(t, db.UpsertKeywordSnapshot(ctx, stale))

	snapshots, err := db.KeywordSnapshots(ctx, "acct-1", 30)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "kw-fresh", snapshots[0].ID)

	// keywords entity class counts every stored snapshot
	count, err := db.EntityCount(ctx, "acct-1", "keywords")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Upsert keeps one row per (account, keyword).
	fresh.Spend = 99
	require.NoError(t, db.UpsertKeywordSnapshot(ctx, fresh))
	snapshots, err = db.KeywordSnapshots(ctx, "acct-1", 30)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, float64(99), snapshots[0].Spend)
}

func TestKeywordSnapshotNullableACOS(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, db.UpsertKeywordSnapshot(ctx, &models.KeywordSnapshot{
		ID: "kw-1", AccountID: "acct-1", Status: models.KeywordStatusEnabled,
		ACOS: nil, WindowStart: now.AddDate(0, 0, -7), WindowEnd: now, SyncedAt: now,
	}))

	snapshots, err := db.KeywordSnapshots(ctx, "acct-1", 30)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Nil(t, snapshots[0].ACOS)
}

func TestExecutionConfigRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.GetExecutionConfig(ctx, "acct-1")
	assert.ErrorIs(t, err, ErrNotFound)

	cfg := &models.KeywordExecutionConfig{
		AccountID:       "acct-1",
		IsEnabled:       true,
		ExecutionMode:   models.ExecutionModeAuto,
		ACOSThreshold:   30,
		SpendThreshold:  100,
		ClicksThreshold: 50,
		LookbackDays:    30,
	}
	require.NoError(t, db.SaveExecutionConfig(ctx, cfg))

	got, err := db.GetExecutionConfig(ctx, "acct-1")
	require.NoError(t, err)
	assert.True(t, got.IsEnabled)
	assert.Equal(t, models.ExecutionModeAuto, got.ExecutionMode)
	assert.Equal(t, float64(30), got.ACOSThreshold)

	// Save again updates the single row per account.
	cfg.ACOSThreshold = 25
	require.NoError(t, db.SaveExecutionConfig(ctx, cfg))
	got, err = db.GetExecutionConfig(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, float64(25), got.ACOSThreshold)
}

func TestExecutionLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rec := &models.ExecutionRecord{
		ID:            "exec-1",
		AccountID:     "acct-1",
		ConfigID:      1,
		ExecutionType: models.ExecutionTypeScheduled,
		Status:        models.ExecutionStatusRunning,
		StartedAt:     time.Now(),
	}
	require.NoError(t, db.CreateExecution(ctx, rec))

	require.NoError(t, db.CreateExecutionDetail(ctx, &models.ExecutionDetail{
		ExecutionID: rec.ID, KeywordID: "kw-1", ActionType: models.ActionPause,
		Status: models.DetailStatusSuccess, Reason: "acos_above_threshold",
	}))

	now := time.Now()
	rec.Status = models.ExecutionStatusCompleted
	rec.TotalKeywords = 1
	rec.PausedCount = 1
	rec.CompletedAt = &now
	require.NoError(t, db.FinishExecution(ctx, rec))

	got, err := db.GetExecution(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, got.Status)
	assert.Equal(t, 1, got.PausedCount)
	require.NotNil(t, got.CompletedAt)

	// Completed records never transition again.
	err = db.FinishExecution(ctx, rec)
	assert.ErrorIs(t, err, ErrNotFound)

	details, err := db.GetExecutionDetails(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "kw-1", details[0].KeywordID)
}

func TestRollbackAndValidationPersistence(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateRollback(ctx, &models.RollbackRecord{
		ID:              "rb-1",
		ExecutionID:     "exec-1",
		Reason:          "operator request",
		RolledBackCount: 3,
		Errors:          []string{"kw-9: remote boom"},
	}))

	require.NoError(t, db.SaveValidationResult(ctx, &models.ValidationResult{
		AccountID: "acct-1",
		Results: []models.EntityCheck{
			{EntityType: "keywords", LocalCount: 2, RemoteCount: 2, Status: models.CheckStatusMatch},
		},
		TotalDiff:   0,
		ValidatedAt: time.Now(),
	}))
}
