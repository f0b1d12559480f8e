package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"adpulse/internal/database"
	"adpulse/internal/models"
	"adpulse/internal/worker"

	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedAccount(t *testing.T, db *database.DB, id string) {
	t.Helper()
	err := db.UpsertAccount(context.Background(), &models.Account{
		ID:       id,
		Name:     "Test Account",
		Region:   "NA",
		IsActive: true,
	})
	require.NoError(t, err)
}

func seedConfig(t *testing.T, db *database.DB, cfg *models.KeywordExecutionConfig) *models.KeywordExecutionConfig {
	t.Helper()
	require.NoError(t, db.SaveExecutionConfig(context.Background(), cfg))
	saved, err := db.GetExecutionConfig(context.Background(), cfg.AccountID)
	require.NoError(t, err)
	return saved
}

func seedSnapshot(t *testing.T, db *database.DB, s *models.KeywordSnapshot) {
	t.Helper()
	now := time.Now()
	if s.WindowStart.IsZero() {
		s.WindowStart = now.AddDate(0, 0, -7)
	}
	if s.WindowEnd.IsZero() {
		s.WindowEnd = now
	}
	if s.SyncedAt.IsZero() {
		s.SyncedAt = now
	}
	require.NoError(t, db.UpsertKeywordSnapshot(context.Background(), s))
}

// stubAdsClient records keyword state changes and serves canned remote
// counts. Per-keyword and per-entity failures are injectable.
type stubAdsClient struct {
	mu           sync.Mutex
	paused       []string
	enabled      []string
	actionErr    map[string]error
	remoteCounts map[string]int64
	remoteErr    map[string]error
}

func newStubAdsClient() *stubAdsClient {
	return &stubAdsClient{
		actionErr:    make(map[string]error),
		remoteCounts: make(map[string]int64),
		remoteErr:    make(map[string]error),
	}
}

func (c *stubAdsClient) SyncCampaignStatuses(context.Context, string) (int, error) { return 0, nil }
func (c *stubAdsClient) SyncBudgets(context.Context, string) (int, error)          { return 0, nil }
func (c *stubAdsClient) SyncAdGroups(context.Context, string) (int, error)         { return 0, nil }
func (c *stubAdsClient) SyncKeywords(context.Context, string) (int, error)         { return 0, nil }
func (c *stubAdsClient) SyncTargets(context.Context, string) (int, error)          { return 0, nil }
func (c *stubAdsClient) FullSync(context.Context, string) (int, error)             { return 0, nil }

func (c *stubAdsClient) RemoteCount(_ context.Context, _ string, entityType string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.remoteErr[entityType]; err != nil {
		return 0, err
	}
	return c.remoteCounts[entityType], nil
}

func (c *stubAdsClient) PauseKeyword(_ context.Context, _ string, keywordID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.actionErr[keywordID]; err != nil {
		return err
	}
	c.paused = append(c.paused, keywordID)
	return nil
}

func (c *stubAdsClient) EnableKeyword(_ context.Context, _ string, keywordID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.actionErr[keywordID]; err != nil {
		return err
	}
	c.enabled = append(c.enabled, keywordID)
	return nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []string
}

func (b *recordingBus) PublishJSON(eventType string, _ interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, eventType)
	return nil
}

func fastRetry() worker.RetryPolicy {
	return worker.RetryPolicy{
		MaxAttempts:   2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
		BackoffFactor: 2,
	}
}
