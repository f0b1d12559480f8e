package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"adpulse/internal/amazon"
	"adpulse/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStatus() models.SchedulerStatus {
	now := time.Now().Truncate(time.Second)
	s := models.NewSchedulerStatus()
	s.IsRunning = true
	s.TotalSyncs = 10
	s.SuccessfulSyncs = 8
	s.FailedSyncs = 2
	s.Errors = append(s.Errors, models.SyncError{AccountID: "acct-1", Tier: "high", Message: "boom", OccurredAt: now})
	s.TierLastRun["high"] = &now
	return s
}

func TestRedisStatusRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	repo := NewRedisStatusRepository(client, time.Hour)
	ctx := context.Background()

	t.Run("SaveAndLoad", func(t *testing.T) {
		status := sampleStatus()
		require.NoError(t, repo.SaveStatus(ctx, status))

		got, err := repo.LoadStatus(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.IsRunning)
		assert.Equal(t, int64(10), got.TotalSyncs)
		require.Len(t, got.Errors, 1)
		assert.Equal(t, "boom", got.Errors[0].Message)
		require.NotNil(t, got.TierLastRun["high"])
	})

	t.Run("LoadMissing", func(t *testing.T) {
		s.FlushAll()
		got, err := repo.LoadStatus(ctx)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestMemoryStatusRepository(t *testing.T) {
	repo := NewMemoryStatusRepository()
	ctx := context.Background()

	got, err := repo.LoadStatus(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	status := sampleStatus()
	require.NoError(t, repo.SaveStatus(ctx, status))

	got, err = repo.LoadStatus(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(10), got.TotalSyncs)

	// Readers get copies, not the stored value.
	got.Errors[0].Message = "mutated"
	again, err := repo.LoadStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "boom", again.Errors[0].Message)
}

type failingStatusRepo struct {
	err error
}

func (r *failingStatusRepo) SaveStatus(context.Context, models.SchedulerStatus) error {
	return r.err
}

func (r *failingStatusRepo) LoadStatus(context.Context) (*models.SchedulerStatus, error) {
	return nil, r.err
}

func TestFailoverStatusRepository(t *testing.T) {
	ctx := context.Background()
	primary := &failingStatusRepo{err: errors.New("redis down")}
	fallback := NewMemoryStatusRepository()
	repo := NewFailoverStatusRepository(primary, fallback, zerolog.Nop())

	status := sampleStatus()
	require.NoError(t, repo.SaveStatus(ctx, status), "save succeeds via fallback")

	got, err := repo.LoadStatus(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(10), got.TotalSyncs)
}

func TestFailoverPrefersHealthyPrimary(t *testing.T) {
	ctx := context.Background()
	primary := NewMemoryStatusRepository()
	fallback := NewMemoryStatusRepository()
	repo := NewFailoverStatusRepository(primary, fallback, zerolog.Nop())

	require.NoError(t, repo.SaveStatus(ctx, sampleStatus()))

	// Both repositories observe the write.
	got, err := primary.LoadStatus(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)

	got, err = fallback.LoadStatus(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestCredentialStore(t *testing.T) {
	store := NewCredentialStore()
	ctx := context.Background()

	_, err := store.GetCredentials(ctx, "missing")
	assert.True(t, amazon.IsAuthFailure(err), "missing credentials are an auth failure")

	store.Put(&models.Credentials{AccountID: "acct-1", RefreshToken: "rt"})
	got, err := store.GetCredentials(ctx, "acct-1")
	require.NoError(t, err)
	assert.Equal(t, "rt", got.RefreshToken)

	past := time.Now().Add(-time.Hour)
	store.Put(&models.Credentials{AccountID: "acct-2", RefreshToken: "rt", ExpiresAt: &past})
	_, err = store.GetCredentials(ctx, "acct-2")
	assert.True(t, amazon.IsAuthFailure(err), "expired credentials are an auth failure")
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.yaml")
	content := `accounts:
  - id: acct-1
    name: First Account
    region: NA
    profile_id: "1001"
    is_active: true
    refresh_token: rt-1
  - id: acct-2
    name: Second Account
    region: EU
    profile_id: "1002"
    is_active: false
    refresh_token: rt-2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	accounts, creds, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	require.Len(t, creds, 2)

	assert.Equal(t, "acct-1", accounts[0].ID)
	assert.Equal(t, "First Account", accounts[0].Name)
	assert.True(t, accounts[0].IsActive)
	assert.Equal(t, "acct-1", creds[0].AccountID)
	assert.Equal(t, "rt-1", creds[0].RefreshToken)

	assert.False(t, accounts[1].IsActive)
}

func TestLoadSeedFileMissing(t *testing.T) {
	_, _, err := LoadSeedFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
