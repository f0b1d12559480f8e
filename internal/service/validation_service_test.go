package service

import (
	"context"
	"errors"
	"testing"

	"adpulse/internal/database"
	"adpulse/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidationService(db *database.DB, client *stubAdsClient, bus *recordingBus) *ValidationService {
	return NewValidationService(db, client, bus, fastRetry(), zerolog.Nop())
}

func TestRunValidationClassifiesEntities(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedAccount(t, db, "acct-1")

	require.NoError(t, db.SetEntityCount(ctx, "acct-1", "sp_campaigns", 10))
	require.NoError(t, db.SetEntityCount(ctx, "acct-1", "sb_campaigns", 5))
	require.NoError(t, db.SetEntityCount(ctx, "acct-1", "sd_campaigns", 0))
	require.NoError(t, db.SetEntityCount(ctx, "acct-1", "ad_groups", 40))
	require.NoError(t, db.SetEntityCount(ctx, "acct-1", "product_targets", 7))
	seedSnapshot(t, db, &models.KeywordSnapshot{ID: "kw-1", AccountID: "acct-1", Status: models.KeywordStatusEnabled})
	seedSnapshot(t, db, &models.KeywordSnapshot{ID: "kw-2", AccountID: "acct-1", Status: models.KeywordStatusEnabled})

	client := newStubAdsClient()
	client.remoteCounts["sp_campaigns"] = 10 // match
	client.remoteCounts["sb_campaigns"] = 8  // mismatch, diff 3
	client.remoteCounts["sd_campaigns"] = 0  // match
	client.remoteCounts["ad_groups"] = 35    // mismatch, diff 5
	client.remoteCounts["keywords"] = 2      // match, counted from snapshots
	client.remoteCounts["product_targets"] = 7

	bus := &recordingBus{}
	svc := newValidationService(db, client, bus)

	result, err := svc.RunValidation(context.Background(), "acct-1")
	require.NoError(t, err)

	require.Len(t, result.Results, len(models.EntityTypes))
	byEntity := map[string]models.EntityCheck{}
	for _, check := range result.Results {
		byEntity[check.EntityType] = check
	}

	assert.Equal(t, models.CheckStatusMatch, byEntity["sp_campaigns"].Status)
	assert.Equal(t, models.CheckStatusMismatch, byEntity["sb_campaigns"].Status)
	assert.Equal(t, models.CheckStatusMatch, byEntity["sd_campaigns"].Status)
	assert.Equal(t, models.CheckStatusMismatch, byEntity["ad_groups"].Status)
	assert.Equal(t, models.CheckStatusMatch, byEntity["keywords"].Status)
	assert.Equal(t, int64(2), byEntity["keywords"].LocalCount)
	assert.Equal(t, models.CheckStatusMatch, byEntity["product_targets"].Status)

	assert.Equal(t, int64(8), result.TotalDiff)
	assert.Equal(t, 2, result.MismatchCount())
	assert.Contains(t, bus.events, "validation_completed")
}

func TestRunValidationContinuesPastRemoteErrors(t *testing.T) {
	db := testDB(t)
	seedAccount(t, db, "acct-1")

	client := newStubAdsClient()
	client.remoteErr["sp_campaigns"] = errors.New("remote down")

	svc := newValidationService(db, client, &recordingBus{})
	result, err := svc.RunValidation(context.Background(), "acct-1")
	require.NoError(t, err)

	require.Len(t, result.Results, len(models.EntityTypes))
	assert.Equal(t, models.CheckStatusError, result.Results[0].Status)
	assert.NotEmpty(t, result.Results[0].Error)
	// Remaining classes are still checked.
	for _, check := range result.Results[1:] {
		assert.Equal(t, models.CheckStatusMatch, check.Status)
	}
}

func TestRunValidationUnknownAccount(t *testing.T) {
	db := testDB(t)
	svc := newValidationService(db, newStubAdsClient(), &recordingBus{})
	_, err := svc.RunValidation(context.Background(), "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)
}
