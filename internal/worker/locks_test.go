package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutexTryLock(t *testing.T) {
	km := NewKeyedMutex()

	assert.True(t, km.TryLock("a"))
	assert.False(t, km.TryLock("a"), "second acquire coalesces")
	assert.True(t, km.TryLock("b"), "independent keys do not contend")

	km.Unlock("a")
	assert.True(t, km.TryLock("a"))
}

func TestKeyedMutexLockBlocksUntilReleased(t *testing.T) {
	km := NewKeyedMutex()
	require.True(t, km.TryLock("a"))

	acquired := make(chan struct{})
	go func() {
		_ = km.Lock(context.Background(), "a")
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("lock acquired while held")
	case <-time.After(20 * time.Millisecond):
	}

	km.Unlock("a")
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock not acquired after release")
	}
}

func TestKeyedMutexLockCancellation(t *testing.T) {
	km := NewKeyedMutex()
	require.True(t, km.TryLock("a"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := km.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestKeyedMutexUnlockUnheldPanics(t *testing.T) {
	km := NewKeyedMutex()
	assert.Panics(t, func() { km.Unlock("never-locked") })
}

func TestLockKeyNames(t *testing.T) {
	assert.Equal(t, "sync:acct-1:high", SyncKey("acct-1", "high"))
	assert.Equal(t, "account:acct-1", AccountKey("acct-1"))
}
