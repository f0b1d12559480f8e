package worker

import (
	"context"
	"sync"
)

// KeyedMutex serializes work per string key. Sync runs use it keyed by
// (account, tier); the decision engine and rollback use the account key so
// at most one keyword-mutating operation runs per account at a time.
type KeyedMutex struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{slots: make(map[string]chan struct{})}
}

func (k *KeyedMutex) slot(key string) chan struct{} {
	k.mu.Lock()
	defer k.mu.Unlock()
	ch, ok := k.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		k.slots[key] = ch
	}
	return ch
}

// TryLock acquires the key without blocking. Overlapping due-ness for a
// running key coalesces into a no-op via the false return.
func (k *KeyedMutex) TryLock(key string) bool {
	select {
	case k.slot(key) <- struct{}{}:
		return true
	default:
		return false
	}
}

// Lock blocks until the key is acquired or ctx is done.
func (k *KeyedMutex) Lock(ctx context.Context, key string) error {
	select {
	case k.slot(key) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unlock releases a held key. Unlocking a key that is not held panics,
// same as sync.Mutex.
func (k *KeyedMutex) Unlock(key string) {
	select {
	case <-k.slot(key):
	default:
		panic("worker: unlock of unlocked key " + key)
	}
}

// SyncKey names the mutual-exclusion slot for one account's tier run.
func SyncKey(accountID, tier string) string {
	return "sync:" + accountID + ":" + tier
}

// AccountKey names the slot shared by keyword syncs, the decision engine
// and rollback for one account.
func AccountKey(accountID string) string {
	return "account:" + accountID
}
