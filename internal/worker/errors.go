package worker

import (
	"fmt"

	"adpulse/internal/amazon"
)

func errAuthExpired(accountID string) error {
	return fmt.Errorf("account %s: credentials expired: %w", accountID, amazon.ErrAuthentication)
}

func errUnknownSyncType(syncType string) error {
	return fmt.Errorf("unknown sync type: %s", syncType)
}
