package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishJSONDeliversToSubscribers(t *testing.T) {
	bus := NewEventBus()

	var got []SyncEventPayload
	bus.Subscribe(EventSyncCompleted, func(e *Event) error {
		var p SyncEventPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return err
		}
		got = append(got, p)
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventSyncCompleted, SyncEventPayload{
		AccountID: "acct-1", Tier: "high", Synced: 12,
	}))

	require.Len(t, got, 1)
	assert.Equal(t, "acct-1", got[0].AccountID)
	assert.Equal(t, 12, got[0].Synced)
}

func TestPublishOnlyMatchingType(t *testing.T) {
	bus := NewEventBus()

	completed := 0
	failed := 0
	bus.Subscribe(EventSyncCompleted, func(*Event) error { completed++; return nil })
	bus.Subscribe(EventSyncFailed, func(*Event) error { failed++; return nil })

	require.NoError(t, bus.PublishJSON(EventSyncFailed, SyncEventPayload{AccountID: "acct-1"}))

	assert.Equal(t, 0, completed)
	assert.Equal(t, 1, failed)
}

func TestPublishContinuesPastHandlerErrors(t *testing.T) {
	bus := NewEventBus()

	called := false
	bus.Subscribe(EventExecutionCompleted, func(*Event) error { return errors.New("handler boom") })
	bus.Subscribe(EventExecutionCompleted, func(*Event) error { called = true; return nil })

	require.NoError(t, bus.PublishJSON(EventExecutionCompleted, ExecutionEventPayload{ExecutionID: "exec-1"}))
	assert.True(t, called)
}

func TestNilBusIsNoop(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventSyncCompleted, SyncEventPayload{}))
}
