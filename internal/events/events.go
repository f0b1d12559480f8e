package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventSyncCompleted       = "sync_completed"
	EventSyncFailed          = "sync_failed"
	EventExecutionCompleted  = "execution_completed"
	EventRollbackCompleted   = "rollback_completed"
	EventValidationCompleted = "validation_completed"
)

// SyncEventPayload describes the outcome of one account/tier sync run.
type SyncEventPayload struct {
	AccountID string    `json:"account_id"`
	Tier      string    `json:"tier"`
	SyncType  string    `json:"sync_type,omitempty"`
	Synced    int       `json:"synced"`
	Error     string    `json:"error,omitempty"`
	RanAt     time.Time `json:"ran_at"`
}

// ExecutionEventPayload summarizes a decision-engine run for subscribers.
type ExecutionEventPayload struct {
	ExecutionID   string `json:"execution_id"`
	AccountID     string `json:"account_id"`
	Status        string `json:"status"`
	TotalKeywords int    `json:"total_keywords"`
	PausedCount   int    `json:"paused_count"`
	EnabledCount  int    `json:"enabled_count"`
	SkippedCount  int    `json:"skipped_count"`
}

// RollbackEventPayload summarizes a rollback pass.
type RollbackEventPayload struct {
	RollbackID      string `json:"rollback_id"`
	ExecutionID     string `json:"execution_id"`
	Reason          string `json:"reason"`
	RolledBackCount int    `json:"rolled_back_count"`
	ErrorCount      int    `json:"error_count"`
}

// ValidationEventPayload summarizes a reconciliation pass.
type ValidationEventPayload struct {
	AccountID  string `json:"account_id"`
	TotalDiff  int64  `json:"total_diff"`
	Mismatches int    `json:"mismatches"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
