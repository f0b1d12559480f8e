package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"adpulse/internal/config"
	"adpulse/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier sends operator alerts to a fixed chat. Delivery
// failures are logged and swallowed: alerting never fails a sync.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

func NewTelegramNotifier(cfg config.TelegramConfig, logger zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	logger.Info().Str("bot_username", bot.Self.UserName).Msg("telegram notifier ready")
	return &TelegramNotifier{bot: bot, chatID: cfg.ChatID, logger: logger}, nil
}

func (n *TelegramNotifier) Notify(_ context.Context, text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// Subscribe wires the notifier to the failure-shaped domain events.
func (n *TelegramNotifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventSyncFailed, func(e *events.Event) error {
		var p events.SyncEventPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return err
		}
		n.send(fmt.Sprintf("⚠️ Sync failed\nAccount: %s\nTier: %s\nError: %s", p.AccountID, p.Tier, p.Error))
		return nil
	})
	bus.Subscribe(events.EventExecutionCompleted, func(e *events.Event) error {
		var p events.ExecutionEventPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return err
		}
		n.send(fmt.Sprintf("🤖 Keyword execution %s\nAccount: %s\nTotal: %d, paused: %d, enabled: %d, skipped: %d",
			p.Status, p.AccountID, p.TotalKeywords, p.PausedCount, p.EnabledCount, p.SkippedCount))
		return nil
	})
	bus.Subscribe(events.EventRollbackCompleted, func(e *events.Event) error {
		var p events.RollbackEventPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return err
		}
		n.send(fmt.Sprintf("↩️ Rollback of %s\nReverted: %d, errors: %d", p.ExecutionID, p.RolledBackCount, p.ErrorCount))
		return nil
	})
}

func (n *TelegramNotifier) send(text string) {
	if err := n.Notify(context.Background(), text); err != nil {
		n.logger.Warn().Err(err).Msg("telegram notification failed")
	}
}
