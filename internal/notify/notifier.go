package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dompet/internal/core"
)

// Router sends notifications straight to the chat channels. Bill reminders
// go to Telegram and WhatsApp; auto-debit summaries go to Telegram only.
// Unconfigured channels are skipped.
type Router struct {
	Telegram       *TelegramClient
	TelegramChats  []string
	WhatsApp       *FonnteClient
	WhatsAppTarget string
}

func (r *Router) Notify(ctx context.Context, n core.Notification) error {
	var errs []error
	if r.Telegram != nil && len(r.TelegramChats) > 0 {
		if err := r.Telegram.Broadcast(ctx, r.TelegramChats, n.Text); err != nil {
			errs = append(errs, err)
		}
	}
	if n.Kind == core.NotifyBillReminder && r.WhatsApp != nil && r.WhatsAppTarget != "" {
		if err := r.WhatsApp.Send(ctx, r.WhatsAppTarget, n.Text); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("notify %s: %w", n.Kind, err)
	}
	slog.InfoContext(ctx, "Notification sent", "kind", n.Kind)
	return nil
}

// Publisher is the queue side of the AMQP client.
type Publisher interface {
	PublishNotification(ctx context.Context, n core.Notification) error
}

// QueueNotifier hands notifications to the broker for the notifier worker.
type QueueNotifier struct {
	Publisher Publisher
}

func (q *QueueNotifier) Notify(ctx context.Context, n core.Notification) error {
	return q.Publisher.PublishNotification(ctx, n)
}
