package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dompet/internal/amqp"
	"dompet/internal/core"
	"dompet/internal/log"
)

// Deliverer pushes a notification out to the chat channels.
type Deliverer interface {
	Notify(ctx context.Context, n core.Notification) error
}

// NotificationWorker drains the notification queue into a Deliverer.
type NotificationWorker struct {
	deliverer Deliverer
	maxAge    time.Duration
	now       func() time.Time
}

// NewNotificationWorker builds a worker. Messages older than maxAge are
// acknowledged without delivery; zero keeps every message.
func NewNotificationWorker(d Deliverer, maxAge time.Duration) *NotificationWorker {
	return &NotificationWorker{
		deliverer: d,
		maxAge:    maxAge,
		now:       time.Now,
	}
}

// HandleMessage processes a single notification message from AMQP. A
// returned error makes the consumer requeue the message once.
func (w *NotificationWorker) HandleMessage(ctx context.Context, msg *amqp.NotificationMessage) error {
	slog.InfoContext(ctx, "Processing notification message",
		log.FieldKind, msg.Kind,
		"queued_at", msg.Timestamp)

	if w.stale(msg) {
		slog.WarnContext(ctx, "Dropping stale notification",
			log.FieldKind, msg.Kind,
			"age", w.now().Sub(msg.Timestamp).Round(time.Second))
		return nil
	}

	if err := w.deliverer.Notify(ctx, msg.Notification()); err != nil {
		return fmt.Errorf("deliver %s notification: %w", msg.Kind, err)
	}
	return nil
}

func (w *NotificationWorker) stale(msg *amqp.NotificationMessage) bool {
	if w.maxAge <= 0 || msg.Timestamp.IsZero() {
		return false
	}
	return w.now().Sub(msg.Timestamp) > w.maxAge
}

// Consumer is the consuming side of the AMQP client.
type Consumer interface {
	ConsumeNotifications(ctx context.Context, handler func(context.Context, *amqp.NotificationMessage) error) error
}

// Run consumes until ctx is cancelled.
func (w *NotificationWorker) Run(ctx context.Context, c Consumer) error {
	return c.ConsumeNotifications(ctx, w.HandleMessage)
}
