package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"dompet/internal/core"
)

// NotificationMessage carries one outbound chat notification from the daily
// job to the notifier worker.
type NotificationMessage struct {
	Kind      core.NotificationKind `json:"kind"`
	Text      string                `json:"text"`
	Timestamp time.Time             `json:"timestamp"`
}

func NewNotificationMessage(n core.Notification) *NotificationMessage {
	return &NotificationMessage{
		Kind:      n.Kind,
		Text:      n.Text,
		Timestamp: time.Now(),
	}
}

// Notification converts the message back to the domain value.
func (m *NotificationMessage) Notification() core.Notification {
	return core.Notification{Kind: m.Kind, Text: m.Text}
}

func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationMessageFromJSON rejects payloads without a kind or text.
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" || msg.Text == "" {
		return nil, fmt.Errorf("incomplete notification message")
	}
	return &msg, nil
}
