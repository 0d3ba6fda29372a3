package core

// NotificationKind decides which channels a notification goes to.
type NotificationKind string

const (
	// NotifyBillReminder goes to every configured channel.
	NotifyBillReminder NotificationKind = "bill_reminder"
	// NotifyAutoDebit goes to Telegram only.
	NotifyAutoDebit NotificationKind = "auto_debit"
)

type Notification struct {
	Kind NotificationKind
	Text string
}
