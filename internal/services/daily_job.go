package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dompet/internal/core"
	ports "dompet/internal/sheets"
)

// Notifier delivers a notification on a best-effort basis.
type Notifier interface {
	Notify(ctx context.Context, n core.Notification) error
}

// DailyResult is what one run of the daily job did.
type DailyResult struct {
	BillsDue          int
	RecurringExecuted int
	Details           []string
}

// DailyJob reminds about bills due today and runs the recurring rules.
// It is safe to invoke more than once a day.
type DailyJob struct {
	bills     ports.BillStore
	refresher ports.ReferenceRefresher
	processor *RecurringProcessor
	notifier  Notifier
}

// NewDailyJob wires the job. A nil notifier disables notifications.
func NewDailyJob(store ports.LedgerStore, notifier Notifier) *DailyJob {
	j := &DailyJob{
		bills:     store,
		processor: NewRecurringProcessor(store),
		notifier:  notifier,
	}
	if r, ok := store.(ports.ReferenceRefresher); ok {
		j.refresher = r
	}
	return j
}

// Run executes the job for now's calendar day. Bill and recurring sections
// run independently; errors from both are joined.
func (j *DailyJob) Run(ctx context.Context, now time.Time) (DailyResult, error) {
	var (
		res  DailyResult
		errs []error
	)
	today := core.DateOf(now)

	if j.refresher != nil {
		j.refresher.InvalidateReferences()
	}

	bills, err := j.bills.ListBills(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("list bills: %w", err))
	} else {
		due := BillsDueToday(bills, today)
		res.BillsDue = len(due)
		j.notify(ctx, core.Notification{Kind: core.NotifyBillReminder, Text: BillReminderText(due)})
	}

	rec, err := j.processor.ProcessDueRules(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("process recurring rules: %w", err))
	} else {
		res.RecurringExecuted = rec.Executed
		res.Details = rec.Details
		j.notify(ctx, core.Notification{Kind: core.NotifyAutoDebit, Text: AutoDebitText(rec)})
	}

	slog.InfoContext(ctx, "Daily job finished",
		"date", today.String(),
		"bills_due", res.BillsDue,
		"recurring_executed", res.RecurringExecuted,
		"errors", len(errs))
	return res, errors.Join(errs...)
}

func (j *DailyJob) notify(ctx context.Context, n core.Notification) {
	if j.notifier == nil || n.Text == "" {
		return
	}
	if err := j.notifier.Notify(ctx, n); err != nil {
		slog.ErrorContext(ctx, "Failed to send notification", "kind", n.Kind, "error", err)
	}
}
