package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"dompet/internal/core"
	"dompet/internal/sheets/memory"
)

var errBoom = errors.New("boom")

// faultyStore wraps the memory store with switchable failures.
type faultyStore struct {
	*memory.Store

	failAppend     bool
	failRuleUpdate bool
	failBillUpdate bool
	failList       bool
	failBills      bool
}

func (f *faultyStore) AppendTransactions(ctx context.Context, rows []core.Transaction) error {
	if f.failAppend {
		return errBoom
	}
	return f.Store.AppendTransactions(ctx, rows)
}

func (f *faultyStore) UpdateRecurringRule(ctx context.Context, r core.RecurringRule) error {
	if f.failRuleUpdate {
		return errBoom
	}
	return f.Store.UpdateRecurringRule(ctx, r)
}

func (f *faultyStore) UpdateBill(ctx context.Context, b core.Bill) error {
	if f.failBillUpdate {
		return errBoom
	}
	return f.Store.UpdateBill(ctx, b)
}

func (f *faultyStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	if f.failList {
		return nil, errBoom
	}
	return f.Store.ListTransactions(ctx)
}

func (f *faultyStore) ListBills(ctx context.Context) ([]core.Bill, error) {
	if f.failBills {
		return nil, errBoom
	}
	return f.Store.ListBills(ctx)
}

// recordingNotifier keeps every notification it is asked to send.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []core.Notification
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, n core.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func at(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 7, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
