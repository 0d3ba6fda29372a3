// Package ledger derives balances, period totals, budget status and reports
// from the append-only transaction history. Everything here is a pure
// function of its arguments.
package ledger

import (
	"regexp"
	"sort"
	"strings"

	"dompet/internal/core"
)

// Period selects the window used by totals and breakdowns.
type Period int

const (
	Daily Period = iota
	Weekly
	Monthly
	Yearly
)

// transferMarker matches the counterpart suffix written on transfer legs.
var transferMarker = regexp.MustCompile(`\((ke|dari) [^)]+\)\s*$`)

type (
	// Totals are income and expense sums with transfer legs excluded.
	Totals struct {
		Income  int64
		Expense int64
	}

	WalletBalance struct {
		Name    string
		Balance int64
	}
)

// Net is income minus expense.
func (t Totals) Net() int64 {
	return t.Income - t.Expense
}

// WalletKey normalises a wallet name for grouping.
func WalletKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// InPeriod reports whether d falls in the period around ref. Weekly is the
// trailing seven days including ref.
func InPeriod(d core.Date, p Period, ref core.Date) bool {
	switch p {
	case Daily:
		return d.Equal(ref.Time)
	case Weekly:
		diff := d.DaysUntil(ref)
		return diff >= 0 && diff < 7
	case Monthly:
		return d.SameMonth(ref)
	case Yearly:
		return d.Year() == ref.Year()
	default:
		return false
	}
}

// IsTransferLeg reports whether tx is one half of an internal transfer, either
// by its reserved category or by the counterpart marker in its note.
func IsTransferLeg(tx core.Transaction) bool {
	if strings.EqualFold(strings.TrimSpace(tx.Category), core.TransferCategory) {
		return true
	}
	return transferMarker.MatchString(tx.Note)
}

// Balances folds every row into a per-wallet balance keyed by WalletKey.
// Transfer legs need no special handling: each leg already moves money on
// its own wallet.
func Balances(txs []core.Transaction) map[string]int64 {
	out := make(map[string]int64)
	for _, tx := range txs {
		out[WalletKey(tx.Wallet)] += tx.Signed()
	}
	return out
}

// WalletBalances returns display rows for the balance reply. Registry wallets
// come first in registry order (zero balances included), followed by any
// wallet seen only in the history, alphabetically. Names use registry
// casing, falling back to the first spelling seen in the history.
func WalletBalances(txs []core.Transaction, wallets []core.Wallet) []WalletBalance {
	balances := Balances(txs)

	seenName := make(map[string]string)
	for _, tx := range txs {
		key := WalletKey(tx.Wallet)
		if _, ok := seenName[key]; !ok && key != "" {
			seenName[key] = strings.TrimSpace(tx.Wallet)
		}
	}

	out := make([]WalletBalance, 0, len(balances)+len(wallets))
	listed := make(map[string]struct{})
	for _, w := range wallets {
		key := WalletKey(w.Name)
		if key == "" {
			continue
		}
		if _, dup := listed[key]; dup {
			continue
		}
		listed[key] = struct{}{}
		out = append(out, WalletBalance{Name: strings.TrimSpace(w.Name), Balance: balances[key]})
	}

	var extra []WalletBalance
	for key, name := range seenName {
		if _, ok := listed[key]; ok {
			continue
		}
		extra = append(extra, WalletBalance{Name: name, Balance: balances[key]})
	}
	sort.Slice(extra, func(i, j int) bool { return WalletKey(extra[i].Name) < WalletKey(extra[j].Name) })
	return append(out, extra...)
}

// Total sums the displayed balances.
func Total(rows []WalletBalance) int64 {
	var sum int64
	for _, r := range rows {
		sum += r.Balance
	}
	return sum
}

// PeriodTotals sums income and expense for the period, skipping transfer legs.
func PeriodTotals(txs []core.Transaction, p Period, ref core.Date) Totals {
	var t Totals
	for _, tx := range txs {
		if !InPeriod(tx.Date, p, ref) || IsTransferLeg(tx) {
			continue
		}
		switch tx.Type {
		case core.Income:
			t.Income += tx.Amount
		case core.Expense:
			t.Expense += tx.Amount
		}
	}
	return t
}

// TopCategories returns the n largest expense categories for the period in
// descending order. Ties keep the order in which categories first appeared.
func TopCategories(txs []core.Transaction, p Period, ref core.Date, n int) []core.CategoryAmount {
	index := make(map[string]int)
	var out []core.CategoryAmount
	for _, tx := range txs {
		if tx.Type != core.Expense || !InPeriod(tx.Date, p, ref) || IsTransferLeg(tx) {
			continue
		}
		cat := strings.TrimSpace(tx.Category)
		if cat == "" {
			cat = core.DefaultCategory
		}
		i, ok := index[cat]
		if !ok {
			i = len(out)
			index[cat] = i
			out = append(out, core.CategoryAmount{Name: cat})
		}
		out[i].Amount += tx.Amount
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CategorySpend is the month's expense total for one category, matched
// case-insensitively, with transfer legs excluded.
func CategorySpend(txs []core.Transaction, category string, ref core.Date) int64 {
	var used int64
	for _, tx := range txs {
		if tx.Type != core.Expense || !InPeriod(tx.Date, Monthly, ref) || IsTransferLeg(tx) {
			continue
		}
		cat := strings.TrimSpace(tx.Category)
		if cat == "" {
			cat = core.DefaultCategory
		}
		if strings.EqualFold(cat, strings.TrimSpace(category)) {
			used += tx.Amount
		}
	}
	return used
}

// Summarize builds the month overview used by the report.
func Summarize(txs []core.Transaction, ref core.Date) core.MonthOverview {
	totals := PeriodTotals(txs, Monthly, ref)
	return core.MonthOverview{
		Year:          ref.Year(),
		Month:         ref.Month(),
		Income:        totals.Income,
		Expense:       totals.Expense,
		TopCategories: TopCategories(txs, Monthly, ref, 3),
	}
}
