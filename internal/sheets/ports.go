package sheets

import (
	"context"
	"errors"

	"dompet/internal/core"
)

// ErrNotFound is returned by updates that address a row the store does not have.
var ErrNotFound = errors.New("record not found")

// DefaultWallets is served when a store has no wallet registry of its own.
var DefaultWallets = []core.Wallet{
	{Name: "BNI", Logo: "bni.svg"},
	{Name: "Mandiri", Logo: "mandiri.svg"},
	{Name: "GoPay", Logo: "gopay.png"},
	{Name: "Dana", Logo: "dana.svg"},
	{Name: "Tunai", Logo: "cash-icon"},
	{Name: "Tabungan", Logo: "piggy-icon"},
	{Name: "Dana Darurat", Logo: "emergency-icon"},
}

// Ports for outbound adapters.
type (
	TransactionStore interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		// AppendTransactions writes all rows or none of them.
		AppendTransactions(ctx context.Context, rows []core.Transaction) error
	}

	RecurringRuleStore interface {
		ListRecurringRules(ctx context.Context) ([]core.RecurringRule, error)
		UpdateRecurringRule(ctx context.Context, rule core.RecurringRule) error
	}

	BillStore interface {
		ListBills(ctx context.Context) ([]core.Bill, error)
		UpdateBill(ctx context.Context, bill core.Bill) error
	}

	// ReferenceReader exposes the small lookup tables a command needs.
	ReferenceReader interface {
		ListBudgets(ctx context.Context) ([]core.Budget, error)
		ListWallets(ctx context.Context) ([]core.Wallet, error)
		ListCategories(ctx context.Context) ([]string, error)
	}

	// LedgerStore is everything the command and scheduler services consume.
	LedgerStore interface {
		TransactionStore
		RecurringRuleStore
		BillStore
		ReferenceReader
	}

	// ExecutionClaimer records that a recurring rule ran in a given month with
	// insert-if-absent semantics. Stores that can offer it make the scheduler
	// safe under overlapping invocations.
	ExecutionClaimer interface {
		// ClaimExecution returns false when the (rule, year, month) key is
		// already taken.
		ClaimExecution(ctx context.Context, ruleKey string, year, month int) (bool, error)
		// ReleaseExecution drops a claim whose transactions could not be written.
		ReleaseExecution(ctx context.Context, ruleKey string, year, month int) error
	}

	// ReferenceRefresher is implemented by stores that cache lookup tables.
	// The daily job refreshes them so hand edits to the sheet show up.
	ReferenceRefresher interface {
		InvalidateReferences()
	}
)
