package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dompet/internal/command"
	"dompet/internal/core"
	"dompet/internal/ledger"
	ports "dompet/internal/sheets"

	"golang.org/x/sync/errgroup"
)

// FailureText is the reply adapters send when a command fails for a reason
// the user cannot fix.
const FailureText = "❌ Waduh, lagi gagal nyambung ke catetan bos. Coba lagi bentar ya."

const invalidTransferText = "❌ Error: Invalid transfer wallets"

// Reply is the outcome of one chat command.
type Reply struct {
	Kind command.Kind
	Text string
}

// Snapshot is the reference data one command works against. It is loaded
// once per request and passed explicitly.
type Snapshot struct {
	Wallets    []core.Wallet
	Categories []string
	Budgets    []core.Budget
}

func (s Snapshot) walletNames() []string {
	names := make([]string, len(s.Wallets))
	for i, w := range s.Wallets {
		names[i] = w.Name
	}
	return names
}

// CommandService executes parsed chat commands against the ledger store.
type CommandService struct {
	store ports.LedgerStore
	now   func() time.Time
}

// NewCommandService builds the service. now supplies the wall clock in the
// ledger's timezone; nil means time.Now.
func NewCommandService(store ports.LedgerStore, now func() time.Time) *CommandService {
	if now == nil {
		now = time.Now
	}
	return &CommandService{store: store, now: now}
}

// Handle parses text and executes it. Problems the user can fix come back
// as a reply; store failures are returned wrapped in ErrStore.
func (s *CommandService) Handle(ctx context.Context, text string) (Reply, error) {
	return s.Execute(ctx, command.Parse(text))
}

// Execute runs an already parsed intent.
func (s *CommandService) Execute(ctx context.Context, in command.Intent) (Reply, error) {
	text, err := s.execute(ctx, in)
	switch {
	case err == nil:
		return Reply{Kind: in.Kind, Text: text}, nil
	case errors.Is(err, ErrValidation):
		slog.InfoContext(ctx, "Command rejected", "intent", in.Kind.String(), "reason", err)
		return Reply{Kind: in.Kind, Text: validationText(err)}, nil
	default:
		return Reply{Kind: in.Kind}, fmt.Errorf("%w: %s: %w", ErrStore, in.Kind, err)
	}
}

func validationText(err error) string {
	var v *validationError
	if errors.As(err, &v) {
		return v.reply
	}
	return "❌ " + err.Error()
}

// validationError carries the exact reply for a rejected command.
type validationError struct {
	reply string
}

func (e *validationError) Error() string { return e.reply }
func (e *validationError) Unwrap() error { return ErrValidation }

func rejected(reply string) error { return &validationError{reply: reply} }

func (s *CommandService) execute(ctx context.Context, in command.Intent) (string, error) {
	today := core.DateOf(s.now())

	switch in.Kind {
	case command.Record:
		return s.record(ctx, in, today)
	case command.Transfer:
		return s.transfer(ctx, in, today)
	case command.PayBillWithAmount:
		return s.payBillWithAmount(ctx, in, today)
	case command.PayBill:
		return s.payBill(ctx, in, today)
	case command.BillQuery:
		bills, err := s.store.ListBills(ctx)
		if err != nil {
			return "", err
		}
		return PendingBillsText(PendingBills(bills, today)), nil
	case command.CategoryQuery:
		return s.categories(ctx, today)
	case command.BalanceQuery:
		snap, err := s.LoadSnapshot(ctx)
		if err != nil {
			return "", err
		}
		txs, err := s.store.ListTransactions(ctx)
		if err != nil {
			return "", err
		}
		return ledger.BalanceReport(ledger.WalletBalances(txs, snap.Wallets), in.Wallet), nil
	case command.ReportQuery:
		txs, err := s.store.ListTransactions(ctx)
		if err != nil {
			return "", err
		}
		return ledger.MonthlyReport(txs, today), nil
	default:
		return command.HelpText, nil
	}
}

// LoadSnapshot fetches wallets, categories and budgets concurrently.
func (s *CommandService) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w, err := s.store.ListWallets(gctx)
		if err != nil {
			return fmt.Errorf("list wallets: %w", err)
		}
		snap.Wallets = w
		return nil
	})
	g.Go(func() error {
		c, err := s.store.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		snap.Categories = c
		return nil
	})
	g.Go(func() error {
		b, err := s.store.ListBudgets(gctx)
		if err != nil {
			return fmt.Errorf("list budgets: %w", err)
		}
		snap.Budgets = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// canonicalWallet echoes the registry's spelling when the wallet is known.
func canonicalWallet(name string, snap Snapshot) string {
	if c, ok := command.Canonical(name, snap.walletNames()); ok {
		return c
	}
	return name
}

func (s *CommandService) record(ctx context.Context, in command.Intent, today core.Date) (string, error) {
	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		return "", err
	}
	category, note := command.ResolveCategory(in.Note, snap.Categories)
	tx := core.Transaction{
		Date:     today,
		Type:     in.Type,
		Wallet:   canonicalWallet(in.Wallet, snap),
		Amount:   in.Amount,
		Note:     note,
		Category: category,
	}
	if err := tx.Validate(); err != nil {
		return "", rejected("❌ Error: " + err.Error())
	}
	if err := s.store.AppendTransactions(ctx, []core.Transaction{tx}); err != nil {
		return "", err
	}

	emoji := "💸"
	if tx.Type == core.Income {
		emoji = "💰"
	}
	reply := fmt.Sprintf("✅ *Transaksi berhasil dicatat!*\n%s %s: %s\n📍 Dompet: %s\n📂 Kategori: %s\n📝 %s",
		emoji, tx.Type, core.FormatIDR(tx.Amount), tx.Wallet, tx.Category, tx.Note)

	if tx.Type == core.Expense {
		if warning := s.budgetWarning(ctx, snap, tx.Category, today); warning != "" {
			reply += "\n\n" + warning
		}
	}
	return reply, nil
}

// budgetWarning re-reads the ledger after a write. It is advisory: a read
// failure only loses the warning.
func (s *CommandService) budgetWarning(ctx context.Context, snap Snapshot, category string, today core.Date) string {
	if _, ok := ledger.FindBudget(snap.Budgets, category); !ok {
		return ""
	}
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Budget check skipped", "category", category, "error", err)
		return ""
	}
	check, ok := ledger.CheckBudget(txs, snap.Budgets, category, today)
	if !ok {
		return ""
	}
	return check.Message()
}

func (s *CommandService) transfer(ctx context.Context, in command.Intent, today core.Date) (string, error) {
	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		return "", err
	}
	from, to := in.FromWallet, in.ToWallet
	if len(snap.Wallets) > 0 {
		var okFrom, okTo bool
		from, okFrom = command.Canonical(in.FromWallet, snap.walletNames())
		to, okTo = command.Canonical(in.ToWallet, snap.walletNames())
		if !okFrom || !okTo {
			return "", rejected(invalidTransferText)
		}
	}
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" || strings.EqualFold(from, to) {
		return "", rejected(invalidTransferText)
	}

	legs := core.TransferLegs(today, from, to, in.Amount, in.Note)
	if err := s.store.AppendTransactions(ctx, legs[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ *Transfer berhasil dicatat!*\n💸 %s\n📤 %s ➡ 📥 %s", core.FormatIDR(in.Amount), from, to), nil
}

func (s *CommandService) findBill(ctx context.Context, name string) (core.Bill, bool, error) {
	bills, err := s.store.ListBills(ctx)
	if err != nil {
		return core.Bill{}, false, err
	}
	b, ok := FindBill(bills, name)
	return b, ok, nil
}

func billNotFound(name string) string {
	return fmt.Sprintf("❌ Gak nemu tagihan \"%s\" bro.", strings.ToLower(strings.TrimSpace(name)))
}

func (s *CommandService) payBillWithAmount(ctx context.Context, in command.Intent, today core.Date) (string, error) {
	bill, ok, err := s.findBill(ctx, in.BillName)
	if err != nil {
		return "", err
	}
	if !ok {
		return billNotFound(in.BillName), nil
	}

	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		return "", err
	}
	tx := core.Transaction{
		Date:     today,
		Type:     core.Expense,
		Wallet:   canonicalWallet(in.Wallet, snap),
		Amount:   in.Amount,
		Note:     "Bayar Tagihan " + bill.Name,
		Category: core.BillCategory,
	}
	if err := tx.Validate(); err != nil {
		return "", rejected("❌ Error: " + err.Error())
	}
	if err := s.store.AppendTransactions(ctx, []core.Transaction{tx}); err != nil {
		return "", err
	}

	bill.LastPaidOn = today.Ptr()
	if err := s.store.UpdateBill(ctx, bill); err != nil {
		return "", fmt.Errorf("mark bill paid: %w", err)
	}
	return fmt.Sprintf("✅ *TAGIHAN LUNAS & TERCATAT!*\n\n🧾 Tagihan: %s\n💰 Nominal: %s\n💸 Sumber: %s",
		bill.Name, core.FormatIDR(tx.Amount), tx.Wallet), nil
}

func (s *CommandService) payBill(ctx context.Context, in command.Intent, today core.Date) (string, error) {
	bill, ok, err := s.findBill(ctx, in.BillName)
	if err != nil {
		return "", err
	}
	if !ok {
		return billNotFound(in.BillName), nil
	}
	bill.LastPaidOn = today.Ptr()
	if err := s.store.UpdateBill(ctx, bill); err != nil {
		return "", fmt.Errorf("mark bill paid: %w", err)
	}
	return fmt.Sprintf("✅ Mantab bos! *%s* udah LUNAS bulan ini (%s).", bill.Name, today), nil
}

func (s *CommandService) categories(ctx context.Context, today core.Date) (string, error) {
	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		return "", err
	}
	if len(snap.Categories) == 0 {
		return "📂 Belum ada kategori yang diatur.", nil
	}

	usage := map[string]ledger.BudgetCheck{}
	if len(snap.Budgets) > 0 {
		txs, err := s.store.ListTransactions(ctx)
		if err != nil {
			return "", err
		}
		for _, c := range ledger.BudgetOverview(txs, snap.Budgets, today) {
			usage[strings.ToLower(c.Category)] = c
		}
	}

	var b strings.Builder
	b.WriteString("📂 *Kategori Tersedia:*\n")
	for _, c := range snap.Categories {
		b.WriteString("\n- " + c)
		if u, ok := usage[strings.ToLower(c)]; ok {
			fmt.Fprintf(&b, " (%s / %s)", core.FormatIDR(u.Used), core.FormatIDR(u.Limit))
		}
	}
	return b.String(), nil
}
