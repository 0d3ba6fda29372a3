package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"dompet/internal/core"
	ports "dompet/internal/sheets"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "dompet.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSeededReferenceData(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	wallets, err := repo.ListWallets(ctx)
	if err != nil {
		t.Fatalf("list wallets: %v", err)
	}
	if len(wallets) != len(ports.DefaultWallets) || wallets[0].Name != "BNI" || wallets[6].Name != "Dana Darurat" {
		t.Fatalf("unexpected wallets: %+v", wallets)
	}

	cats, err := repo.ListCategories(ctx)
	if err != nil || len(cats) == 0 || cats[0] != "Makanan" {
		t.Fatalf("unexpected categories: %v err=%v", cats, err)
	}

	if err := repo.AddCategory(ctx, "makanan"); err != nil {
		t.Fatalf("add duplicate category: %v", err)
	}
	again, _ := repo.ListCategories(ctx)
	if len(again) != len(cats) {
		t.Fatalf("case-insensitive duplicate must be ignored: %v", again)
	}
}

func TestAppendAndListTransactions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	legs := core.TransferLegs(core.NewDate(2025, 6, 1), "BNI", "GoPay", 50000, "topup")
	rows := append(legs[:], core.Transaction{
		Date: core.NewDate(2025, 6, 2), Type: core.Expense, Wallet: "GoPay", Amount: 20000, Note: "bakso", Category: "Makanan",
	})
	if err := repo.AppendTransactions(ctx, rows); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	if got[0].LinkID == "" || got[0].LinkID != got[1].LinkID {
		t.Fatalf("transfer legs must share a link id: %+v", got[:2])
	}
	if got[2].ID == "" || got[2].Date.Day() != 2 || got[2].Category != "Makanan" {
		t.Fatalf("unexpected row: %+v", got[2])
	}
}

func TestAppendRollsBackOnInvalidRow(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	rows := []core.Transaction{
		{Date: core.NewDate(2025, 6, 1), Type: core.Income, Wallet: "BNI", Amount: 1},
		{Date: core.NewDate(2025, 6, 1), Type: core.Transfer, Wallet: "BNI", Amount: 1},
	}
	if err := repo.AppendTransactions(ctx, rows); err == nil {
		t.Fatalf("expected error for transfer-typed row")
	}
	got, _ := repo.ListTransactions(ctx)
	if len(got) != 0 {
		t.Fatalf("expected nothing stored, got %d", len(got))
	}
}

func TestRecurringRulesRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.AddRecurringRule(ctx, core.RecurringRule{
		Name: "Tabung", Type: core.Transfer, FromWallet: "BNI", ToWallet: "Tabungan",
		Amount: 100000, ExecutionDay: 25, Status: core.RuleActive,
	})
	if err != nil {
		t.Fatalf("add rule: %v", err)
	}

	rules, err := repo.ListRecurringRules(ctx)
	if err != nil || len(rules) != 1 {
		t.Fatalf("list rules: %v %v", rules, err)
	}
	r := rules[0]
	if r.ID != id || r.LastExecutedOn != nil || r.Type != core.Transfer {
		t.Fatalf("unexpected rule: %+v", r)
	}

	r.LastExecutedOn = core.NewDate(2025, 6, 25).Ptr()
	if err := repo.UpdateRecurringRule(ctx, r); err != nil {
		t.Fatalf("update: %v", err)
	}
	rules, _ = repo.ListRecurringRules(ctx)
	if rules[0].LastExecutedOn == nil || !rules[0].LastExecutedOn.Equal(core.NewDate(2025, 6, 25).Time) {
		t.Fatalf("marker not stored: %+v", rules[0])
	}

	if err := repo.UpdateRecurringRule(ctx, core.RecurringRule{ID: "999"}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBillsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.AddBill(ctx, core.Bill{Name: "Wifi", Amount: 350000, Due: core.BillDue{Day: 10}}); err != nil {
		t.Fatalf("add bill: %v", err)
	}
	if _, err := repo.AddBill(ctx, core.Bill{Name: "Pajak Motor", Due: core.BillDue{Date: core.NewDate(2025, 8, 17)}}); err != nil {
		t.Fatalf("add one-time bill: %v", err)
	}

	bills, err := repo.ListBills(ctx)
	if err != nil || len(bills) != 2 {
		t.Fatalf("list bills: %v %v", bills, err)
	}
	if bills[0].Due.OneTime() || bills[0].Due.Day != 10 {
		t.Fatalf("recurring bill wrong: %+v", bills[0])
	}
	if !bills[1].Due.OneTime() || bills[1].Due.Date.Month() != 8 {
		t.Fatalf("one-time bill wrong: %+v", bills[1])
	}

	bills[0].LastPaidOn = core.NewDate(2025, 6, 9).Ptr()
	if err := repo.UpdateBill(ctx, bills[0]); err != nil {
		t.Fatalf("update bill: %v", err)
	}
	bills, _ = repo.ListBills(ctx)
	if !bills[0].PaidFor(core.NewDate(2025, 6, 30)) {
		t.Fatalf("bill should be paid for June")
	}
	if err := repo.UpdateBill(ctx, core.Bill{ID: "abc"}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBudgets(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if err := repo.SetBudget(ctx, core.Budget{Category: "Makanan", MonthlyLimit: 1000000}); err != nil {
		t.Fatalf("set budget: %v", err)
	}
	if err := repo.SetBudget(ctx, core.Budget{Category: "makanan", MonthlyLimit: 750000}); err != nil {
		t.Fatalf("replace budget: %v", err)
	}
	if err := repo.SetBudget(ctx, core.Budget{Category: "X", MonthlyLimit: -1}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	budgets, err := repo.ListBudgets(ctx)
	if err != nil || len(budgets) != 1 || budgets[0].MonthlyLimit != 750000 {
		t.Fatalf("unexpected budgets: %+v err=%v", budgets, err)
	}
}

func TestClaimExecutionIsExclusive(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.ClaimExecution(ctx, "1", 2025, 6)
			if err != nil {
				t.Errorf("claim: %v", err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("exactly one claim must win, got %d", wins)
	}

	if err := repo.ReleaseExecution(ctx, "1", 2025, 6); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := repo.ClaimExecution(ctx, "1", 2025, 6); !ok {
		t.Fatalf("released key must be claimable")
	}
}

func TestSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer repo.Close()

	v, dirty, err := SchemaVersion(path)
	if err != nil || dirty || v != 2 {
		t.Fatalf("unexpected version: v=%d dirty=%v err=%v", v, dirty, err)
	}
}
