package ledger

import (
	"strings"
	"testing"

	"dompet/internal/core"
)

func TestClassifyBudget(t *testing.T) {
	tests := []struct {
		used, limit int64
		want        BudgetStatus
	}{
		{0, 100000, BudgetOK},
		{79999, 100000, BudgetOK},
		{80000, 100000, BudgetWarning},
		{85000, 100000, BudgetWarning},
		{100000, 100000, BudgetOver},
		{120000, 100000, BudgetOver},
		{999999, 0, BudgetOK},
	}
	for _, tt := range tests {
		if got := ClassifyBudget(tt.used, tt.limit); got != tt.want {
			t.Errorf("ClassifyBudget(%d, %d) = %v, want %v", tt.used, tt.limit, got, tt.want)
		}
	}
}

func spend(amounts ...int64) []core.Transaction {
	d := core.NewDate(2025, 6, 3)
	var out []core.Transaction
	for _, a := range amounts {
		out = append(out, core.Transaction{Date: d, Type: core.Expense, Wallet: "BNI", Amount: a, Category: "Makanan"})
	}
	return out
}

func TestCheckBudget(t *testing.T) {
	ref := core.NewDate(2025, 6, 20)
	budgets := []core.Budget{{Category: "makanan", MonthlyLimit: 100000}, {Category: "Hiburan", MonthlyLimit: 0}}

	t.Run("warning", func(t *testing.T) {
		c, ok := CheckBudget(spend(50000, 35000), budgets, "Makanan", ref)
		if !ok || c.Status != BudgetWarning {
			t.Fatalf("expected warning, got %+v ok=%v", c, ok)
		}
		msg := c.Message()
		for _, want := range []string{"WARNING BUDGET", "Kategori: Makanan", "Terpakai: 85%", "Sisa: Rp 15.000"} {
			if !strings.Contains(msg, want) {
				t.Errorf("message missing %q:\n%s", want, msg)
			}
		}
	})

	t.Run("over budget states overage", func(t *testing.T) {
		c, ok := CheckBudget(spend(120000), budgets, "Makanan", ref)
		if !ok || c.Status != BudgetOver || c.Overage() != 20000 {
			t.Fatalf("expected over by 20000, got %+v ok=%v", c, ok)
		}
		msg := c.Message()
		for _, want := range []string{"OVER BUDGET", "Limit: Rp 100.000", "Terpakai: Rp 120.000", "Over: " + core.FormatIDR(20000)} {
			if !strings.Contains(msg, want) {
				t.Errorf("message missing %q:\n%s", want, msg)
			}
		}
	})

	t.Run("under threshold", func(t *testing.T) {
		c, ok := CheckBudget(spend(10000), budgets, "Makanan", ref)
		if ok || c.Message() != "" {
			t.Fatalf("expected no warning, got %+v", c)
		}
	})

	t.Run("no budget or zero limit", func(t *testing.T) {
		if _, ok := CheckBudget(spend(500000), budgets, "Transportasi", ref); ok {
			t.Fatalf("no budget must not warn")
		}
		if _, ok := CheckBudget(spend(500000), budgets, "Hiburan", ref); ok {
			t.Fatalf("zero limit must not warn")
		}
	})

	t.Run("other months and transfers ignored", func(t *testing.T) {
		rows := spend(70000)
		rows = append(rows,
			core.Transaction{Date: core.NewDate(2025, 5, 30), Type: core.Expense, Wallet: "BNI", Amount: 90000, Category: "Makanan"},
			core.Transaction{Date: ref, Type: core.Expense, Wallet: "BNI", Amount: 90000, Category: "Makanan", Note: "x (ke Jago)"},
		)
		if c, ok := CheckBudget(rows, budgets, "Makanan", ref); ok {
			t.Fatalf("expected OK, got %+v", c)
		}
	})
}

func TestBudgetOverview(t *testing.T) {
	ref := core.NewDate(2025, 6, 20)
	budgets := []core.Budget{{Category: "Makanan", MonthlyLimit: 100000}, {Category: "Hiburan"}, {Category: "Kopi", MonthlyLimit: 50000}}
	got := BudgetOverview(spend(90000), budgets, ref)
	if len(got) != 2 {
		t.Fatalf("expected only budgets with limits, got %+v", got)
	}
	if got[0].Status != BudgetWarning || got[1].Status != BudgetOK || got[1].Used != 0 {
		t.Fatalf("unexpected overview: %+v", got)
	}
}
