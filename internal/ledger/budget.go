package ledger

import (
	"fmt"
	"math"
	"strings"

	"dompet/internal/core"
)

// BudgetStatus classifies a category's spend against its monthly limit.
type BudgetStatus int

const (
	BudgetOK BudgetStatus = iota
	BudgetWarning
	BudgetOver
)

// warnPercent is the usage at which a category starts warning.
const warnPercent = 80

func (s BudgetStatus) String() string {
	switch s {
	case BudgetWarning:
		return "warning"
	case BudgetOver:
		return "over"
	default:
		return "ok"
	}
}

// BudgetCheck is the outcome of comparing one category's spend to its limit.
type BudgetCheck struct {
	Category string
	Status   BudgetStatus
	Used     int64
	Limit    int64
}

// Percentage is used/limit*100, or 0 without a limit.
func (c BudgetCheck) Percentage() float64 {
	if c.Limit <= 0 {
		return 0
	}
	return float64(c.Used) / float64(c.Limit) * 100
}

// Remaining is negative once over budget.
func (c BudgetCheck) Remaining() int64 {
	return c.Limit - c.Used
}

// Overage is how far spend exceeds the limit, 0 when within it.
func (c BudgetCheck) Overage() int64 {
	if c.Used <= c.Limit {
		return 0
	}
	return c.Used - c.Limit
}

// Message renders the advisory text for warning and over states; empty for OK.
func (c BudgetCheck) Message() string {
	switch c.Status {
	case BudgetOver:
		return fmt.Sprintf("🚨 *OVER BUDGET!* 🚨\nKategori: %s\nLimit: %s\nTerpakai: %s\nOver: %s",
			c.Category, core.FormatIDR(c.Limit), core.FormatIDR(c.Used), core.FormatIDR(c.Overage()))
	case BudgetWarning:
		return fmt.Sprintf("⚠️ *WARNING BUDGET*\nKategori: %s\nTerpakai: %d%%\nSisa: %s",
			c.Category, int64(math.Round(c.Percentage())), core.FormatIDR(c.Remaining()))
	default:
		return ""
	}
}

// ClassifyBudget applies the 80% / 100% thresholds.
func ClassifyBudget(used, limit int64) BudgetStatus {
	if limit <= 0 {
		return BudgetOK
	}
	switch {
	case used >= limit:
		return BudgetOver
	case used*100 >= limit*warnPercent:
		return BudgetWarning
	default:
		return BudgetOK
	}
}

// FindBudget looks a category up case-insensitively.
func FindBudget(budgets []core.Budget, category string) (core.Budget, bool) {
	for _, b := range budgets {
		if strings.EqualFold(strings.TrimSpace(b.Category), strings.TrimSpace(category)) {
			return b, true
		}
	}
	return core.Budget{}, false
}

// CheckBudget evaluates category for ref's month. ok is false when there is
// nothing to say: no budget, a zero limit, or usage under the warning line.
func CheckBudget(txs []core.Transaction, budgets []core.Budget, category string, ref core.Date) (BudgetCheck, bool) {
	b, found := FindBudget(budgets, category)
	if !found || b.MonthlyLimit <= 0 {
		return BudgetCheck{}, false
	}
	c := BudgetCheck{
		Category: category,
		Used:     CategorySpend(txs, category, ref),
		Limit:    b.MonthlyLimit,
	}
	c.Status = ClassifyBudget(c.Used, c.Limit)
	return c, c.Status != BudgetOK
}

// BudgetOverview classifies every budget with a limit, in budget order.
func BudgetOverview(txs []core.Transaction, budgets []core.Budget, ref core.Date) []BudgetCheck {
	var out []BudgetCheck
	for _, b := range budgets {
		if b.MonthlyLimit <= 0 {
			continue
		}
		used := CategorySpend(txs, b.Category, ref)
		out = append(out, BudgetCheck{
			Category: strings.TrimSpace(b.Category),
			Status:   ClassifyBudget(used, b.MonthlyLimit),
			Used:     used,
			Limit:    b.MonthlyLimit,
		})
	}
	return out
}
