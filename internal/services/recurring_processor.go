package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dompet/internal/core"
	ports "dompet/internal/sheets"
)

// RuleLedger is the part of the store the processor needs.
type RuleLedger interface {
	ports.TransactionStore
	ports.RecurringRuleStore
}

// RecurringResult is the outcome of one scheduler pass.
type RecurringResult struct {
	Executed int
	// Details holds one summary line per executed rule.
	Details []string
}

// RecurringProcessor turns due recurring rules into ledger rows.
type RecurringProcessor struct {
	store   RuleLedger
	claimer ports.ExecutionClaimer
}

// NewRecurringProcessor uses the store's execution claims when it offers
// them. Without claims, repeated runs are kept apart by the rule's
// last-executed marker alone.
func NewRecurringProcessor(store RuleLedger) *RecurringProcessor {
	p := &RecurringProcessor{store: store}
	if c, ok := store.(ports.ExecutionClaimer); ok {
		p.claimer = c
	}
	return p
}

// ProcessDueRules executes every rule due on now's calendar day. A failing
// rule is logged and skipped; only a failure to list the rules is returned.
func (p *RecurringProcessor) ProcessDueRules(ctx context.Context, now time.Time) (RecurringResult, error) {
	var result RecurringResult
	if p.store == nil {
		return result, fmt.Errorf("processor not properly initialized")
	}

	rules, err := p.store.ListRecurringRules(ctx)
	if err != nil {
		return result, fmt.Errorf("list recurring rules: %w", err)
	}

	today := core.DateOf(now)
	slog.InfoContext(ctx, "Processing recurring rules",
		"total", len(rules),
		"processing_date", today.Format("2006-01-02"))

	for _, rule := range rules {
		if StateOf(rule, today) != StateDueToday {
			continue
		}
		if err := rule.Validate(); err != nil {
			slog.WarnContext(ctx, "Skipping invalid recurring rule",
				"rule_id", rule.ID, "name", rule.Name, "error", err)
			continue
		}
		if !p.execute(ctx, rule, today) {
			continue
		}
		result.Executed++
		result.Details = append(result.Details, RuleSummary(rule))
	}

	slog.InfoContext(ctx, "Recurring rule processing complete",
		"executed", result.Executed,
		"total_checked", len(rules))
	return result, nil
}

func (p *RecurringProcessor) execute(ctx context.Context, rule core.RecurringRule, today core.Date) bool {
	key := ruleKey(rule)
	if p.claimer != nil {
		won, err := p.claimer.ClaimExecution(ctx, key, today.Year(), today.Month())
		if err != nil {
			slog.ErrorContext(ctx, "Failed to claim recurring execution", "rule_id", rule.ID, "error", err)
			return false
		}
		if !won {
			slog.InfoContext(ctx, "Recurring rule already claimed this month", "rule_id", rule.ID, "name", rule.Name)
			return false
		}
	}

	if err := p.store.AppendTransactions(ctx, RuleTransactions(rule, today)); err != nil {
		slog.ErrorContext(ctx, "Failed to write recurring transactions",
			"rule_id", rule.ID, "name", rule.Name, "error", err)
		if p.claimer != nil {
			if rerr := p.claimer.ReleaseExecution(ctx, key, today.Year(), today.Month()); rerr != nil {
				slog.ErrorContext(ctx, "Failed to release recurring claim", "rule_id", rule.ID, "error", rerr)
			}
		}
		return false
	}

	rule.LastExecutedOn = today.Ptr()
	if err := p.store.UpdateRecurringRule(ctx, rule); err != nil {
		// Rows are written. With claims the month stays blocked; without
		// them the rule may run again on the next pass.
		slog.ErrorContext(ctx, "Failed to update last execution date",
			"rule_id", rule.ID,
			"name", rule.Name,
			"claimed", p.claimer != nil,
			"error", err)
	}

	slog.InfoContext(ctx, "Executed recurring rule",
		"rule_id", rule.ID,
		"name", rule.Name,
		"type", rule.Type,
		"amount", rule.Amount)
	return true
}

func ruleKey(rule core.RecurringRule) string {
	if rule.ID != "" {
		return rule.ID
	}
	return rule.Name
}

// RuleTransactions builds the rows a rule emits on date.
func RuleTransactions(rule core.RecurringRule, date core.Date) []core.Transaction {
	if rule.Type == core.Transfer {
		legs := core.TransferLegs(date, rule.FromWallet, rule.ToWallet, rule.Amount, rule.Name)
		return legs[:]
	}
	category := rule.Category
	note := rule.Name
	if category == "" {
		category = core.DefaultCategory
	} else {
		note = fmt.Sprintf("%s - %s", rule.Name, rule.Category)
	}
	return []core.Transaction{{
		Date:     date,
		Type:     rule.Type,
		Wallet:   rule.Wallet,
		Amount:   rule.Amount,
		Note:     note,
		Category: category,
	}}
}

// RuleSummary is the auto-debit notification line for an executed rule.
func RuleSummary(rule core.RecurringRule) string {
	amount := core.FormatIDR(rule.Amount)
	switch rule.Type {
	case core.Transfer:
		return fmt.Sprintf("✅ Transfer: %s - %s (%s → %s)", rule.Name, amount, rule.FromWallet, rule.ToWallet)
	case core.Income:
		return fmt.Sprintf("💰 Masuk: %s - %s (%s)", rule.Name, amount, rule.Wallet)
	default:
		return fmt.Sprintf("✅ Keluar: %s - %s (%s)", rule.Name, amount, rule.Wallet)
	}
}
