// Package services orchestrates the ledger: chat commands, recurring rule
// execution and the daily job.
package services

import "dompet/internal/core"

// RuleState is where a recurring rule stands on a given day.
type RuleState int

const (
	StateInactive RuleState = iota
	// StateWaiting: active, but today is not its execution day.
	StateWaiting
	StateDueToday
	// StateExecutedThisMonth: today is its day, but it already ran this month.
	StateExecutedThisMonth
)

func (s RuleState) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateWaiting:
		return "waiting"
	case StateDueToday:
		return "due_today"
	case StateExecutedThisMonth:
		return "executed_this_month"
	}
	return "unknown"
}

// StateOf evaluates rule on today. The execution day must match exactly, so
// a rule set for the 31st does not run in shorter months.
func StateOf(rule core.RecurringRule, today core.Date) RuleState {
	if rule.Status != core.RuleActive {
		return StateInactive
	}
	if rule.ExecutionDay != today.Day() {
		return StateWaiting
	}
	if rule.LastExecutedOn != nil && rule.LastExecutedOn.SameMonth(today) {
		return StateExecutedThisMonth
	}
	return StateDueToday
}
