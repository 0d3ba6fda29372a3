package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"dompet/internal/core"
	ports "dompet/internal/sheets"
)

// Ensure interface conformance
var (
	_ ports.LedgerStore      = (*Store)(nil)
	_ ports.ExecutionClaimer = (*Store)(nil)
)

// Seed is the initial content of a Store.
type Seed struct {
	Categories []string
	Wallets    []core.Wallet
	Budgets    []core.Budget
	Rules      []core.RecurringRule
	Bills      []core.Bill
}

// Store keeps the whole ledger in process memory. It backs local runs and
// tests.
type Store struct {
	mu         sync.Mutex
	txs        []core.Transaction
	rules      []core.RecurringRule
	bills      []core.Bill
	budgets    []core.Budget
	wallets    []core.Wallet
	categories []string
	claims     map[string]struct{}
	nextID     int
}

func New(seed Seed) *Store {
	s := &Store{
		categories: dedupe(seed.Categories),
		wallets:    append([]core.Wallet(nil), seed.Wallets...),
		budgets:    append([]core.Budget(nil), seed.Budgets...),
		claims:     make(map[string]struct{}),
	}
	for _, r := range seed.Rules {
		if r.ID == "" {
			r.ID = s.newID()
		}
		s.rules = append(s.rules, r)
	}
	for _, b := range seed.Bills {
		if b.ID == "" {
			b.ID = s.newID()
		}
		s.bills = append(s.bills, b)
	}
	return s
}

// NewFromFiles seeds the store from seed_categories.txt, seed_wallets.txt
// ("Name;logo") and seed_budgets.txt ("Category;Limit") under base. Missing
// files fall back to built-in defaults.
func NewFromFiles(base string) *Store {
	cats := readLines(filepath.Join(base, "seed_categories.txt"))
	if len(cats) == 0 {
		cats = []string{"Makanan", "Transportasi", "Tagihan", "Belanja", "Hiburan"}
	}

	var wallets []core.Wallet
	for _, line := range readLines(filepath.Join(base, "seed_wallets.txt")) {
		name, logo, _ := strings.Cut(line, ";")
		wallets = append(wallets, core.Wallet{Name: strings.TrimSpace(name), Logo: strings.TrimSpace(logo)})
	}
	if len(wallets) == 0 {
		wallets = ports.DefaultWallets
	}

	var budgets []core.Budget
	for _, line := range readLines(filepath.Join(base, "seed_budgets.txt")) {
		cat, limit, _ := strings.Cut(line, ";")
		n, _ := strconv.ParseInt(strings.TrimSpace(limit), 10, 64)
		budgets = append(budgets, core.Budget{Category: strings.TrimSpace(cat), MonthlyLimit: n})
	}

	return New(Seed{Categories: cats, Wallets: wallets, Budgets: budgets})
}

func (s *Store) newID() string {
	s.nextID++
	return fmt.Sprintf("mem:%d", s.nextID)
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...), nil
}

// AppendTransactions validates every row before storing any of them.
func (s *Store) AppendTransactions(_ context.Context, rows []core.Transaction) error {
	for i, tx := range rows {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range rows {
		if tx.ID == "" {
			tx.ID = s.newID()
		}
		s.txs = append(s.txs, tx)
	}
	return nil
}

func (s *Store) ListRecurringRules(_ context.Context) ([]core.RecurringRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.RecurringRule(nil), s.rules...), nil
}

func (s *Store) UpdateRecurringRule(_ context.Context, rule core.RecurringRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].ID == rule.ID {
			s.rules[i] = rule
			return nil
		}
	}
	return fmt.Errorf("recurring rule %q: %w", rule.ID, ports.ErrNotFound)
}

func (s *Store) ListBills(_ context.Context) ([]core.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Bill(nil), s.bills...), nil
}

func (s *Store) UpdateBill(_ context.Context, bill core.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bills {
		if s.bills[i].ID == bill.ID {
			s.bills[i] = bill
			return nil
		}
	}
	return fmt.Errorf("bill %q: %w", bill.ID, ports.ErrNotFound)
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Budget(nil), s.budgets...), nil
}

func (s *Store) ListWallets(_ context.Context) ([]core.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Wallet(nil), s.wallets...), nil
}

func (s *Store) ListCategories(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.categories...), nil
}

func claimKey(ruleKey string, year, month int) string {
	return fmt.Sprintf("%s|%04d-%02d", ruleKey, year, month)
}

func (s *Store) ClaimExecution(_ context.Context, ruleKey string, year, month int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := claimKey(ruleKey, year, month)
	if _, taken := s.claims[key]; taken {
		return false, nil
	}
	s.claims[key] = struct{}{}
	return true, nil
}

func (s *Store) ReleaseExecution(_ context.Context, ruleKey string, year, month int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claims, claimKey(ruleKey, year, month))
	return nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

// dedupe drops blanks and repeats, keeping first-seen order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
