package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"dompet/internal/core"
	ports "dompet/internal/sheets"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Ensure interface conformance
var (
	_ ports.LedgerStore      = (*SQLiteRepository)(nil)
	_ ports.ExecutionClaimer = (*SQLiteRepository)(nil)
)

const isoDate = "2006-01-02"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		d, err := core.ParseDate(row.TxDate)
		if err != nil {
			slog.WarnContext(ctx, "Skipping transaction with bad date", "id", row.ID, "date", row.TxDate)
			continue
		}
		out = append(out, core.Transaction{
			ID:       row.ID,
			Date:     d,
			Type:     core.ParseTxType(row.TxType),
			Wallet:   row.Wallet,
			Amount:   row.Amount,
			Note:     row.Note,
			Category: row.Category,
			LinkID:   row.LinkID,
		})
	}
	return out, nil
}

// AppendTransactions inserts all rows inside one SQL transaction.
func (r *SQLiteRepository) AppendTransactions(ctx context.Context, txs []core.Transaction) error {
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}

	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	q := r.queries.WithTx(sqlTx)
	for _, tx := range txs {
		id := tx.ID
		if id == "" {
			id = uuid.NewString()
		}
		if err := q.InsertTransaction(ctx, TransactionRow{
			ID:       id,
			TxDate:   tx.Date.Format(isoDate),
			TxType:   string(tx.Type),
			Wallet:   tx.Wallet,
			Amount:   tx.Amount,
			Note:     tx.Note,
			Category: tx.Category,
			LinkID:   tx.LinkID,
		}); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transactions saved to SQLite", "rows", len(txs))
	return nil
}

func (r *SQLiteRepository) ListRecurringRules(ctx context.Context) ([]core.RecurringRule, error) {
	rows, err := r.queries.ListRecurringRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recurring rules: %w", err)
	}
	out := make([]core.RecurringRule, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.RecurringRule{
			ID:             strconv.FormatInt(row.ID, 10),
			Name:           row.Name,
			Type:           core.ParseTxType(row.TxType),
			FromWallet:     row.FromWallet,
			ToWallet:       row.ToWallet,
			Wallet:         row.Wallet,
			Category:       row.Category,
			Amount:         row.Amount,
			ExecutionDay:   int(row.ExecutionDay),
			Status:         core.ParseRuleStatus(row.Status),
			LastExecutedOn: parseNullDate(row.LastExecutedOn),
		})
	}
	return out, nil
}

// AddRecurringRule stores a new rule and returns its ID.
func (r *SQLiteRepository) AddRecurringRule(ctx context.Context, rule core.RecurringRule) (string, error) {
	if err := rule.Validate(); err != nil {
		return "", err
	}
	id, err := r.queries.InsertRecurringRule(ctx, ruleRow(rule))
	if err != nil {
		return "", fmt.Errorf("insert recurring rule: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (r *SQLiteRepository) UpdateRecurringRule(ctx context.Context, rule core.RecurringRule) error {
	row := ruleRow(rule)
	id, err := strconv.ParseInt(rule.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("recurring rule %q: %w", rule.ID, ports.ErrNotFound)
	}
	row.ID = id
	n, err := r.queries.UpdateRecurringRule(ctx, row)
	if err != nil {
		return fmt.Errorf("update recurring rule: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("recurring rule %q: %w", rule.ID, ports.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) ListBills(ctx context.Context) ([]core.Bill, error) {
	rows, err := r.queries.ListBills(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	out := make([]core.Bill, 0, len(rows))
	for _, row := range rows {
		b := core.Bill{
			ID:         strconv.FormatInt(row.ID, 10),
			Name:       row.Name,
			Amount:     row.Amount,
			Due:        core.BillDue{Day: int(row.DueDay)},
			LastPaidOn: parseNullDate(row.LastPaidOn),
		}
		if d := parseNullDate(row.DueDate); d != nil {
			b.Due = core.BillDue{Date: *d}
		}
		out = append(out, b)
	}
	return out, nil
}

// AddBill stores a new bill and returns its ID.
func (r *SQLiteRepository) AddBill(ctx context.Context, bill core.Bill) (string, error) {
	id, err := r.queries.InsertBill(ctx, billRow(bill))
	if err != nil {
		return "", fmt.Errorf("insert bill: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (r *SQLiteRepository) UpdateBill(ctx context.Context, bill core.Bill) error {
	row := billRow(bill)
	id, err := strconv.ParseInt(bill.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("bill %q: %w", bill.ID, ports.ErrNotFound)
	}
	row.ID = id
	n, err := r.queries.UpdateBill(ctx, row)
	if err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("bill %q: %w", bill.ID, ports.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.queries.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	out := make([]core.Budget, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.Budget{Category: row.Category, MonthlyLimit: row.MonthlyLimit})
	}
	return out, nil
}

// SetBudget creates or replaces the monthly limit of a category.
func (r *SQLiteRepository) SetBudget(ctx context.Context, b core.Budget) error {
	if b.MonthlyLimit < 0 {
		return core.ErrInvalidAmount
	}
	if err := r.queries.UpsertBudget(ctx, b.Category, b.MonthlyLimit); err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListWallets(ctx context.Context) ([]core.Wallet, error) {
	rows, err := r.queries.ListWallets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	out := make([]core.Wallet, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.Wallet{Name: row.Name, Logo: row.Logo})
	}
	return out, nil
}

func (r *SQLiteRepository) AddWallet(ctx context.Context, w core.Wallet) error {
	if err := r.queries.UpsertWallet(ctx, w.Name, w.Logo); err != nil {
		return fmt.Errorf("upsert wallet: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]string, error) {
	cats, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (r *SQLiteRepository) AddCategory(ctx context.Context, name string) error {
	if err := r.queries.InsertCategory(ctx, name); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ClaimExecution(ctx context.Context, ruleKey string, year, month int) (bool, error) {
	n, err := r.queries.ClaimExecution(ctx, ruleKey, year, month)
	if err != nil {
		return false, fmt.Errorf("claim execution: %w", err)
	}
	return n == 1, nil
}

func (r *SQLiteRepository) ReleaseExecution(ctx context.Context, ruleKey string, year, month int) error {
	if err := r.queries.ReleaseExecution(ctx, ruleKey, year, month); err != nil {
		return fmt.Errorf("release execution: %w", err)
	}
	slog.WarnContext(ctx, "Recurring execution claim released", "rule", ruleKey, "year", year, "month", month)
	return nil
}

func ruleRow(rule core.RecurringRule) RecurringRuleRow {
	return RecurringRuleRow{
		Name:           rule.Name,
		TxType:         string(rule.Type),
		FromWallet:     rule.FromWallet,
		ToWallet:       rule.ToWallet,
		Wallet:         rule.Wallet,
		Category:       rule.Category,
		Amount:         rule.Amount,
		ExecutionDay:   int64(rule.ExecutionDay),
		Status:         string(rule.Status),
		LastExecutedOn: nullDate(rule.LastExecutedOn),
	}
}

func billRow(b core.Bill) BillRow {
	row := BillRow{
		Name:       b.Name,
		Amount:     b.Amount,
		DueDay:     int64(b.Due.Day),
		LastPaidOn: nullDate(b.LastPaidOn),
	}
	if b.Due.OneTime() {
		row.DueDay = 0
		row.DueDate = nullDate(&b.Due.Date)
	}
	return row
}

func nullDate(d *core.Date) sql.NullString {
	if d == nil || d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Format(isoDate), Valid: true}
}

func parseNullDate(s sql.NullString) *core.Date {
	if !s.Valid {
		return nil
	}
	d, err := core.ParseDate(s.String)
	if err != nil {
		return nil
	}
	return &d
}
