package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Row shapes mirror the tables one to one.

type TransactionRow struct {
	ID       string
	TxDate   string
	TxType   string
	Wallet   string
	Amount   int64
	Note     string
	Category string
	LinkID   string
}

type RecurringRuleRow struct {
	ID             int64
	Name           string
	TxType         string
	FromWallet     string
	ToWallet       string
	Wallet         string
	Category       string
	Amount         int64
	ExecutionDay   int64
	Status         string
	LastExecutedOn sql.NullString
}

type BillRow struct {
	ID         int64
	Name       string
	Amount     int64
	DueDay     int64
	DueDate    sql.NullString
	LastPaidOn sql.NullString
}

type BudgetRow struct {
	Category     string
	MonthlyLimit int64
}

type WalletRow struct {
	Name string
	Logo string
}

const listTransactions = `SELECT id, tx_date, tx_type, wallet, amount, note, category, link_id
FROM transactions ORDER BY tx_date, created_at, rowid`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(&i.ID, &i.TxDate, &i.TxType, &i.Wallet, &i.Amount, &i.Note, &i.Category, &i.LinkID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const insertTransaction = `INSERT INTO transactions (id, tx_date, tx_type, wallet, amount, note, category, link_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertTransaction(ctx context.Context, r TransactionRow) error {
	_, err := q.db.ExecContext(ctx, insertTransaction, r.ID, r.TxDate, r.TxType, r.Wallet, r.Amount, r.Note, r.Category, r.LinkID)
	return err
}

const listRecurringRules = `SELECT id, name, tx_type, from_wallet, to_wallet, wallet, category, amount, execution_day, status, last_executed_on
FROM recurring_rules ORDER BY id`

func (q *Queries) ListRecurringRules(ctx context.Context) ([]RecurringRuleRow, error) {
	rows, err := q.db.QueryContext(ctx, listRecurringRules)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecurringRuleRow
	for rows.Next() {
		var i RecurringRuleRow
		if err := rows.Scan(&i.ID, &i.Name, &i.TxType, &i.FromWallet, &i.ToWallet, &i.Wallet,
			&i.Category, &i.Amount, &i.ExecutionDay, &i.Status, &i.LastExecutedOn); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const insertRecurringRule = `INSERT INTO recurring_rules (name, tx_type, from_wallet, to_wallet, wallet, category, amount, execution_day, status, last_executed_on)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertRecurringRule(ctx context.Context, r RecurringRuleRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertRecurringRule, r.Name, r.TxType, r.FromWallet, r.ToWallet, r.Wallet,
		r.Category, r.Amount, r.ExecutionDay, r.Status, r.LastExecutedOn)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const updateRecurringRule = `UPDATE recurring_rules SET name = ?, tx_type = ?, from_wallet = ?, to_wallet = ?, wallet = ?,
category = ?, amount = ?, execution_day = ?, status = ?, last_executed_on = ? WHERE id = ?`

func (q *Queries) UpdateRecurringRule(ctx context.Context, r RecurringRuleRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateRecurringRule, r.Name, r.TxType, r.FromWallet, r.ToWallet, r.Wallet,
		r.Category, r.Amount, r.ExecutionDay, r.Status, r.LastExecutedOn, r.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listBills = `SELECT id, name, amount, due_day, due_date, last_paid_on FROM bills ORDER BY id`

func (q *Queries) ListBills(ctx context.Context) ([]BillRow, error) {
	rows, err := q.db.QueryContext(ctx, listBills)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BillRow
	for rows.Next() {
		var i BillRow
		if err := rows.Scan(&i.ID, &i.Name, &i.Amount, &i.DueDay, &i.DueDate, &i.LastPaidOn); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const insertBill = `INSERT INTO bills (name, amount, due_day, due_date, last_paid_on) VALUES (?, ?, ?, ?, ?)`

func (q *Queries) InsertBill(ctx context.Context, r BillRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertBill, r.Name, r.Amount, r.DueDay, r.DueDate, r.LastPaidOn)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const updateBill = `UPDATE bills SET name = ?, amount = ?, due_day = ?, due_date = ?, last_paid_on = ? WHERE id = ?`

func (q *Queries) UpdateBill(ctx context.Context, r BillRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateBill, r.Name, r.Amount, r.DueDay, r.DueDate, r.LastPaidOn, r.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listBudgets = `SELECT category, monthly_limit FROM budgets ORDER BY category`

func (q *Queries) ListBudgets(ctx context.Context) ([]BudgetRow, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BudgetRow
	for rows.Next() {
		var i BudgetRow
		if err := rows.Scan(&i.Category, &i.MonthlyLimit); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertBudget = `INSERT INTO budgets (category, monthly_limit) VALUES (?, ?)
ON CONFLICT(category) DO UPDATE SET monthly_limit = excluded.monthly_limit`

func (q *Queries) UpsertBudget(ctx context.Context, category string, limit int64) error {
	_, err := q.db.ExecContext(ctx, upsertBudget, category, limit)
	return err
}

const listWallets = `SELECT name, logo FROM wallets ORDER BY position, name`

func (q *Queries) ListWallets(ctx context.Context) ([]WalletRow, error) {
	rows, err := q.db.QueryContext(ctx, listWallets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WalletRow
	for rows.Next() {
		var i WalletRow
		if err := rows.Scan(&i.Name, &i.Logo); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertWallet = `INSERT INTO wallets (name, logo, position)
VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM wallets))
ON CONFLICT(name) DO UPDATE SET logo = excluded.logo`

func (q *Queries) UpsertWallet(ctx context.Context, name, logo string) error {
	_, err := q.db.ExecContext(ctx, upsertWallet, name, logo)
	return err
}

const listCategories = `SELECT name FROM categories ORDER BY position, name`

func (q *Queries) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		items = append(items, name)
	}
	return items, rows.Err()
}

const insertCategory = `INSERT OR IGNORE INTO categories (name, position)
VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM categories))`

func (q *Queries) InsertCategory(ctx context.Context, name string) error {
	_, err := q.db.ExecContext(ctx, insertCategory, name)
	return err
}

const claimExecution = `INSERT OR IGNORE INTO recurring_executions (rule_key, year, month) VALUES (?, ?, ?)`

// ClaimExecution returns the number of rows inserted: 1 when the claim was
// taken, 0 when it already existed.
func (q *Queries) ClaimExecution(ctx context.Context, ruleKey string, year, month int) (int64, error) {
	res, err := q.db.ExecContext(ctx, claimExecution, ruleKey, year, month)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const releaseExecution = `DELETE FROM recurring_executions WHERE rule_key = ? AND year = ? AND month = ?`

func (q *Queries) ReleaseExecution(ctx context.Context, ruleKey string, year, month int) error {
	_, err := q.db.ExecContext(ctx, releaseExecution, ruleKey, year, month)
	return err
}
