package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"dompet/internal/cache"
	"dompet/internal/core"
	ports "dompet/internal/sheets"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Sheet titles used by the spreadsheet layout.
const (
	DefaultBillsSheet     = "Tagihan"
	DefaultBudgetsSheet   = "Anggaran"
	DefaultRecurringSheet = "RecurringTransactions"
	DefaultWalletsSheet   = "Wallets"
)

type Options struct {
	SpreadsheetID string
	// TransactionsSheet defaults to the first sheet of the spreadsheet.
	TransactionsSheet string
	BillsSheet        string
	BudgetsSheet      string
	RecurringSheet    string
	WalletsSheet      string
	// ReferenceTTL bounds how long budget and wallet tables are cached.
	ReferenceTTL time.Duration
}

type Client struct {
	svc  *gsheet.Service
	opts Options

	// ledger sheet title, resolved on first use when not configured
	mu          sync.Mutex
	ledgerSheet string

	refs *cache.LRUCache[[][]interface{}]
}

// Ensure interface conformance
var (
	_ ports.LedgerStore        = (*Client)(nil)
	_ ports.ReferenceRefresher = (*Client)(nil)
)

// Credentials locates a service account key. JSON wins over File.
type Credentials struct {
	JSON string
	File string
}

// CredentialsFromEnv reads GOOGLE_SERVICE_ACCOUNT_JSON, then
// GOOGLE_SERVICE_ACCOUNT_FILE, then GOOGLE_APPLICATION_CREDENTIALS.
func CredentialsFromEnv() Credentials {
	c := Credentials{
		JSON: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")),
		File: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")),
	}
	if c.JSON == "" && c.File == "" {
		c.File = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	return c
}

// NewFromEnv creates a Sheets client using environment variables and a
// service account.
// Required: GOOGLE_SPREADSHEET_ID
// Optional: GOOGLE_SHEET_NAME (ledger sheet, default first sheet),
// SHEETS_REFERENCE_TTL (default 5m).
func NewFromEnv(ctx context.Context) (*Client, error) {
	ttl := 5 * time.Minute
	if v := strings.TrimSpace(os.Getenv("SHEETS_REFERENCE_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			ttl = d
		}
	}
	return Open(ctx, Options{
		SpreadsheetID:     strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID")),
		TransactionsSheet: strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME")),
		ReferenceTTL:      ttl,
	}, CredentialsFromEnv())
}

// Open authenticates with creds and returns a client for opts.
func Open(ctx context.Context, opts Options, creds Credentials) (*Client, error) {
	if opts.SpreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return New(svc, opts), nil
}

// New wraps an existing Sheets service. Empty sheet names take the defaults.
func New(svc *gsheet.Service, opts Options) *Client {
	if opts.BillsSheet == "" {
		opts.BillsSheet = DefaultBillsSheet
	}
	if opts.BudgetsSheet == "" {
		opts.BudgetsSheet = DefaultBudgetsSheet
	}
	if opts.RecurringSheet == "" {
		opts.RecurringSheet = DefaultRecurringSheet
	}
	if opts.WalletsSheet == "" {
		opts.WalletsSheet = DefaultWalletsSheet
	}
	if opts.ReferenceTTL <= 0 {
		opts.ReferenceTTL = 5 * time.Minute
	}
	return &Client{
		svc:         svc,
		opts:        opts,
		ledgerSheet: opts.TransactionsSheet,
		refs:        cache.NewLRUCache[[][]interface{}](8, opts.ReferenceTTL),
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, creds Credentials) (*gsheet.Service, error) {
	serviceAccountJSON, serviceAccountFile := creds.JSON, creds.File

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials: set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) ready() error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	return nil
}

// transactionsSheet returns the ledger sheet title, falling back to the
// spreadsheet's first sheet.
func (c *Client) transactionsSheet(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ledgerSheet != "" {
		return c.ledgerSheet, nil
	}
	ss, err := c.svc.Spreadsheets.Get(c.opts.SpreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil {
		return "", errors.New("spreadsheet has no sheets")
	}
	c.ledgerSheet = ss.Sheets[0].Properties.Title
	return c.ledgerSheet, nil
}

func (c *Client) readSheet(ctx context.Context, sheet string) ([][]interface{}, error) {
	rng := fmt.Sprintf("%s!A:Z", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.opts.SpreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

// readReference serves small lookup sheets through the TTL cache.
func (c *Client) readReference(ctx context.Context, sheet string) ([][]interface{}, error) {
	return c.refs.GetOrLoad(sheet, func() ([][]interface{}, error) {
		return c.readSheet(ctx, sheet)
	})
}

// InvalidateReferences drops every cached lookup table.
func (c *Client) InvalidateReferences() {
	c.refs.Purge()
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	sheet, err := c.transactionsSheet(ctx)
	if err != nil {
		return nil, err
	}
	values, err := c.readSheet(ctx, sheet)
	if err != nil {
		return nil, err
	}
	txs, skipped := parseTransactions(values)
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped ledger rows with unreadable dates or amounts", "sheet", sheet, "skipped", skipped)
	}
	return txs, nil
}

// AppendTransactions writes every row with a single append call, so the
// Sheets API applies them together or not at all.
func (c *Client) AppendTransactions(ctx context.Context, txs []core.Transaction) error {
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	if err := c.ready(); err != nil {
		return err
	}
	sheet, err := c.transactionsSheet(ctx)
	if err != nil {
		return err
	}

	headerResp, err := c.svc.Spreadsheets.Values.Get(c.opts.SpreadsheetID, fmt.Sprintf("%s!1:1", sheet)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", sheet, err)
	}

	var rows [][]interface{}
	headers := transactionHeaders
	if len(headerResp.Values) > 0 && len(headerResp.Values[0]) > 0 {
		headers = toStrings(headerResp.Values[0])
	} else {
		hdr := make([]interface{}, len(headers))
		for i, h := range headers {
			hdr[i] = h
		}
		rows = append(rows, hdr)
	}
	for _, tx := range txs {
		rows = append(rows, formatRow(headers, transactionFields(tx)))
	}

	rng := fmt.Sprintf("%s!A:%s", sheet, columnLetter(len(headers)))
	_, err = c.svc.Spreadsheets.Values.Append(c.opts.SpreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", sheet, err)
	}
	slog.InfoContext(ctx, "Transactions appended to sheet", "sheet", sheet, "rows", len(txs))
	return nil
}

func (c *Client) ListRecurringRules(ctx context.Context) ([]core.RecurringRule, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	values, err := c.readSheet(ctx, c.opts.RecurringSheet)
	if err != nil {
		return nil, err
	}
	rules, skipped := parseRules(values)
	logSkipped(ctx, c.opts.RecurringSheet, skipped)
	return rules, nil
}

func (c *Client) UpdateRecurringRule(ctx context.Context, rule core.RecurringRule) error {
	return c.updateRow(ctx, c.opts.RecurringSheet, rule.ID, ruleFields(rule))
}

func (c *Client) ListBills(ctx context.Context) ([]core.Bill, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	values, err := c.readSheet(ctx, c.opts.BillsSheet)
	if err != nil {
		return nil, err
	}
	bills, skipped := parseBills(values)
	logSkipped(ctx, c.opts.BillsSheet, skipped)
	return bills, nil
}

func (c *Client) UpdateBill(ctx context.Context, bill core.Bill) error {
	return c.updateRow(ctx, c.opts.BillsSheet, bill.ID, billFields(bill))
}

// updateRow rewrites one data row in header order. Only columns present in
// fields are overwritten; the rest keep their current values.
func (c *Client) updateRow(ctx context.Context, sheet, id string, fields map[string]any) error {
	if err := c.ready(); err != nil {
		return err
	}
	n, err := parseRowID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", err.Error(), ports.ErrNotFound)
	}
	values, err := c.readSheet(ctx, sheet)
	if err != nil {
		return err
	}
	t := newTable(values)
	dataIdx := n - 2
	if dataIdx >= len(t.rows) || len(t.headers) == 0 {
		return fmt.Errorf("%s row %d: %w", sheet, n, ports.ErrNotFound)
	}

	current := t.rows[dataIdx]
	next := formatRow(t.headers, fields)
	for i := range next {
		if s, ok := next[i].(string); ok && s == "" && !namesField(fields, t.headers[i]) {
			next[i] = safeGet(current, i)
		}
	}

	rng := fmt.Sprintf("%s!A%d:%s%d", sheet, n, columnLetter(len(t.headers)), n)
	_, err = c.svc.Spreadsheets.Values.Update(c.opts.SpreadsheetID, rng, &gsheet.ValueRange{Values: [][]interface{}{next}}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func namesField(fields map[string]any, header string) bool {
	for k := range fields {
		if strings.EqualFold(k, strings.TrimSpace(header)) {
			return true
		}
	}
	return false
}

func (c *Client) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	values, err := c.readReference(ctx, c.opts.BudgetsSheet)
	if err != nil {
		return nil, err
	}
	budgets, skipped := parseBudgets(values)
	logSkipped(ctx, c.opts.BudgetsSheet, skipped)
	return budgets, nil
}

func logSkipped(ctx context.Context, sheet string, skipped int) {
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped rows with unreadable amounts", "sheet", sheet, "skipped", skipped)
	}
}

// ListCategories returns the categories named on the budget sheet.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	budgets, err := c.ListBudgets(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, b.Category)
	}
	return out, nil
}

// ListWallets reads the wallet registry, serving the default registry when
// the sheet is missing or empty. Other read failures are returned.
func (c *Client) ListWallets(ctx context.Context) ([]core.Wallet, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	values, err := c.readReference(ctx, c.opts.WalletsSheet)
	if isMissingSheet(err) {
		slog.WarnContext(ctx, "Wallet sheet missing, using defaults", "sheet", c.opts.WalletsSheet)
		return ports.DefaultWallets, nil
	}
	if err != nil {
		return nil, err
	}
	wallets := parseWallets(values)
	if len(wallets) == 0 {
		return ports.DefaultWallets, nil
	}
	return wallets, nil
}

// isMissingSheet reports whether err is the API's answer to a range naming a
// sheet that does not exist.
func isMissingSheet(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "Unable to parse range")
}
