package google

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"dompet/internal/core"
)

// Header names used by the spreadsheet. Lookups are case-insensitive.
const (
	colDate        = "Tanggal"
	colNote        = "Keterangan"
	colCategory    = "Kategori"
	colType        = "Tipe"
	colWallet      = "Dompet"
	colAmount      = "Jumlah"
	colLinkID      = "LinkID"
	colName        = "Nama"
	colLastPaid    = "TerakhirDibayar"
	colLimit       = "Limit"
	colLogo        = "Logo"
	colFromWallet  = "DariDompet"
	colToWallet    = "KeDompet"
	colExecDay     = "TanggalEksekusi"
	colStatus      = "Status"
	colLastExecute = "TerakhirDijalankan"
)

// transactionHeaders is written when the ledger sheet has no header row yet.
var transactionHeaders = []string{colDate, colNote, colCategory, colType, colWallet, colAmount, colLinkID}

// table is a header-indexed view over a values matrix whose first row holds
// the column names.
type table struct {
	headers []string
	index   map[string]int
	rows    [][]string
}

func newTable(values [][]interface{}) table {
	t := table{index: map[string]int{}}
	if len(values) == 0 {
		return t
	}
	t.headers = toStrings(values[0])
	for i, h := range t.headers {
		key := strings.ToLower(h)
		if _, dup := t.index[key]; !dup && key != "" {
			t.index[key] = i
		}
	}
	for _, row := range values[1:] {
		t.rows = append(t.rows, toStrings(row))
	}
	return t
}

func (t table) get(row []string, col string) string {
	i, ok := t.index[strings.ToLower(col)]
	if !ok {
		return ""
	}
	return safeGet(row, i)
}

func (t table) has(col string) bool {
	_, ok := t.index[strings.ToLower(col)]
	return ok
}

// sheetRow converts a data row index into its 1-based sheet row number.
func sheetRow(i int) int { return i + 2 }

// rowID is the identifier a sheet-backed record carries: its row number.
func rowID(i int) string { return strconv.Itoa(sheetRow(i)) }

// parseRupiah reads amounts as written by people or by the Sheets UI:
// "50000", "50.000", "Rp 50.000", "-Rp 5.000", "Rp 150.000,00". Dots group
// thousands and a comma starts the fraction, which is rounded off.
func parseRupiah(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	whole, frac, _ := strings.Cut(s, ",")
	digits := onlyDigits(whole)
	if digits == "" {
		return 0, false
	}
	if f := onlyDigits(frac); f != "" {
		digits += "." + f
	}
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return 0, false
	}
	if strings.HasPrefix(s, "-") {
		d = d.Neg()
	}
	return d.Round(0).IntPart(), true
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// optionalRupiah reads an amount column that may be left blank.
func optionalRupiah(s string) (int64, bool) {
	if strings.TrimSpace(s) == "" {
		return 0, true
	}
	return parseRupiah(s)
}

func parseOptionalDate(s string) *core.Date {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return nil
	}
	return &d
}

// parseTransactions returns the ledger rows and the number of rows skipped
// for an unreadable date or amount.
func parseTransactions(values [][]interface{}) ([]core.Transaction, int) {
	t := newTable(values)
	var (
		out     []core.Transaction
		skipped int
	)
	for i, row := range t.rows {
		if isBlank(row) {
			continue
		}
		d, err := core.ParseDate(t.get(row, colDate))
		if err != nil {
			skipped++
			continue
		}
		amount, ok := parseRupiah(t.get(row, colAmount))
		if !ok {
			skipped++
			continue
		}
		out = append(out, core.Transaction{
			ID:       rowID(i),
			Date:     d,
			Type:     core.ParseTxType(t.get(row, colType)),
			Wallet:   t.get(row, colWallet),
			Amount:   amount,
			Note:     t.get(row, colNote),
			Category: t.get(row, colCategory),
			LinkID:   t.get(row, colLinkID),
		})
	}
	return out, skipped
}

// parseBills returns the bills and the number of rows skipped for an
// unreadable amount. A blank amount is a bill without a fixed amount.
func parseBills(values [][]interface{}) ([]core.Bill, int) {
	t := newTable(values)
	var (
		out     []core.Bill
		skipped int
	)
	for i, row := range t.rows {
		name := t.get(row, colName)
		if name == "" {
			continue
		}
		amount, ok := optionalRupiah(t.get(row, colAmount))
		if !ok {
			skipped++
			continue
		}
		out = append(out, core.Bill{
			ID:         rowID(i),
			Name:       name,
			Amount:     amount,
			Due:        parseBillDue(t.get(row, colDate)),
			LastPaidOn: parseOptionalDate(t.get(row, colLastPaid)),
		})
	}
	return out, skipped
}

// parseBillDue accepts a bare day of month or a full date.
func parseBillDue(s string) core.BillDue {
	s = strings.TrimSpace(s)
	if day, err := strconv.Atoi(s); err == nil {
		return core.BillDue{Day: day}
	}
	if d := parseOptionalDate(s); d != nil {
		return core.BillDue{Date: *d}
	}
	return core.BillDue{}
}

// parseRules returns the rules and the number of rows skipped for an
// unreadable amount.
func parseRules(values [][]interface{}) ([]core.RecurringRule, int) {
	t := newTable(values)
	var (
		out     []core.RecurringRule
		skipped int
	)
	for i, row := range t.rows {
		name := t.get(row, colName)
		if name == "" {
			continue
		}
		amount, ok := parseRupiah(t.get(row, colAmount))
		if !ok {
			skipped++
			continue
		}
		typ := core.ParseTxType(t.get(row, colType))
		day, _ := strconv.Atoi(t.get(row, colExecDay))
		r := core.RecurringRule{
			ID:             rowID(i),
			Name:           name,
			Type:           typ,
			Category:       t.get(row, colCategory),
			Amount:         amount,
			ExecutionDay:   day,
			Status:         core.ParseRuleStatus(t.get(row, colStatus)),
			LastExecutedOn: parseOptionalDate(t.get(row, colLastExecute)),
		}
		if typ == core.Transfer {
			r.FromWallet = t.get(row, colFromWallet)
			r.ToWallet = t.get(row, colToWallet)
		} else {
			// Income and expense rules name their wallet in the DariDompet column.
			r.Wallet = t.get(row, colFromWallet)
		}
		out = append(out, r)
	}
	return out, skipped
}

// parseBudgets returns the budgets and the number of rows skipped for an
// unreadable limit. A blank limit means no limit.
func parseBudgets(values [][]interface{}) ([]core.Budget, int) {
	t := newTable(values)
	var (
		out     []core.Budget
		skipped int
	)
	for _, row := range t.rows {
		cat := t.get(row, colCategory)
		if cat == "" {
			continue
		}
		limit, ok := optionalRupiah(t.get(row, colLimit))
		if !ok {
			skipped++
			continue
		}
		out = append(out, core.Budget{Category: cat, MonthlyLimit: limit})
	}
	return out, skipped
}

func parseWallets(values [][]interface{}) []core.Wallet {
	t := newTable(values)
	var out []core.Wallet
	seen := map[string]struct{}{}
	for _, row := range t.rows {
		name := t.get(row, colName)
		key := strings.ToUpper(name)
		if name == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, core.Wallet{Name: name, Logo: t.get(row, colLogo)})
	}
	return out
}

// formatRow lays fields out in the sheet's own header order. Columns the
// sheet has that fields does not name are left empty.
func formatRow(headers []string, fields map[string]any) []interface{} {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = ""
		for k, v := range fields {
			if strings.EqualFold(k, strings.TrimSpace(h)) {
				row[i] = v
				break
			}
		}
	}
	return row
}

func transactionFields(tx core.Transaction) map[string]any {
	return map[string]any{
		colDate:     tx.Date.String(),
		colNote:     tx.Note,
		colCategory: tx.Category,
		colType:     string(tx.Type),
		colWallet:   tx.Wallet,
		colAmount:   tx.Amount,
		colLinkID:   tx.LinkID,
	}
}

func ruleFields(r core.RecurringRule) map[string]any {
	from := r.Wallet
	if r.Type == core.Transfer {
		from = r.FromWallet
	}
	last := ""
	if r.LastExecutedOn != nil {
		last = r.LastExecutedOn.String()
	}
	return map[string]any{
		colName:        r.Name,
		colType:        string(r.Type),
		colFromWallet:  from,
		colToWallet:    r.ToWallet,
		colCategory:    r.Category,
		colAmount:      r.Amount,
		colExecDay:     r.ExecutionDay,
		colStatus:      string(r.Status),
		colLastExecute: last,
	}
}

func billFields(b core.Bill) map[string]any {
	var due any = b.Due.Day
	if b.Due.OneTime() {
		due = b.Due.Date.String()
	}
	last := ""
	if b.LastPaidOn != nil {
		last = b.LastPaidOn.String()
	}
	return map[string]any{
		colName:     b.Name,
		colAmount:   b.Amount,
		colDate:     due,
		colLastPaid: last,
	}
}

// parseRowID recovers the sheet row number from a record ID.
func parseRowID(id string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil || n < 2 {
		return 0, fmt.Errorf("invalid row id %q", id)
	}
	return n, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

// columnLetter converts a 1-based column number to its A1 letters.
func columnLetter(n int) string {
	var s []byte
	for n > 0 {
		n--
		s = append([]byte{byte('A' + n%26)}, s...)
		n /= 26
	}
	return string(s)
}
