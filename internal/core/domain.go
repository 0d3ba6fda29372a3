package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Income   TxType = "Masuk"
	Expense  TxType = "Keluar"
	Transfer TxType = "Transfer"

	RuleActive   RuleStatus = "Aktif"
	RuleInactive RuleStatus = "Nonaktif"
)

// Reserved category labels.
const (
	DefaultCategory  = "Lainnya"
	TransferCategory = "Transfer"
	BillCategory     = "Tagihan"
)

// dateLayout is the id-ID short date used by the ledger rows ("d/m/yyyy").
const dateLayout = "2/1/2006"

type (
	TxType     string
	RuleStatus string

	// Date is a calendar day with no time-of-day component.
	Date struct {
		time.Time
	}

	// Transaction is an immutable ledger row. Stored rows are always Income
	// or Expense; a transfer is two rows sharing a LinkID.
	Transaction struct {
		ID       string
		Date     Date
		Type     TxType
		Wallet   string
		Amount   int64
		Note     string
		Category string
		LinkID   string
	}

	RecurringRule struct {
		ID           string
		Name         string
		Type         TxType
		FromWallet   string // Transfer only
		ToWallet     string // Transfer only
		Wallet       string // Income/Expense
		Category     string
		Amount       int64
		ExecutionDay int
		Status       RuleStatus
		// LastExecutedOn is nil until the scheduler first runs the rule.
		LastExecutedOn *Date
	}

	// BillDue is either a day of month (recurring bill) or a full date
	// (one-time bill).
	BillDue struct {
		Day  int
		Date Date
	}

	Bill struct {
		ID         string
		Name       string
		Amount     int64 // 0 means variable
		Due        BillDue
		LastPaidOn *Date
	}

	Budget struct {
		Category     string
		MonthlyLimit int64
	}

	Wallet struct {
		Name string
		Logo string
	}
)

var (
	ErrInvalidDay    = errors.New("invalid day")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrEmptyWallet   = errors.New("empty wallet")
	ErrEmptyName     = errors.New("empty name")
	ErrSameWallet    = errors.New("transfer wallets must differ")
	ErrInvalidDate   = errors.New("invalid date")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate accepts "d/m/yyyy" (with or without zero padding) and "yyyy-mm-dd".
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	for _, layout := range []string{dateLayout, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// String renders the date in the ledger's id-ID form.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// SameMonth reports whether both dates fall in the same calendar month and year.
func (d Date) SameMonth(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month()
}

// DaysUntil returns the number of whole days from d to other (negative when other is earlier).
func (d Date) DaysUntil(other Date) int {
	return int(other.Sub(d.Time).Hours() / 24)
}

// Ptr returns a pointer to a copy of d.
func (d Date) Ptr() *Date {
	return &d
}

func (t TxType) Valid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

// ParseTxType maps the ledger's textual type onto TxType. Unknown values fall
// back to Expense, matching how rows are written.
func ParseTxType(s string) TxType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "masuk", "income":
		return Income
	case "transfer":
		return Transfer
	default:
		return Expense
	}
}

// ParseRuleStatus treats anything but an explicit active marker as inactive.
func ParseRuleStatus(s string) RuleStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "aktif", "active":
		return RuleActive
	default:
		return RuleInactive
	}
}

func (tx Transaction) Validate() error {
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	if tx.Type != Income && tx.Type != Expense {
		return ErrInvalidType
	}
	if strings.TrimSpace(tx.Wallet) == "" {
		return ErrEmptyWallet
	}
	if tx.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Signed returns the amount with the sign it contributes to its wallet balance.
func (tx Transaction) Signed() int64 {
	if tx.Type == Income {
		return tx.Amount
	}
	return -tx.Amount
}

// TransferLegs builds the two rows that represent a transfer: an expense on
// from and an income on to, both categorised as Transfer. They must be
// persisted together.
func TransferLegs(date Date, from, to string, amount int64, note string) [2]Transaction {
	if strings.TrimSpace(note) == "" {
		note = TransferCategory
	}
	link := uuid.NewString()
	return [2]Transaction{
		{
			ID:       uuid.NewString(),
			Date:     date,
			Type:     Expense,
			Wallet:   from,
			Amount:   amount,
			Note:     fmt.Sprintf("%s (ke %s)", note, to),
			Category: TransferCategory,
			LinkID:   link,
		},
		{
			ID:       uuid.NewString(),
			Date:     date,
			Type:     Income,
			Wallet:   to,
			Amount:   amount,
			Note:     fmt.Sprintf("%s (dari %s)", note, from),
			Category: TransferCategory,
			LinkID:   link,
		},
	}
}

func (r RecurringRule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if !r.Type.Valid() {
		return ErrInvalidType
	}
	if r.ExecutionDay < 1 || r.ExecutionDay > 31 {
		return ErrInvalidDay
	}
	if r.Amount < 0 {
		return ErrInvalidAmount
	}
	if r.Type == Transfer {
		if strings.TrimSpace(r.FromWallet) == "" || strings.TrimSpace(r.ToWallet) == "" {
			return ErrEmptyWallet
		}
		if strings.EqualFold(strings.TrimSpace(r.FromWallet), strings.TrimSpace(r.ToWallet)) {
			return ErrSameWallet
		}
		return nil
	}
	if strings.TrimSpace(r.Wallet) == "" {
		return ErrEmptyWallet
	}
	return nil
}

// OneTime reports whether the bill is due on a single calendar date.
func (d BillDue) OneTime() bool {
	return !d.Date.IsZero()
}

// PaidFor reports whether the bill counts as settled on today. Recurring
// bills reset every month; one-time bills stay paid once paid.
func (b Bill) PaidFor(today Date) bool {
	if b.LastPaidOn == nil {
		return false
	}
	if b.Due.OneTime() {
		return true
	}
	return b.LastPaidOn.SameMonth(today)
}

// DueOn reports whether the bill falls due exactly on today.
func (b Bill) DueOn(today Date) bool {
	if b.Due.OneTime() {
		return b.Due.Date.Equal(today.Time)
	}
	return b.Due.Day == today.Day()
}

// DaysUntilDue is negative when the bill is overdue.
func (b Bill) DaysUntilDue(today Date) int {
	if b.Due.OneTime() {
		return today.DaysUntil(b.Due.Date)
	}
	return b.Due.Day - today.Day()
}
