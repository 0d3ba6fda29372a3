// Package command turns free-text chat messages into typed intents.
//
// Classification is a priority-ordered decision table: every rule is a small
// matcher that either claims the message or declines it, and the first rule
// to claim it wins.
package command

import "dompet/internal/core"

// Kind identifies the intent variant.
type Kind int

const (
	Unrecognized Kind = iota
	Transfer
	Record
	PayBillWithAmount
	PayBill
	BillQuery
	CategoryQuery
	BalanceQuery
	ReportQuery
)

var kindNames = map[Kind]string{
	Unrecognized:      "unrecognized",
	Transfer:          "transfer",
	Record:            "record",
	PayBillWithAmount: "pay_bill_with_amount",
	PayBill:           "pay_bill",
	BillQuery:         "bill_query",
	CategoryQuery:     "category_query",
	BalanceQuery:      "balance_query",
	ReportQuery:       "report_query",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Intent is the parsed form of a message. Only the fields relevant to Kind
// are populated.
type Intent struct {
	Kind Kind

	// Record
	Type   core.TxType
	Wallet string // also: pay-with-amount source wallet, balance filter

	// Transfer
	FromWallet string
	ToWallet   string

	Amount int64
	Note   string

	// PayBill / PayBillWithAmount
	BillName string
}
