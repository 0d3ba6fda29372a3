// Package core provides the ledger domain types and amount handling.
//
// This file contains the chat amount grammar ("15rb", "2.5jt", "150.000")
// and the rupiah formatting used in replies.
package core

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrNotAmount is returned when a token is not a valid amount.
var ErrNotAmount = errors.New("not an amount")

var (
	suffixAmount = regexp.MustCompile(`^([0-9]+(?:[.,][0-9]+)?)\s?(k|rb|ribu|jt|juta)$`)

	multipliers = map[string]int64{
		"k":    1_000,
		"rb":   1_000,
		"ribu": 1_000,
		"jt":   1_000_000,
		"juta": 1_000_000,
	}

	maxAmount = decimal.NewFromInt(math.MaxInt64)

	idPrinter = message.NewPrinter(language.Indonesian)
)

// ParseAmount converts a chat token into a whole rupiah amount.
//
// With a magnitude suffix the number may carry a decimal part (comma or dot)
// and the product is rounded half-up. Without a suffix, dots and commas are
// thousand separators and the rest must be digits.
//
// Examples:
//   ParseAmount("15rb")    -> 15000
//   ParseAmount("2,5jt")   -> 2500000
//   ParseAmount("150.000") -> 150000
//   ParseAmount("abc")     -> ErrNotAmount
func ParseAmount(token string) (int64, error) {
	s := strings.ToLower(strings.TrimSpace(token))
	if s == "" {
		return 0, ErrNotAmount
	}

	if m := suffixAmount.FindStringSubmatch(s); m != nil {
		n, err := decimal.NewFromString(strings.Replace(m[1], ",", ".", 1))
		if err != nil {
			return 0, ErrNotAmount
		}
		v := n.Mul(decimal.NewFromInt(multipliers[m[2]])).Round(0)
		if v.GreaterThan(maxAmount) {
			return 0, ErrNotAmount
		}
		return v.IntPart(), nil
	}

	digits := strings.NewReplacer(".", "", ",", "").Replace(s)
	if digits == "" {
		return 0, ErrNotAmount
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, ErrNotAmount
		}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, ErrNotAmount
	}
	return n, nil
}

// FormatIDR renders an amount the way id-ID currency formatting does,
// e.g. "Rp 15.000" or "-Rp 5.000".
func FormatIDR(amount int64) string {
	if amount < 0 {
		return "-Rp " + idPrinter.Sprintf("%d", -amount)
	}
	return "Rp " + idPrinter.Sprintf("%d", amount)
}
