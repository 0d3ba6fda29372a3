package ledger

import (
	"fmt"
	"strings"

	"dompet/internal/core"
)

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

const separator = "------------------"

// MonthName returns the Indonesian name for month 1-12.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// MonthlyReport renders the chat report for ref's calendar month.
func MonthlyReport(txs []core.Transaction, ref core.Date) string {
	o := Summarize(txs, ref)

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Laporan Bulan %s %d*\n%s\n", MonthName(o.Month), o.Year, separator)
	fmt.Fprintf(&b, "💰 Masuk: %s\n", core.FormatIDR(o.Income))
	fmt.Fprintf(&b, "💸 Keluar: %s\n", core.FormatIDR(o.Expense))
	fmt.Fprintf(&b, "%s\n", separator)
	fmt.Fprintf(&b, "💼 *Net: %s*\n\n", core.FormatIDR(o.Net()))
	b.WriteString("🏆 *Top 3 Pengeluaran:*\n")
	if len(o.TopCategories) == 0 {
		b.WriteString("- Belum ada pengeluaran.")
		return b.String()
	}
	for i, c := range o.TopCategories {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s: %s", i+1, c.Name, core.FormatIDR(c.Amount))
	}
	return b.String()
}

// BalanceReport renders the balance table. A non-empty filter limits the
// table to the matching wallet.
func BalanceReport(rows []WalletBalance, filter string) string {
	if filter = strings.TrimSpace(filter); filter != "" {
		for _, r := range rows {
			if WalletKey(r.Name) == WalletKey(filter) {
				return fmt.Sprintf("💳 *Saldo %s*\n%s", r.Name, core.FormatIDR(r.Balance))
			}
		}
		return fmt.Sprintf("❌ Dompet \"%s\" gak ketemu bro.", filter)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Rekap Saldo Saat Ini*\n%s\n", separator)
	if len(rows) == 0 {
		b.WriteString("Belum ada data transaksi bro.")
		return b.String()
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "• %s: %s\n", r.Name, core.FormatIDR(r.Balance))
	}
	fmt.Fprintf(&b, "%s\n💰 *Total Aset: %s*", separator, core.FormatIDR(Total(rows)))
	return b.String()
}
