package services

import (
	"fmt"
	"strings"

	"dompet/internal/core"
)

const reminderHadith = `_"Ada tiga golongan yang tidak akan masuk surga: peminum khamar, pemutus hubungan silaturahmi, dan orang yang mengabaikan haknya (utang)." (HR. Tirmidzi)_ 💀`

// PendingBill is an unpaid bill with its distance to the due day.
type PendingBill struct {
	Bill core.Bill
	// DaysUntil is negative when overdue.
	DaysUntil int
}

// Status renders the due-state label shown next to a pending bill.
func (p PendingBill) Status() string {
	switch {
	case p.DaysUntil == 0:
		return "⚠️ HARI INI!"
	case p.DaysUntil < 0:
		return fmt.Sprintf("❌ Telat %d hari", -p.DaysUntil)
	default:
		return fmt.Sprintf("⏳ H-%d", p.DaysUntil)
	}
}

// PendingBills lists bills not paid for today's period, in store order.
func PendingBills(bills []core.Bill, today core.Date) []PendingBill {
	var out []PendingBill
	for _, b := range bills {
		if b.PaidFor(today) {
			continue
		}
		out = append(out, PendingBill{Bill: b, DaysUntil: b.DaysUntilDue(today)})
	}
	return out
}

// BillsDueToday lists unpaid bills that fall due exactly on today.
func BillsDueToday(bills []core.Bill, today core.Date) []core.Bill {
	var out []core.Bill
	for _, b := range bills {
		if b.DueOn(today) && !b.PaidFor(today) {
			out = append(out, b)
		}
	}
	return out
}

// FindBill returns the first bill whose name contains target,
// case-insensitively.
func FindBill(bills []core.Bill, target string) (core.Bill, bool) {
	target = strings.ToLower(strings.TrimSpace(target))
	if target == "" {
		return core.Bill{}, false
	}
	for _, b := range bills {
		if strings.Contains(strings.ToLower(b.Name), target) {
			return b, true
		}
	}
	return core.Bill{}, false
}

func billAmount(amount int64) string {
	if amount == 0 {
		return "Menyesuaikan"
	}
	return core.FormatIDR(amount)
}

// PendingBillsText is the reply to a bill query.
func PendingBillsText(pending []PendingBill) string {
	if len(pending) == 0 {
		return "🎉 Mantap bos! Semua tagihan bulan ini udah LUNAS. Tidur nyenyak."
	}
	var b strings.Builder
	b.WriteString("🧾 *TAGIHAN BELUM DIBAYAR*\n\n")
	for _, p := range pending {
		fmt.Fprintf(&b, "• %s: %s (%s)\n", p.Bill.Name, billAmount(p.Bill.Amount), p.Status())
	}
	b.WriteString("\nKetik \"Done [Nama]\" kalau udah dibayar.")
	return b.String()
}

// BillReminderText is the daily reminder for bills due today. It is empty
// when nothing is due.
func BillReminderText(due []core.Bill) string {
	if len(due) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("⚠️ *PUNTEN BOS MUDA, ADA TAGIHAN HARI INI!* ⚠️\n\n")
	for _, bill := range due {
		fmt.Fprintf(&b, "• %s: %s\n", bill.Name, billAmount(bill.Amount))
	}
	b.WriteString("\n" + reminderHadith + "\n\nJangan lupa bayar yaa wkwk")
	return b.String()
}

// AutoDebitText summarises a scheduler pass. It is empty when nothing ran.
func AutoDebitText(res RecurringResult) string {
	if res.Executed == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("🤖 *AUTO-DEBIT EXECUTED*\n\n")
	for _, line := range res.Details {
		b.WriteString(line + "\n")
	}
	fmt.Fprintf(&b, "\nTotal: %d transaksi otomatis dijalankan hari ini.", res.Executed)
	return b.String()
}
