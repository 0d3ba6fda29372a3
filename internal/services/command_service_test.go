package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dompet/internal/command"
	"dompet/internal/core"
	"dompet/internal/sheets"
	"dompet/internal/sheets/memory"
)

func newTestService(t *testing.T) (*CommandService, *memory.Store) {
	t.Helper()
	store := memory.New(memory.Seed{
		Categories: []string{"Makanan", "Transportasi", "Tagihan"},
		Wallets:    sheets.DefaultWallets,
		Budgets:    []core.Budget{{Category: "Makanan", MonthlyLimit: 100000}},
		Bills: []core.Bill{
			{Name: "Listrik PLN", Due: core.BillDue{Day: 20}},
			{Name: "Wifi", Amount: 350000, Due: core.BillDue{Day: 10}},
		},
	})
	return NewCommandService(store, fixedClock(at(2025, 6, 15))), store
}

func TestHandleRecord(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	reply, err := svc.Handle(ctx, "Keluar bni 15000 makanan Bakso")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	want := "✅ *Transaksi berhasil dicatat!*\n💸 Keluar: Rp 15.000\n📍 Dompet: BNI\n📂 Kategori: Makanan\n📝 Bakso"
	if reply.Kind != command.Record || reply.Text != want {
		t.Fatalf("reply =\n%q\nwant\n%q", reply.Text, want)
	}

	txs, _ := store.ListTransactions(ctx)
	if len(txs) != 1 || txs[0].Wallet != "BNI" || txs[0].Category != "Makanan" || !txs[0].Date.Equal(core.NewDate(2025, 6, 15).Time) {
		t.Fatalf("unexpected stored row: %+v", txs)
	}
}

func TestHandleRecordBudgetWarning(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.Handle(ctx, "Keluar BNI 70rb Makanan Sushi"); err != nil {
		t.Fatalf("first: %v", err)
	}
	reply, err := svc.Handle(ctx, "Keluar GoPay 15rb Makanan Kopi")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !strings.Contains(reply.Text, "\n\n") || !strings.Contains(reply.Text, "WARNING BUDGET") {
		t.Fatalf("expected warning appended:\n%s", reply.Text)
	}

	reply, _ = svc.Handle(ctx, "Keluar GoPay 20rb Makanan Kopi")
	if !strings.Contains(reply.Text, "OVER BUDGET") {
		t.Fatalf("expected over budget:\n%s", reply.Text)
	}
}

func TestHandleRecordIncomeDefaultsCategory(t *testing.T) {
	svc, _ := newTestService(t)
	reply, err := svc.Handle(context.Background(), "Masuk Mandiri 2jt bonus proyek")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	for _, want := range []string{"💰 Masuk: Rp 2.000.000", "📂 Kategori: Lainnya", "📝 bonus proyek"} {
		if !strings.Contains(reply.Text, want) {
			t.Errorf("missing %q in:\n%s", want, reply.Text)
		}
	}
}

func TestHandleTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		svc, store := newTestService(t)
		reply, err := svc.Handle(ctx, "transfer bni gopay 50rb")
		if err != nil {
			t.Fatalf("handle: %v", err)
		}
		if reply.Text != "✅ *Transfer berhasil dicatat!*\n💸 Rp 50.000\n📤 BNI ➡ 📥 GoPay" {
			t.Fatalf("unexpected reply: %q", reply.Text)
		}
		txs, _ := store.ListTransactions(ctx)
		if len(txs) != 2 || txs[0].Type != core.Expense || txs[1].Type != core.Income || txs[0].LinkID != txs[1].LinkID {
			t.Fatalf("unexpected legs: %+v", txs)
		}
	})

	for _, msg := range []string{"transfer BNI OVO 50rb", "transfer BNI bni 50rb"} {
		t.Run(msg, func(t *testing.T) {
			svc, store := newTestService(t)
			reply, err := svc.Handle(ctx, msg)
			if err != nil {
				t.Fatalf("handle: %v", err)
			}
			if reply.Text != invalidTransferText {
				t.Fatalf("unexpected reply: %q", reply.Text)
			}
			if txs, _ := store.ListTransactions(ctx); len(txs) != 0 {
				t.Fatalf("nothing may be written: %+v", txs)
			}
		})
	}
}

func TestHandleBills(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	reply, _ := svc.Handle(ctx, "tagihan")
	if !strings.Contains(reply.Text, "Listrik PLN") || !strings.Contains(reply.Text, "Wifi") {
		t.Fatalf("bill list incomplete:\n%s", reply.Text)
	}

	reply, err := svc.Handle(ctx, "bayar listrik 125rb gopay")
	if err != nil {
		t.Fatalf("pay with amount: %v", err)
	}
	want := "✅ *TAGIHAN LUNAS & TERCATAT!*\n\n🧾 Tagihan: Listrik PLN\n💰 Nominal: Rp 125.000\n💸 Sumber: GoPay"
	if reply.Text != want {
		t.Fatalf("reply =\n%q\nwant\n%q", reply.Text, want)
	}
	txs, _ := store.ListTransactions(ctx)
	if len(txs) != 1 || txs[0].Note != "Bayar Tagihan Listrik PLN" || txs[0].Category != core.BillCategory {
		t.Fatalf("unexpected payment row: %+v", txs)
	}

	reply, _ = svc.Handle(ctx, "done wifi")
	if reply.Text != "✅ Mantab bos! *Wifi* udah LUNAS bulan ini (15/6/2025)." {
		t.Fatalf("unexpected done reply: %q", reply.Text)
	}

	reply, _ = svc.Handle(ctx, "tagihan")
	if !strings.Contains(reply.Text, "Semua tagihan bulan ini udah LUNAS") {
		t.Fatalf("all bills should be paid:\n%s", reply.Text)
	}

	reply, _ = svc.Handle(ctx, "lunas PDAM")
	if reply.Text != "❌ Gak nemu tagihan \"pdam\" bro." {
		t.Fatalf("unexpected not-found reply: %q", reply.Text)
	}
}

func TestHandleQueries(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	for _, msg := range []string{"Masuk BNI 1jt gaji", "Keluar BNI 55rb Makanan nasi padang"} {
		if _, err := svc.Handle(ctx, msg); err != nil {
			t.Fatalf("%s: %v", msg, err)
		}
	}

	reply, _ := svc.Handle(ctx, "kategori")
	if !strings.HasPrefix(reply.Text, "📂 *Kategori Tersedia:*\n\n- Makanan (Rp 55.000 / Rp 100.000)\n- Transportasi") {
		t.Fatalf("unexpected category reply:\n%s", reply.Text)
	}

	reply, _ = svc.Handle(ctx, "saldo")
	if !strings.Contains(reply.Text, "• BNI: Rp 945.000") {
		t.Fatalf("unexpected balance reply:\n%s", reply.Text)
	}
	reply, _ = svc.Handle(ctx, "cek bni")
	if !strings.Contains(reply.Text, "Saldo BNI") {
		t.Fatalf("unexpected filtered balance:\n%s", reply.Text)
	}

	reply, _ = svc.Handle(ctx, "laporan")
	if reply.Kind != command.ReportQuery || !strings.Contains(reply.Text, "Laporan Bulan Juni 2025") {
		t.Fatalf("unexpected report:\n%s", reply.Text)
	}

	reply, _ = svc.Handle(ctx, "halo bos")
	if reply.Kind != command.Unrecognized || reply.Text != command.HelpText {
		t.Fatalf("expected help text, got %q", reply.Text)
	}
}

func TestHandleStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := &faultyStore{Store: memory.New(memory.Seed{}), failAppend: true}
	svc := NewCommandService(store, fixedClock(at(2025, 6, 15)))

	_, err := svc.Handle(ctx, "Keluar BNI 10rb makan")
	if !errors.Is(err, ErrStore) || !errors.Is(err, errBoom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}

	store.failAppend = false
	store.failBillUpdate = true
	store.Store = memory.New(memory.Seed{Bills: []core.Bill{{Name: "Wifi", Due: core.BillDue{Day: 1}}}})
	if _, err := svc.Handle(ctx, "done wifi"); !errors.Is(err, ErrStore) {
		t.Fatalf("expected store error on bill update, got %v", err)
	}
}

func TestBudgetCheckSkippedWhenReadFails(t *testing.T) {
	ctx := context.Background()
	store := &faultyStore{Store: memory.New(memory.Seed{
		Categories: []string{"Makanan"},
		Budgets:    []core.Budget{{Category: "Makanan", MonthlyLimit: 1000}},
	})}
	svc := NewCommandService(store, fixedClock(at(2025, 6, 15)))
	store.failList = true

	reply, err := svc.Handle(ctx, "Keluar BNI 5000 Makanan Bakso")
	if err != nil {
		t.Fatalf("record must succeed without the budget check: %v", err)
	}
	if strings.Contains(reply.Text, "BUDGET") {
		t.Fatalf("no warning expected when history is unreadable:\n%s", reply.Text)
	}
}

func TestValidationReply(t *testing.T) {
	svc, _ := newTestService(t)
	reply, err := svc.Execute(context.Background(), command.Intent{Kind: command.Record, Type: core.Expense, Amount: 1, Note: "x"})
	if err != nil {
		t.Fatalf("validation must not be an error: %v", err)
	}
	if !strings.HasPrefix(reply.Text, "❌ Error: ") {
		t.Fatalf("unexpected reply: %q", reply.Text)
	}
}
