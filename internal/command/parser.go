package command

import (
	"regexp"
	"strings"

	"dompet/internal/core"
)

// HelpText is shown verbatim for unrecognized messages. Users memorise it,
// keep it stable.
const HelpText = "❌ Ngetik apa itu bos, nii kalo mau nyuruh gua!\n\nPerintah:\n" +
	"- \"Saldo\" (Cek Saldo)\n" +
	"- \"Tagihan\" (List Tagihan)\n" +
	"- \"Kategori\" (List Kategori)\n" +
	"- \"Keluar BNI 15000 Makanan Bakso\" (Catat + Kategori)\n" +
	"- \"Transfer BNI Mandiri 15000\" (Transfer)\n" +
	"- \"Masuk BNI 15000 Bakso\" (Catat)\n" +
	"- \"Bayar Listrik 30000 Gopay\" (Bayar Tagihan)\n" +
	"- \"Done Wifi (Bayar Tagihan)\"\n" +
	"- \"Laporan\" (Laporan Bulanan)"

// amountShape is the lexical form an amount token must have inside a
// bill-payment command: digits with separators and an optional suffix.
var amountShape = regexp.MustCompile(`^[0-9.,]+[a-zA-Z]*$`)

var (
	payVerbs       = []string{"bayar", "lunas", "done"}
	balanceWords   = []string{"saldo", "balance", "cek"}
	reportPhrases  = []string{"laporan", "recap", "cek laporan", "/laporan"}
	balancePrefix  = []string{"cek", "saldo"}
	typeTokens     = map[string]core.TxType{"masuk": core.Income, "keluar": core.Expense}
	transferToken  = "transfer"
	billKeyword    = "tagihan"
	categoryMarker = "kategori"
)

// message is the tokenised form every rule works on.
type message struct {
	raw    string   // whitespace-collapsed original text
	norm   string   // raw, lowercased
	tokens []string // original casing
}

func newMessage(text string) message {
	tokens := strings.Fields(text)
	raw := strings.Join(tokens, " ")
	return message{raw: raw, norm: strings.ToLower(raw), tokens: tokens}
}

type rule struct {
	name  string
	match func(message) (Intent, bool)
}

// rules is evaluated top to bottom; the first rule that claims a message wins.
var rules = []rule{
	{"transfer", matchTransfer},
	{"pay_bill_with_amount", matchPayBillWithAmount},
	{"pay_bill", matchPayBill},
	{"bill_query", matchBillQuery},
	{"category_query", matchCategoryQuery},
	{"balance_query", matchBalanceQuery},
	{"report_query", matchReportQuery},
	{"record", matchRecord},
}

// Parse classifies a chat message. It never fails: anything no rule claims
// comes back as Unrecognized.
func Parse(text string) Intent {
	m := newMessage(text)
	if len(m.tokens) == 0 {
		return Intent{Kind: Unrecognized}
	}
	for _, r := range rules {
		if in, ok := r.match(m); ok {
			return in
		}
	}
	return Intent{Kind: Unrecognized}
}

// matchTransfer claims any message carrying the transfer keyword. A malformed
// transfer is reported as Unrecognized rather than falling through, so it is
// never recorded as a plain expense.
func matchTransfer(m message) (Intent, bool) {
	idx := indexFold(m.tokens, transferToken)
	if idx < 0 {
		return Intent{}, false
	}
	rest := without(m.tokens, idx)
	if len(rest) < 3 {
		return Intent{Kind: Unrecognized}, true
	}
	from, to := rest[0], rest[1]
	tail := rest[2:]
	amountIdx, amount := firstAmount(tail)
	if amountIdx < 0 {
		return Intent{Kind: Unrecognized}, true
	}
	note := strings.Join(without(tail, amountIdx), " ")
	if note == "" {
		note = core.TransferCategory
	}
	return Intent{
		Kind:       Transfer,
		Type:       core.Transfer,
		FromWallet: from,
		ToWallet:   to,
		Amount:     amount,
		Note:       note,
	}, true
}

// matchPayBillWithAmount handles "bayar <name...> <amount> <wallet...>". The
// name is the shortest prefix followed by a token that parses as an amount.
func matchPayBillWithAmount(m message) (Intent, bool) {
	if len(m.tokens) < 4 || !containsFold(payVerbs, m.tokens[0]) {
		return Intent{}, false
	}
	for i := 2; i < len(m.tokens)-1; i++ {
		tok := m.tokens[i]
		if !amountShape.MatchString(tok) {
			continue
		}
		amount, err := core.ParseAmount(tok)
		if err != nil {
			continue
		}
		return Intent{
			Kind:     PayBillWithAmount,
			Type:     core.Expense,
			BillName: strings.ToLower(strings.Join(m.tokens[1:i], " ")),
			Amount:   amount,
			Wallet:   strings.Join(m.tokens[i+1:], " "),
		}, true
	}
	return Intent{}, false
}

func matchPayBill(m message) (Intent, bool) {
	if len(m.tokens) < 2 || !containsFold(payVerbs, m.tokens[0]) {
		return Intent{}, false
	}
	return Intent{
		Kind:     PayBill,
		BillName: strings.ToLower(strings.Join(m.tokens[1:], " ")),
	}, true
}

func matchBillQuery(m message) (Intent, bool) {
	if !strings.Contains(m.norm, billKeyword) || containsAny(m.norm, payVerbs) {
		return Intent{}, false
	}
	return Intent{Kind: BillQuery}, true
}

func matchCategoryQuery(m message) (Intent, bool) {
	if !strings.Contains(m.norm, categoryMarker) || containsAny(m.norm, []string{"keluar", "masuk"}) {
		return Intent{}, false
	}
	return Intent{Kind: CategoryQuery}, true
}

// matchBalanceQuery accepts a bare balance word or a message led by "cek" /
// "saldo". A following token (other than "saldo") filters to one wallet.
// Report phrases such as "cek laporan" are left for the report rule.
func matchBalanceQuery(m message) (Intent, bool) {
	if containsFold(reportPhrases, m.norm) {
		return Intent{}, false
	}
	if containsFold(balanceWords, m.norm) {
		return Intent{Kind: BalanceQuery}, true
	}
	if !containsFold(balancePrefix, m.tokens[0]) {
		return Intent{}, false
	}
	in := Intent{Kind: BalanceQuery}
	for _, tok := range m.tokens[1:] {
		if strings.EqualFold(tok, "saldo") {
			continue
		}
		in.Wallet = tok
		break
	}
	return in, true
}

func matchReportQuery(m message) (Intent, bool) {
	if !containsFold(reportPhrases, m.norm) {
		return Intent{}, false
	}
	return Intent{Kind: ReportQuery}, true
}

// matchRecord is the generic "[masuk|keluar] <wallet> <amount> <note...>" form.
// The first token that parses as an amount is the amount, so descriptive
// numbers belong after it.
func matchRecord(m message) (Intent, bool) {
	tokens := m.tokens
	txType := core.Expense
	for i, tok := range tokens {
		if t, ok := typeTokens[strings.ToLower(tok)]; ok {
			txType = t
			tokens = without(tokens, i)
			break
		}
	}
	if len(tokens) < 3 {
		return Intent{}, false
	}
	wallet := tokens[0]
	tail := tokens[1:]
	amountIdx, amount := firstAmount(tail)
	if amountIdx < 0 {
		return Intent{}, false
	}
	note := strings.Join(without(tail, amountIdx), " ")
	if note == "" {
		return Intent{}, false
	}
	return Intent{
		Kind:   Record,
		Type:   txType,
		Wallet: wallet,
		Amount: amount,
		Note:   note,
	}, true
}

// firstAmount returns the index and value of the first token that parses as
// an amount, or -1.
func firstAmount(tokens []string) (int, int64) {
	for i, tok := range tokens {
		if v, err := core.ParseAmount(tok); err == nil {
			return i, v
		}
	}
	return -1, 0
}

func without(tokens []string, idx int) []string {
	out := make([]string, 0, len(tokens)-1)
	out = append(out, tokens[:idx]...)
	return append(out, tokens[idx+1:]...)
}

func indexFold(tokens []string, want string) int {
	for i, tok := range tokens {
		if strings.EqualFold(tok, want) {
			return i
		}
	}
	return -1
}

func containsFold(set []string, s string) bool {
	return indexFold(set, s) >= 0
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
