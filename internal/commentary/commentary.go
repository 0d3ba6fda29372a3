// Package commentary dresses command replies in a chatty assistant voice.
// The plain reply is always the fallback, so an unavailable model never
// loses the user's data.
package commentary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"dompet/internal/command"
)

// Context selects the prompt used for a reply.
type Context int

const (
	Chat Context = iota
	TransactionSuccess
	Report
	List
)

func (c Context) String() string {
	switch c {
	case TransactionSuccess:
		return "transaction_success"
	case Report:
		return "report"
	case List:
		return "list"
	default:
		return "chat"
	}
}

// Generator produces model text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ContextFor maps a command kind to its prompt context. Unrecognized input
// has no data to present and is handled by Commentator.Chat instead.
func ContextFor(kind command.Kind) (Context, bool) {
	switch kind {
	case command.Record, command.Transfer, command.PayBillWithAmount, command.PayBill:
		return TransactionSuccess, true
	case command.BalanceQuery, command.ReportQuery:
		return Report, true
	case command.BillQuery, command.CategoryQuery:
		return List, true
	default:
		return Chat, false
	}
}

type Commentator struct {
	gen Generator
}

// New returns a Commentator; a nil generator makes every call return the
// plain text unchanged.
func New(gen Generator) *Commentator {
	return &Commentator{gen: gen}
}

// Enabled reports whether a model is configured.
func (c *Commentator) Enabled() bool {
	return c != nil && c.gen != nil
}

// Present rewrites data for the given context. On model failure the data is
// returned behind a short notice.
func (c *Commentator) Present(ctx context.Context, kind Context, data string) string {
	if !c.Enabled() {
		return data
	}
	out, err := c.generate(ctx, Prompt(kind, "", data))
	if err != nil {
		slog.WarnContext(ctx, "Commentary failed, sending plain reply", "context", kind.String(), "error", err)
		return fmt.Sprintf("✅ Permintaan diproses, tapi AI lagi ngadat: AI Error: Gagal koneksi. %v\n\nData Asli:\n%s", err, data)
	}
	return out
}

// Chat answers free conversation. fallback is returned when no model is
// configured.
func (c *Commentator) Chat(ctx context.Context, message, fallback string) string {
	if !c.Enabled() {
		return fallback
	}
	out, err := c.generate(ctx, Prompt(Chat, message, ""))
	if err != nil {
		slog.WarnContext(ctx, "Chat reply failed", "error", err)
		return fmt.Sprintf("Maaf bos, lagi pusing nih. Error: AI Error: Gagal koneksi. %v", err)
	}
	return out
}

func (c *Commentator) generate(ctx context.Context, prompt string) (string, error) {
	out, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return out, nil
}
