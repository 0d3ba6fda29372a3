// Package chat turns one inbound chat message into one reply text. Every
// transport (webhooks, Discord) goes through a Responder.
package chat

import (
	"context"
	"log/slog"

	"dompet/internal/command"
	"dompet/internal/commentary"
	"dompet/internal/log"
	"dompet/internal/services"
)

// Handler executes a chat command.
type Handler interface {
	Handle(ctx context.Context, text string) (services.Reply, error)
}

type Responder struct {
	handler    Handler
	commentary *commentary.Commentator
}

// NewResponder wires the command handler with optional commentary. A nil
// commentator sends plain replies.
func NewResponder(h Handler, c *commentary.Commentator) *Responder {
	return &Responder{handler: h, commentary: c}
}

// Respond never fails: store errors become the generic failure text.
func (r *Responder) Respond(ctx context.Context, text string) string {
	reply, err := r.handler.Handle(ctx, text)
	if err != nil {
		slog.ErrorContext(ctx, "Command failed", log.FieldIntent, reply.Kind.String(), log.FieldError, err)
		return services.FailureText
	}
	if !r.commentary.Enabled() {
		return reply.Text
	}
	if reply.Kind == command.Unrecognized {
		return r.commentary.Chat(ctx, text, reply.Text)
	}
	if kind, ok := commentary.ContextFor(reply.Kind); ok {
		return r.commentary.Present(ctx, kind, reply.Text)
	}
	return reply.Text
}
