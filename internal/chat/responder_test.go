package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dompet/internal/command"
	"dompet/internal/commentary"
	"dompet/internal/services"
)

type fakeHandler struct {
	reply services.Reply
	err   error
}

func (f fakeHandler) Handle(context.Context, string) (services.Reply, error) {
	return f.reply, f.err
}

type echoGenerator struct{}

func (echoGenerator) Generate(_ context.Context, prompt string) (string, error) {
	return "AI: " + prompt, nil
}

func TestRespond(t *testing.T) {
	ctx := context.Background()
	ai := commentary.New(echoGenerator{})

	tests := []struct {
		name    string
		handler fakeHandler
		ai      *commentary.Commentator
		check   func(string) bool
	}{
		{
			name:    "plain reply without commentary",
			handler: fakeHandler{reply: services.Reply{Kind: command.ReportQuery, Text: "report"}},
			check:   func(s string) bool { return s == "report" },
		},
		{
			name:    "store failure becomes generic text",
			handler: fakeHandler{reply: services.Reply{Kind: command.Record}, err: errors.New("sheets down")},
			ai:      ai,
			check:   func(s string) bool { return s == services.FailureText },
		},
		{
			name:    "report goes through commentary",
			handler: fakeHandler{reply: services.Reply{Kind: command.ReportQuery, Text: "📊 data"}},
			ai:      ai,
			check:   func(s string) bool { return strings.HasPrefix(s, "AI: ") && strings.Contains(s, "📊 data") },
		},
		{
			name:    "unrecognized becomes chat",
			handler: fakeHandler{reply: services.Reply{Kind: command.Unrecognized, Text: command.HelpText}},
			ai:      ai,
			check:   func(s string) bool { return strings.Contains(s, "User berkata") },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewResponder(tt.handler, tt.ai).Respond(ctx, "halo")
			if !tt.check(got) {
				t.Fatalf("unexpected reply: %q", got)
			}
		})
	}
}
