// Package discord serves the chat command surface in one Discord channel.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
)

// maxMessageLen is Discord's limit for one message.
const maxMessageLen = 2000

// Responder turns a chat message into a reply text.
type Responder interface {
	Respond(ctx context.Context, text string) string
}

type Bot struct {
	session   *discordgo.Session
	responder Responder
	channelID string
	timeout   time.Duration
}

// NewBot creates the session; Start opens the gateway connection.
func NewBot(token, channelID string, responder Responder) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create Discord session: %w", err)
	}

	b := &Bot{
		session:   session,
		responder: responder,
		channelID: channelID,
		timeout:   30 * time.Second,
	}
	session.AddHandler(b.handleMessage)
	session.Identify.Intents = discordgo.IntentGuildMessages | discordgo.IntentMessageContent
	return b, nil
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open Discord connection: %w", err)
	}
	slog.Info("Discord bot connected", "channel", b.channelID)
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	var botID string
	if s.State != nil && s.State.User != nil {
		botID = s.State.User.ID
	}
	reply, ok := b.reply(botID, m.Message)
	if !ok {
		return
	}
	for _, chunk := range splitMessage(reply, maxMessageLen) {
		if _, err := s.ChannelMessageSend(m.ChannelID, chunk); err != nil {
			slog.Error("Failed to send Discord reply", "channel", m.ChannelID, "error", err)
			return
		}
	}
}

// reply decides whether m is addressed to the bot and computes the answer.
// The bot's own messages, other channels and empty messages are skipped.
func (b *Bot) reply(botID string, m *discordgo.Message) (string, bool) {
	if m == nil || m.Author == nil || m.Author.Bot || m.Author.ID == botID {
		return "", false
	}
	if m.ChannelID != b.channelID || m.Content == "" {
		return "", false
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	return b.responder.Respond(ctx, m.Content), true
}

// splitMessage cuts text into pieces of at most limit runes, preferring line
// breaks.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	var out []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		out = append(out, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}
