// Package notify delivers chat messages through the Telegram Bot API and the
// Fonnte WhatsApp gateway, and routes daily-job notifications to them.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultTelegramURL = "https://api.telegram.org"
	requestTimeout     = 10 * time.Second
)

// TelegramClient sends Markdown messages as a bot.
type TelegramClient struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewTelegramClient returns a client for token. baseURL may be empty.
func NewTelegramClient(token, baseURL string, httpClient *http.Client) *TelegramClient {
	if baseURL == "" {
		baseURL = DefaultTelegramURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &TelegramClient{token: token, baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage posts text to one chat.
func (c *TelegramClient) SendMessage(ctx context.Context, chatID, text string) error {
	body, err := json.Marshal(telegramMessage{ChatID: chatID, Text: text, ParseMode: "Markdown"})
	if err != nil {
		return fmt.Errorf("marshal telegram message: %w", err)
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	if err := postJSON(ctx, c.http, url, nil, body); err != nil {
		return fmt.Errorf("telegram sendMessage to %s: %w", chatID, err)
	}
	return nil
}

// Broadcast sends text to every chat concurrently. All chats are attempted;
// the first failure is returned.
func (c *TelegramClient) Broadcast(ctx context.Context, chatIDs []string, text string) error {
	var g errgroup.Group
	for _, id := range chatIDs {
		g.Go(func() error {
			return c.SendMessage(ctx, id, text)
		})
	}
	return g.Wait()
}

// SplitChatIDs parses a comma separated id list.
func SplitChatIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func postJSON(ctx context.Context, client *http.Client, url string, header http.Header, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
