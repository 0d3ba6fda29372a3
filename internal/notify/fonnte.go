package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const DefaultFonnteURL = "https://api.fonnte.com"

// FonnteClient sends WhatsApp messages through the Fonnte gateway.
type FonnteClient struct {
	token   string
	baseURL string
	http    *http.Client
}

func NewFonnteClient(token, baseURL string, httpClient *http.Client) *FonnteClient {
	if baseURL == "" {
		baseURL = DefaultFonnteURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &FonnteClient{token: token, baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type fonnteMessage struct {
	Target  string `json:"target"`
	Message string `json:"message"`
}

// Send delivers text to target, a phone number in Fonnte's format.
func (c *FonnteClient) Send(ctx context.Context, target, text string) error {
	body, err := json.Marshal(fonnteMessage{Target: target, Message: text})
	if err != nil {
		return fmt.Errorf("marshal fonnte message: %w", err)
	}
	header := http.Header{}
	header.Set("Authorization", c.token)
	if err := postJSON(ctx, c.http, c.baseURL+"/send", header, body); err != nil {
		return fmt.Errorf("fonnte send to %s: %w", target, err)
	}
	return nil
}
