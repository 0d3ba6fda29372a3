package commentary

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when GEMINI_MODEL is unset.
const DefaultModel = "gemini-2.5-flash"

// ErrNoAPIKey is returned when no Gemini key is configured.
var ErrNoAPIKey = errors.New("no Gemini API key configured")

// GeminiGenerator calls the Gemini API. Several keys may be configured; each
// request picks one at random to spread quota.
type GeminiGenerator struct {
	clients []*genai.Client
	model   string
}

var _ Generator = (*GeminiGenerator)(nil)

// SplitKeys parses a comma separated key list, dropping blanks.
func SplitKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// NewGeminiGenerator builds one client per key.
func NewGeminiGenerator(ctx context.Context, keys []string, model string) (*GeminiGenerator, error) {
	if len(keys) == 0 {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = DefaultModel
	}
	g := &GeminiGenerator{model: model}
	for _, key := range keys {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      key,
			Backend:     genai.BackendGeminiAPI,
			HTTPOptions: genai.HTTPOptions{APIVersion: "v1beta"},
		})
		if err != nil {
			return nil, fmt.Errorf("create genai client: %w", err)
		}
		g.clients = append(g.clients, client)
	}
	return g, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	client := g.clients[rand.IntN(len(g.clients))]
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: Persona}}},
	}
	resp, err := client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}
