package assistant

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Completer produces the model's next turn for a conversation.
type Completer interface {
	Complete(ctx context.Context, system string, turns []Turn) (string, error)
}

// ErrNotConfigured is returned by the completer used when no API key is set.
var ErrNotConfigured = errors.New("assistant: GEMINI_API_KEY is not set")

type unavailable struct{}

// Unavailable returns a Completer that always fails with ErrNotConfigured.
func Unavailable() Completer {
	return unavailable{}
}

func (unavailable) Complete(context.Context, string, []Turn) (string, error) {
	return "", ErrNotConfigured
}

// GeminiCompleter calls the Gemini generateContent API.
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

func NewGeminiCompleter(ctx context.Context, apiKey, model string) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiCompleter{client: client, model: model}, nil
}

func (g *GeminiCompleter) Complete(ctx context.Context, system string, turns []Turn) (string, error) {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		var role genai.Role = genai.RoleUser
		if t.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("generate content: empty response")
	}
	return text, nil
}
