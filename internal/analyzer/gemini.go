package analyzer

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Gemini sends completions to the Gemini API.
type Gemini struct {
	client *genai.Client
}

func NewGemini(ctx context.Context, apiKey string, httpClient *http.Client) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	cfg := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	c, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
	}
	return &Gemini{client: c}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	res, err := g.client.Models.GenerateContent(ctx, req.Model, []*genai.Content{
		genai.NewContentFromText(req.User, genai.RoleUser),
	}, generateConfig(req))
	if err != nil {
		return "", fmt.Errorf("gemini completion: %w", err)
	}
	out := strings.TrimSpace(res.Text())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// generateConfig maps a Request onto Gemini generation settings. A zero
// MaxTokens leaves the output length to the model.
func generateConfig(req Request) *genai.GenerateContentConfig {
	temperature := float32(req.Temperature)
	cfg := &genai.GenerateContentConfig{Temperature: &temperature}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	return cfg
}
