package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/agentarium/agentarium/internal/config"
	"google.golang.org/genai"
)

// TextGenerator produces free-form dialogue text from a prompt. The
// conversation pipeline treats it as an opaque provider.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ─── Gemini (primary) ───────────────────────────────────────────────────────

type GeminiClient struct {
	apiKey string
	model  string
}

func NewGeminiClient(cfg *config.Config) *GeminiClient {
	return &GeminiClient{apiKey: cfg.GeminiAPIKey, model: cfg.GeminiModel}
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", errors.New("gemini api key not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: g.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini returned empty response")
	}
	return text, nil
}

// ─── OpenAI-compatible chat completions (fallback) ──────────────────────────

type ChatCompletionsClient struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
}

func NewChatCompletionsClient(cfg *config.Config) *ChatCompletionsClient {
	return &ChatCompletionsClient{
		apiURL: cfg.FallbackAPIURL,
		apiKey: cfg.FallbackAPIKey,
		model:  cfg.FallbackModel,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (c *ChatCompletionsClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("fallback api key not configured")
	}

	reqBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"stream": false,
	}

	body, _ := json.Marshal(reqBody)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat completions call: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completions status %d: %s", resp.StatusCode, truncateBody(raw))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("chat completions decode: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", errors.New("chat completions returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func truncateBody(b []byte) string {
	if len(b) > 200 {
		b = b[:200]
	}
	return string(b)
}

// ─── Provider chain ─────────────────────────────────────────────────────────

// GeneratorChain tries each provider in order and returns the first
// successful response. Generation fails only when every provider fails.
type GeneratorChain struct {
	providers []TextGenerator
}

func NewGeneratorChain(providers ...TextGenerator) *GeneratorChain {
	return &GeneratorChain{providers: providers}
}

func (g *GeneratorChain) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for i, p := range g.providers {
		text, err := p.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		slog.Warn("Text provider failed, trying next", "provider", i, "error", err)
	}
	if lastErr == nil {
		lastErr = errors.New("no text providers configured")
	}
	return "", lastErr
}
