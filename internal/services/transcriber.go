package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/agentarium/agentarium/internal/config"
)

// Transcription is the provider-neutral result of a speech-to-text call.
type Transcription struct {
	Text            string
	Language        string
	DurationSeconds float64
}

// Transcriber converts uploaded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio []byte) (*Transcription, error)
}

// WhisperClient talks to an OpenAI-compatible audio transcription endpoint.
type WhisperClient struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
}

func NewWhisperClient(cfg *config.Config) *WhisperClient {
	return &WhisperClient{
		apiURL: cfg.TranscribeAPIURL,
		apiKey: cfg.TranscribeAPIKey,
		model:  cfg.TranscribeModel,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (w *WhisperClient) Transcribe(ctx context.Context, filename string, audio []byte) (*Transcription, error) {
	if w.apiKey == "" {
		return nil, errors.New("transcription api key not configured")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}
	mw.WriteField("model", w.model)
	mw.WriteField("response_format", "verbose_json")
	if err := mw.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", w.apiURL, &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+w.apiKey)
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transcription call: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription status %d: %s", resp.StatusCode, truncateBody(raw))
	}

	var parsed struct {
		Text     string  `json:"text"`
		Language string  `json:"language"`
		Duration float64 `json:"duration"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("transcription decode: %w", err)
	}
	if strings.TrimSpace(parsed.Text) == "" {
		return nil, errors.New("transcription returned empty text")
	}

	if parsed.Language == "" {
		parsed.Language = "en"
	}
	return &Transcription{
		Text:            parsed.Text,
		Language:        parsed.Language,
		DurationSeconds: parsed.Duration,
	}, nil
}
