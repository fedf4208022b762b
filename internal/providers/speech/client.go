package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"server/internal/infra"
)

// Options configures the text-to-speech client.
type Options struct {
	APIKey     string
	BaseURL    string
	Voice      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client calls a speech-synthesis API that returns rendered audio bytes in
// the response body.
type Client struct {
	apiKey     string
	baseURL    string
	voice      string
	httpClient *http.Client
	logger     *infra.Logger
}

const synthesizeTimeout = 120 * time.Second

func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("speech: api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	voice := strings.TrimSpace(opts.Voice)
	if voice == "" {
		voice = "alloy"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: synthesizeTimeout}
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		voice:      voice,
		httpClient: client,
		logger:     opts.Logger,
	}, nil
}

// SynthesizeRequest describes one narration rendering.
type SynthesizeRequest struct {
	Text     string
	Language string
	Voice    string
	Format   string
}

type synthesizePayload struct {
	Model    string `json:"model"`
	Input    string `json:"input"`
	Voice    string `json:"voice"`
	Format   string `json:"response_format,omitempty"`
	Language string `json:"language,omitempty"`
}

// Synthesize renders the text to audio and returns the raw bytes plus the
// response content type.
func (c *Client) Synthesize(ctx context.Context, req SynthesizeRequest) ([]byte, string, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, "", errors.New("speech: text is required")
	}
	voice := req.Voice
	if voice == "" {
		voice = c.voice
	}
	format := req.Format
	if format == "" {
		format = "mp3"
	}

	payload := synthesizePayload{
		Model:    "tts-1",
		Input:    text,
		Voice:    voice,
		Format:   format,
		Language: req.Language,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, "", fmt.Errorf("speech: encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/audio/speech", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, "", fmt.Errorf("speech: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("speech: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, "", fmt.Errorf("speech: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("speech: read audio body: %w", err)
	}
	if len(audio) == 0 {
		return nil, "", errors.New("speech: empty audio payload")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return audio, contentType, nil
}
