package deck

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

// Options configures the slide-deck rendering client.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client calls a deck-rendering service that turns an outline into a
// downloadable presentation file.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

const renderTimeout = 120 * time.Second

func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("deck: api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("deck: base url is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: renderTimeout}
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: client,
		logger:     opts.Logger,
	}, nil
}

// Slide is one outline entry sent to the renderer.
type Slide struct {
	Heading string   `json:"heading"`
	Bullets []string `json:"bullets,omitempty"`
}

// RenderRequest describes one deck rendering.
type RenderRequest struct {
	Title    string  `json:"title"`
	Language string  `json:"language,omitempty"`
	Slides   []Slide `json:"slides"`
}

// RenderResult carries the rendered deck location.
type RenderResult struct {
	URL        string
	SlideCount int
}

type renderResponse struct {
	URL         string `json:"url"`
	DownloadURL string `json:"download_url"`
	SlideCount  int    `json:"slide_count"`
}

// Render submits the outline and returns the deck's download URL.
func (c *Client) Render(ctx context.Context, req RenderRequest) (*RenderResult, error) {
	if len(req.Slides) == 0 {
		return nil, errors.New("deck: outline has no slides")
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return nil, fmt.Errorf("deck: encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/decks", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("deck: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("deck: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("deck: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("deck: decode response: %w", err)
	}
	url := decoded.DownloadURL
	if url == "" {
		url = decoded.URL
	}
	if url == "" {
		return nil, errors.New("deck: no deck url in response")
	}
	count := decoded.SlideCount
	if count == 0 {
		count = len(req.Slides)
	}
	return &RenderResult{URL: url, SlideCount: count}, nil
}
