package avatar

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

	"server/internal/asyncjob"
	"server/internal/infra"
)

// Options configures the avatar-video provider client.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client talks to the avatar provider: submit a narrated-talk job, then poll
// it by id. Presenter catalog listing lives in internal/catalog; this client
// only drives the job protocol.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

const requestTimeout = 60 * time.Second

func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("avatar: api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("avatar: base url is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: client,
		logger:     opts.Logger,
	}, nil
}

// BaseURL returns the configured API root, shared with the presenter catalog.
func (c *Client) BaseURL() string { return c.baseURL }

// TalkRequest describes one narrated avatar video submission. Either Script
// plus VoiceID, or TemplateVars, must be set.
type TalkRequest struct {
	Title        string
	PresenterID  string
	Script       string
	VoiceID      string
	Language     string
	TemplateVars map[string]string
}

type talkPayload struct {
	Title        string            `json:"title,omitempty"`
	PresenterID  string            `json:"presenter_id"`
	Script       *scriptPayload    `json:"script,omitempty"`
	TemplateVars map[string]string `json:"template_variables,omitempty"`
}

type scriptPayload struct {
	Type     string `json:"type"`
	Input    string `json:"input"`
	VoiceID  string `json:"voice_id,omitempty"`
	Language string `json:"language,omitempty"`
}

// createTalkResponse tolerates both known locations of the job identifier.
type createTalkResponse struct {
	ID   string `json:"id"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// CreateTalk submits the job and returns the provider job id.
func (c *Client) CreateTalk(ctx context.Context, req TalkRequest) (string, error) {
	if strings.TrimSpace(req.PresenterID) == "" {
		return "", errors.New("avatar: presenter id is required")
	}
	payload := talkPayload{
		Title:       req.Title,
		PresenterID: req.PresenterID,
	}
	switch {
	case len(req.TemplateVars) > 0:
		payload.TemplateVars = req.TemplateVars
	case strings.TrimSpace(req.Script) != "":
		payload.Script = &scriptPayload{
			Type:     "text",
			Input:    req.Script,
			VoiceID:  req.VoiceID,
			Language: req.Language,
		}
	default:
		return "", errors.New("avatar: script or template variables required")
	}

	body, status, err := c.do(ctx, http.MethodPost, "/talks", payload)
	if err != nil {
		return "", err
	}
	if status >= http.StatusBadRequest {
		return "", &asyncjob.StatusError{Code: status, Body: string(body)}
	}

	var decoded createTalkResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("avatar: decode submit response: %w", err)
	}
	jobID := decoded.ID
	if jobID == "" {
		jobID = decoded.Data.ID
	}
	if jobID == "" {
		return "", errors.New("avatar: no job id in submit response")
	}
	return jobID, nil
}

type talkStatusResponse struct {
	Status    string `json:"status"`
	ResultURL string `json:"result_url"`
	ShareURL  string `json:"share_url"`
	Error     struct {
		Code        string `json:"code"`
		Message     string `json:"message"`
		Description string `json:"description"`
	} `json:"error"`
}

// TalkStatus queries one job by id and maps the remote status enum onto the
// poll contract.
func (c *Client) TalkStatus(ctx context.Context, jobID string) (asyncjob.Status, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/talks/"+jobID, nil)
	if err != nil {
		return asyncjob.Status{}, err
	}
	if status >= http.StatusBadRequest {
		return asyncjob.Status{}, &asyncjob.StatusError{Code: status, Body: string(body)}
	}

	var decoded talkStatusResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return asyncjob.Status{}, fmt.Errorf("avatar: decode status response: %w", err)
	}

	out := asyncjob.Status{
		ResultURL: decoded.ResultURL,
		ShareURL:  decoded.ShareURL,
	}
	switch strings.ToLower(decoded.Status) {
	case "done", "completed":
		out.Done = true
	case "error", "failed", "rejected":
		out.Failed = true
		out.ErrCode = decoded.Error.Code
		out.ErrMessage = decoded.Error.Message
		out.ErrDetail = decoded.Error.Description
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return nil, 0, fmt.Errorf("avatar: encode payload: %w", err)
		}
		reqBody = &buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("avatar: build request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("avatar: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("avatar: read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
