package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

type stubTransport struct {
	status   int
	body     string
	lastBody []byte
	auth     string
}

func (t *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.auth = req.Header.Get("Authorization")
	if req.Body != nil {
		t.lastBody, _ = io.ReadAll(req.Body)
	}
	return &http.Response{
		StatusCode: t.status,
		Body:       io.NopCloser(strings.NewReader(t.body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}, nil
}

func TestCompleteReturnsAssistantMessage(t *testing.T) {
	transport := &stubTransport{
		status: 200,
		body:   `{"choices":[{"message":{"content":"  generated narrative  "}}]}`,
	}
	client, err := NewClient(Options{APIKey: "k", Model: "gpt-4o-mini", HTTPClient: &http.Client{Transport: transport}})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	out, err := client.Complete(context.Background(), CompleteRequest{
		System:   "You write study material.",
		Prompt:   "Summarize",
		JSONMode: true,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "generated narrative" {
		t.Fatalf("out = %q", out)
	}
	if transport.auth != "Bearer k" {
		t.Fatalf("auth = %q", transport.auth)
	}

	var payload map[string]any
	if err := json.Unmarshal(transport.lastBody, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload["model"] != "gpt-4o-mini" {
		t.Fatalf("model = %v", payload["model"])
	}
	format, ok := payload["response_format"].(map[string]any)
	if !ok || format["type"] != "json_object" {
		t.Fatalf("response_format = %v", payload["response_format"])
	}
	msgs, ok := payload["messages"].([]any)
	if !ok || len(msgs) != 2 {
		t.Fatalf("messages = %v", payload["messages"])
	}
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	transport := &stubTransport{status: 429, body: `{"error":{"message":"rate limited"}}`}
	client, err := NewClient(Options{APIKey: "k", HTTPClient: &http.Client{Transport: transport}})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Complete(context.Background(), CompleteRequest{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("err = %v", err)
	}
}

func TestCompleteRejectsEmptyChoices(t *testing.T) {
	client, err := NewClient(Options{APIKey: "k", HTTPClient: &http.Client{Transport: &stubTransport{status: 200, body: `{"choices":[]}`}}})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Complete(context.Background(), CompleteRequest{Prompt: "x"}); err == nil {
		t.Fatalf("expected error on empty choices")
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(Options{}); err == nil {
		t.Fatalf("expected error without api key")
	}
}
