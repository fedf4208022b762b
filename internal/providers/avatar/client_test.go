package avatar

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"server/internal/asyncjob"
)

type stubTransport struct {
	status   int
	body     string
	lastBody []byte
	lastPath string
}

func (t *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.lastPath = req.URL.Path
	if req.Body != nil {
		t.lastBody, _ = io.ReadAll(req.Body)
	}
	return &http.Response{
		StatusCode: t.status,
		Body:       io.NopCloser(strings.NewReader(t.body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}, nil
}

func newTestClient(t *testing.T, transport *stubTransport) *Client {
	t.Helper()
	client, err := NewClient(Options{
		APIKey:     "key",
		BaseURL:    "https://avatar.example.com",
		HTTPClient: &http.Client{Transport: transport},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestCreateTalkReadsTopLevelID(t *testing.T) {
	transport := &stubTransport{status: 201, body: `{"id":"tlk_1"}`}
	client := newTestClient(t, transport)

	id, err := client.CreateTalk(context.Background(), TalkRequest{
		Title:       "Lesson 1",
		PresenterID: "amy",
		Script:      "Hello class",
		VoiceID:     "voice-1",
		Language:    "he",
	})
	if err != nil {
		t.Fatalf("create talk: %v", err)
	}
	if id != "tlk_1" {
		t.Fatalf("id = %q", id)
	}
	if transport.lastPath != "/talks" {
		t.Fatalf("path = %q", transport.lastPath)
	}

	var payload map[string]any
	if err := json.Unmarshal(transport.lastBody, &payload); err != nil {
		t.Fatalf("payload not json: %v", err)
	}
	if payload["presenter_id"] != "amy" {
		t.Fatalf("presenter_id missing: %v", payload)
	}
	script, ok := payload["script"].(map[string]any)
	if !ok || script["input"] != "Hello class" || script["voice_id"] != "voice-1" {
		t.Fatalf("script payload = %v", payload["script"])
	}
}

func TestCreateTalkReadsNestedID(t *testing.T) {
	client := newTestClient(t, &stubTransport{status: 200, body: `{"data":{"id":"tlk_2"}}`})
	id, err := client.CreateTalk(context.Background(), TalkRequest{
		PresenterID:  "amy",
		TemplateVars: map[string]string{"name": "Dana"},
	})
	if err != nil {
		t.Fatalf("create talk: %v", err)
	}
	if id != "tlk_2" {
		t.Fatalf("id = %q", id)
	}
}

func TestCreateTalkSurfacesStatusError(t *testing.T) {
	client := newTestClient(t, &stubTransport{status: 404, body: `{"kind":"NotFoundError"}`})
	_, err := client.CreateTalk(context.Background(), TalkRequest{PresenterID: "gone", Script: "x"})
	if err == nil {
		t.Fatalf("expected error")
	}
	var se *asyncjob.StatusError
	if !errors.As(err, &se) || se.Code != 404 {
		t.Fatalf("err = %v, want StatusError 404", err)
	}
	if !asyncjob.IsNotFound(err) {
		t.Fatalf("404 should classify as not found")
	}
}

func TestTalkStatusMapping(t *testing.T) {
	cases := []struct {
		body   string
		done   bool
		failed bool
	}{
		{`{"status":"processing"}`, false, false},
		{`{"status":"done","result_url":"https://cdn/x.mp4"}`, true, false},
		{`{"status":"completed","share_url":"https://share/x"}`, true, false},
		{`{"status":"error","error":{"code":"E1","message":"boom","description":"detail"}}`, false, true},
	}
	for _, tc := range cases {
		client := newTestClient(t, &stubTransport{status: 200, body: tc.body})
		status, err := client.TalkStatus(context.Background(), "tlk_1")
		if err != nil {
			t.Fatalf("status(%s): %v", tc.body, err)
		}
		if status.Done != tc.done || status.Failed != tc.failed {
			t.Fatalf("status(%s) = %+v", tc.body, status)
		}
		if tc.failed && (status.ErrCode != "E1" || status.ErrMessage != "boom" || status.ErrDetail != "detail") {
			t.Fatalf("remote error not verbatim: %+v", status)
		}
	}
}

func TestTalkStatusServerErrorIsTransient(t *testing.T) {
	client := newTestClient(t, &stubTransport{status: 502, body: "bad gateway"})
	_, err := client.TalkStatus(context.Background(), "tlk_1")
	if !asyncjob.IsTransient(err) {
		t.Fatalf("502 should be transient, got %v", err)
	}
}
