package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newTestCache(t *testing.T, handler http.Handler) (*Cache, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cache := New(Options{BaseURL: srv.URL, APIKey: "key", HTTPClient: srv.Client()})
	return cache, srv
}

func TestFetchObjectWithArrayShape(t *testing.T) {
	cache, _ := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/presenters" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"presenters":[{"presenter_id":"amy","name":"Amy","gender":"female","style":"professional","is_visible":true}]}`))
	}))

	if !cache.IsValid(context.Background(), "amy") {
		t.Fatalf("amy should be valid")
	}
	if cache.IsValid(context.Background(), "ghost") {
		t.Fatalf("unknown id should be invalid once the catalog loaded")
	}
}

func TestFetchBareArrayShape(t *testing.T) {
	cache, _ := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"noa","gender":"female","style":"natural"}]`))
	}))
	if !cache.IsValid(context.Background(), "noa") {
		t.Fatalf("noa should be valid")
	}
}

func TestFetchNestedDataShape(t *testing.T) {
	cache, _ := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"presenters":[{"id":"dan","gender":"male","style":"professional"}]}}`))
	}))
	if !cache.IsValid(context.Background(), "dan") {
		t.Fatalf("dan should be valid")
	}
}

func TestEmptyListingInvalidatesEveryID(t *testing.T) {
	cache, _ := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"presenters":[]}`))
	}))

	if cache.IsValid(context.Background(), "configured-presenter") {
		t.Fatalf("an empty listing is authoritative, no id may validate")
	}
	if fb := cache.Fallback(context.Background(), ""); fb != nil {
		t.Fatalf("empty listing has no fallback candidates, got %+v", fb)
	}
}

func TestUnrecognizedListingBodyIsOptimistic(t *testing.T) {
	cache, _ := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))

	if !cache.IsValid(context.Background(), "configured-presenter") {
		t.Fatalf("an unrecognized listing body must defer validation to the generation call")
	}
}

func TestDeniedListingIsOptimistic(t *testing.T) {
	cache, _ := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	if !cache.IsValid(context.Background(), "configured-presenter") {
		t.Fatalf("denied listing must defer validation to the generation call")
	}
	if fb := cache.Fallback(context.Background(), ""); fb != nil {
		t.Fatalf("denied listing has no fallback data, got %+v", fb)
	}
}

func TestListingFetchedOncePerProcess(t *testing.T) {
	var hits int32
	cache, _ := newTestCache(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`[{"id":"amy","gender":"female","style":"professional"}]`))
	}))

	for i := 0; i < 5; i++ {
		cache.IsValid(context.Background(), "amy")
		cache.Fallback(context.Background(), "")
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("listing fetched %d times, want 1", got)
	}

	cache.Reset()
	cache.IsValid(context.Background(), "amy")
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("reset should allow one refetch, got %d hits", got)
	}
}

func fixedCache(candidates []Candidate) *Cache {
	c := New(Options{BaseURL: "http://unused.local"})
	c.loaded = true
	c.candidates = candidates
	return c
}

func TestFallbackScoringDeterministic(t *testing.T) {
	catalogEntries := []Candidate{
		{ID: "robo", Name: "Robo Max", Gender: "female", Style: "professional", Visible: true, Categories: []string{"robot"}},
		{ID: "amy", Name: "Amy", Gender: "female", Style: "professional", Visible: true},
		{ID: "noa", Name: "Noa", Gender: "female", Style: "professional", Visible: true},
		{ID: "hidden", Gender: "female", Style: "professional", Visible: false},
	}
	cache := fixedCache(catalogEntries)

	for i := 0; i < 10; i++ {
		fb := cache.Fallback(context.Background(), "")
		if fb == nil || fb.ID != "amy" {
			t.Fatalf("fallback not deterministic, got %+v", fb)
		}
		if fb.Score != 30 {
			t.Fatalf("score = %d, want 30", fb.Score)
		}
	}
}

func TestFallbackNeverPicksDenylisted(t *testing.T) {
	cache := fixedCache([]Candidate{
		{ID: "toon", Name: "Friendly Toon", Gender: "female", Style: "professional", Visible: true, Categories: []string{"cartoon"}},
		{ID: "plain", Name: "Plain", Gender: "male", Style: "dry", Visible: true},
	})

	fb := cache.Fallback(context.Background(), "")
	if fb != nil {
		// "toon" is denylisted (-100), "plain" scores 0 and is excluded.
		t.Fatalf("expected no eligible candidate, got %+v", fb)
	}
}

func TestFallbackExcludesRequestedID(t *testing.T) {
	cache := fixedCache([]Candidate{
		{ID: "amy", Gender: "female", Style: "professional", Visible: true},
		{ID: "noa", Gender: "neutral", Style: "natural", Visible: true},
	})
	fb := cache.Fallback(context.Background(), "amy")
	if fb == nil || fb.ID != "noa" {
		t.Fatalf("fallback = %+v, want noa", fb)
	}
}

func TestDenyTokenInNameExcludes(t *testing.T) {
	cache := fixedCache([]Candidate{
		{ID: "x", Name: "Dramatic Diva", Gender: "female", Style: "professional", Visible: true},
	})
	if fb := cache.Fallback(context.Background(), ""); fb != nil {
		t.Fatalf("deny token in name must exclude, got %+v", fb)
	}
}
