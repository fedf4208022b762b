package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"server/internal/infra"
)

// Candidate is one selectable presenter identity from the avatar provider's
// catalog.
type Candidate struct {
	ID         string
	Name       string
	Gender     string
	Style      string
	Visible    bool
	Categories []string
	Score      int

	catalogIndex int
}

// Options configures the catalog cache.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *infra.Logger
	// Endpoints are relative listing paths tried in order. Defaults cover the
	// provider's known API generations.
	Endpoints []string
}

var defaultEndpoints = []string{"/presenters", "/v1/presenters", "/actors"}

// Cache is the process-wide, lazily-populated presenter catalog. It is
// read-mostly: the catalog is fetched at most once per process lifetime (or
// after an explicit Reset) and fetch failures degrade instead of propagating.
type Cache struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *infra.Logger
	endpoints  []string

	mu         sync.Mutex
	loaded     bool
	unverified bool // listing denied or unreachable; defer validation to the provider
	candidates []Candidate
}

func New(opts Options) *Cache {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	endpoints := opts.Endpoints
	if len(endpoints) == 0 {
		endpoints = defaultEndpoints
	}
	return &Cache{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		httpClient: client,
		logger:     opts.Logger,
		endpoints:  endpoints,
	}
}

// IsValid reports whether the presenter id can be used for generation. When
// the listing is denied or unreachable the id is optimistically accepted;
// the generation call itself surfaces the definitive error.
func (c *Cache) IsValid(ctx context.Context, id string) bool {
	if strings.TrimSpace(id) == "" {
		return false
	}
	c.ensure(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unverified {
		return true
	}
	for _, cand := range c.candidates {
		if cand.ID == id {
			return cand.Visible
		}
	}
	return false
}

// Fallback returns the best-scoring visible candidate, excluding excludeID,
// or nil when none is eligible. Selection is deterministic: ties keep
// catalog order.
func (c *Cache) Fallback(ctx context.Context, excludeID string) *Candidate {
	c.ensure(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	var eligible []Candidate
	for i, cand := range c.candidates {
		if cand.ID == excludeID || !cand.Visible {
			continue
		}
		cand.Score = scoreCandidate(cand)
		if cand.Score <= 0 {
			continue
		}
		// Remember catalog position for deterministic tie-breaking.
		cand.catalogIndex = i
		eligible = append(eligible, cand)
	}
	if len(eligible) == 0 {
		return nil
	}
	sort.SliceStable(eligible, func(a, b int) bool {
		if eligible[a].Score != eligible[b].Score {
			return eligible[a].Score > eligible[b].Score
		}
		return eligible[a].catalogIndex < eligible[b].catalogIndex
	})
	best := eligible[0]
	return &best
}

// Reset clears the cached catalog so the next use fetches it again.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.unverified = false
	c.candidates = nil
}

var preferredStyles = map[string]struct{}{
	"professional": {},
	"neutral":      {},
	"natural":      {},
}

var preferredGenders = map[string]struct{}{
	"female":  {},
	"neutral": {},
}

var denylist = []string{"child", "cartoon", "fantasy", "robot", "dramatic", "character"}

func scoreCandidate(c Candidate) int {
	score := 0
	if _, ok := preferredStyles[strings.ToLower(c.Style)]; ok {
		score += 20
	}
	if _, ok := preferredGenders[strings.ToLower(c.Gender)]; ok {
		score += 10
	}
	tokens := make([]string, 0, len(c.Categories)+4)
	for _, cat := range c.Categories {
		tokens = append(tokens, strings.ToLower(cat))
	}
	tokens = append(tokens, nameTokens(c.Name)...)
	for _, token := range tokens {
		for _, deny := range denylist {
			if strings.Contains(token, deny) {
				return score - 100
			}
		}
	}
	return score
}

func nameTokens(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '.'
	})
}

func (c *Cache) ensure(ctx context.Context) {
	c.mu.Lock()
	if c.loaded {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	candidates, unverified := c.fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return
	}
	c.loaded = true
	c.unverified = unverified
	c.candidates = candidates
}

// fetch tries the listing endpoints in order and accepts the first 2xx
// response a shape matcher recognizes. A recognized listing is authoritative
// even when it carries zero presenters; only denied or failed listings mark
// the cache unverified.
func (c *Cache) fetch(ctx context.Context) ([]Candidate, bool) {
	denied := false
	for _, endpoint := range c.endpoints {
		body, status, err := c.get(ctx, endpoint)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("catalog: listing request failed")
			}
			denied = true
			continue
		}
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			denied = true
			continue
		}
		if status >= http.StatusBadRequest {
			continue
		}
		if candidates, ok := decodeListing(body); ok {
			return candidates, false
		}
	}
	if c.logger != nil {
		c.logger.Warn().
			Bool("denied", denied).
			Msg("catalog: no usable listing, proceeding unvalidated")
	}
	return nil, true
}

func (c *Cache) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create listing request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Basic "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("list presenters: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read listing body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// presenterPayload tolerates the field spellings seen across provider API
// generations.
type presenterPayload struct {
	ID          string   `json:"id"`
	PresenterID string   `json:"presenter_id"`
	ActorID     string   `json:"actor_id"`
	Name        string   `json:"name"`
	Gender      string   `json:"gender"`
	Style       string   `json:"style"`
	Visible     *bool    `json:"visible"`
	IsVisible   *bool    `json:"is_visible"`
	Categories  []string `json:"categories"`
	Tags        []string `json:"tags"`
}

func (p presenterPayload) toCandidate() (Candidate, bool) {
	id := firstNonEmpty(p.ID, p.PresenterID, p.ActorID)
	if id == "" {
		return Candidate{}, false
	}
	visible := true
	if p.Visible != nil {
		visible = *p.Visible
	} else if p.IsVisible != nil {
		visible = *p.IsVisible
	}
	categories := p.Categories
	if len(categories) == 0 {
		categories = p.Tags
	}
	return Candidate{
		ID:         id,
		Name:       p.Name,
		Gender:     p.Gender,
		Style:      p.Style,
		Visible:    visible,
		Categories: categories,
	}, true
}

// shapeMatcher decodes one known listing layout. The boolean reports whether
// the body structurally matched the layout, independent of how many entries
// it held.
type shapeMatcher func(body []byte) ([]presenterPayload, bool)

// Listing responses vary in nesting between provider versions; matchers are
// tried in order and the first structural match wins.
var shapeMatchers = []shapeMatcher{
	matchObjectWithArray,
	matchBareArray,
	matchNestedData,
}

// decodeListing reports ok when any matcher recognizes the document. An
// empty recognized listing returns (nil, true): the provider answered and
// the answer is "no presenters".
func decodeListing(body []byte) ([]Candidate, bool) {
	for _, match := range shapeMatchers {
		payloads, ok := match(body)
		if !ok {
			continue
		}
		candidates := make([]Candidate, 0, len(payloads))
		for _, p := range payloads {
			if cand, ok := p.toCandidate(); ok {
				candidates = append(candidates, cand)
			}
		}
		if len(candidates) == 0 {
			return nil, true
		}
		return candidates, true
	}
	return nil, false
}

func matchObjectWithArray(body []byte) ([]presenterPayload, bool) {
	var wrapper struct {
		Presenters []presenterPayload `json:"presenters"`
		Actors     []presenterPayload `json:"actors"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, false
	}
	// A present-but-empty array decodes non-nil, an absent key stays nil.
	if wrapper.Presenters != nil {
		return wrapper.Presenters, true
	}
	if wrapper.Actors != nil {
		return wrapper.Actors, true
	}
	return nil, false
}

func matchBareArray(body []byte) ([]presenterPayload, bool) {
	var list []presenterPayload
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, false
	}
	if list == nil {
		return nil, false
	}
	return list, true
}

func matchNestedData(body []byte) ([]presenterPayload, bool) {
	var direct struct {
		Data []presenterPayload `json:"data"`
	}
	if err := json.Unmarshal(body, &direct); err == nil && direct.Data != nil {
		return direct.Data, true
	}
	var nested struct {
		Data struct {
			Presenters []presenterPayload `json:"presenters"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &nested); err == nil && nested.Data.Presenters != nil {
		return nested.Data.Presenters, true
	}
	return nil, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
