package persist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"server/internal/infra"
	"server/internal/storage"
)

// Stored describes where an artifact ended up. When Fallback is true the URL
// points at the provider's copy because the storage hop did not succeed.
type Stored struct {
	URL         string
	Key         string
	Hash        string
	Size        int64
	ContentType string
	Fallback    bool
}

// Persistor downloads remote artifacts and writes them through the blob
// store. A persistence failure never loses an otherwise-successful
// generation: the remote URL is returned instead, flagged as a fallback.
type Persistor struct {
	store      storage.BlobStore
	httpClient *http.Client
	logger     *infra.Logger
}

const downloadTimeout = 120 * time.Second

func New(store storage.BlobStore, httpClient *http.Client, logger *infra.Logger) *Persistor {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: downloadTimeout}
	}
	return &Persistor{store: store, httpClient: httpClient, logger: logger}
}

// Persist downloads the artifact at remoteURL, validates it against the
// expected media class ("audio", "video", "application", ...), and stores it
// under key. Any failure along the way degrades to the remote URL.
func (p *Persistor) Persist(ctx context.Context, remoteURL, key, mediaClass string) (Stored, error) {
	if strings.TrimSpace(remoteURL) == "" {
		return Stored{}, fmt.Errorf("persist: remote url is required")
	}

	data, contentType, err := p.download(ctx, remoteURL)
	if err != nil {
		return p.degrade(remoteURL, "download", err), nil
	}
	if len(data) == 0 {
		return p.degrade(remoteURL, "empty_payload", fmt.Errorf("persist: empty payload from %s", remoteURL)), nil
	}
	if !matchesMediaClass(contentType, mediaClass) {
		return p.degrade(remoteURL, "content_type",
			fmt.Errorf("persist: content type %q does not match class %q", contentType, mediaClass)), nil
	}

	hash := hashBytes(data)
	storedKey, err := p.store.Write(ctx, key, data)
	if err != nil {
		return p.degrade(remoteURL, "storage_write", err), nil
	}

	return Stored{
		URL:         p.store.PublicURL(storedKey),
		Key:         storedKey,
		Hash:        hash,
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

// PersistBytes stores a payload the provider returned inline. There is no
// remote copy to fall back to, so failures are reported as errors.
func (p *Persistor) PersistBytes(ctx context.Context, key, contentType string, data []byte) (Stored, error) {
	if len(data) == 0 {
		return Stored{}, fmt.Errorf("persist: empty payload for %s", key)
	}
	hash := hashBytes(data)
	storedKey, err := p.store.Write(ctx, key, data)
	if err != nil {
		return Stored{}, fmt.Errorf("persist: write %s: %w", key, err)
	}
	return Stored{
		URL:         p.store.PublicURL(storedKey),
		Key:         storedKey,
		Hash:        hash,
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}

func (p *Persistor) degrade(remoteURL, stage string, err error) Stored {
	if p.logger != nil {
		p.logger.Warn().Err(err).
			Str("stage", stage).
			Str("remote_url", remoteURL).
			Msg("persist: keeping provider url after persistence failure")
	}
	return Stored{URL: remoteURL, Fallback: true}
}

func (p *Persistor) download(ctx context.Context, remoteURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create download request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, "", fmt.Errorf("download status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read artifact body: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// matchesMediaClass compares the major type of a Content-Type header against
// the expected class. Missing headers are accepted; providers are not
// consistent about setting them on signed download URLs.
func matchesMediaClass(contentType, mediaClass string) bool {
	mediaClass = strings.TrimSpace(strings.ToLower(mediaClass))
	if mediaClass == "" {
		return true
	}
	contentType = strings.TrimSpace(strings.ToLower(contentType))
	if contentType == "" {
		return true
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	major := contentType
	if idx := strings.Index(contentType, "/"); idx >= 0 {
		major = contentType[:idx]
	}
	if major == mediaClass {
		return true
	}
	// Octet-stream is how most CDNs serve binary media.
	return contentType == "application/octet-stream"
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
