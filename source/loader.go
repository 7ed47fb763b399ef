package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// cacheMeta stores cached URL data with timestamp.
type cacheMeta struct {
	FetchedAt time.Time `json:"fetched_at"`
	DataFile  string    `json:"data_file"` // Relative filename for payload data
}

// Loader fetches raw source payloads over HTTP with a two-level cache:
// an in-memory TTL cache and an on-disk cache under DataDir keyed by URL
// hash. Transient fetch errors are retried with bounded backoff.
type Loader struct {
	Client  *http.Client
	DataDir string
	cache   *TTLCache
	logger  *slog.Logger
}

// NewLoader creates a new Loader with a default HTTP client.
func NewLoader(dataDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
		DataDir: dataDir,
		cache:   NewTTLCache(),
		logger:  logger,
	}
}

// Close stops the loader's cache maintenance.
func (l *Loader) Close() {
	l.cache.Stop()
}

// Fetch returns the payload at url. A cached copy newer than maxAge is
// reused without touching the network; maxAge <= 0 disables caching.
func (l *Loader) Fetch(ctx context.Context, url string, maxAge time.Duration) (string, error) {
	key := urlToCacheKey(url)

	if maxAge > 0 {
		if payload, ok := l.cache.Get(key); ok {
			return payload, nil
		}
		if payload, ok := l.readDiskCache(key, maxAge); ok {
			l.logger.Debug("using cached payload", "url", url)
			l.cache.Set(key, payload, maxAge)
			return payload, nil
		}
	}

	payload, err := l.fetchRemote(ctx, url)
	if err != nil {
		return "", err
	}

	if maxAge > 0 {
		l.cache.Set(key, payload, maxAge)
		if err := l.writeDiskCache(key, payload); err != nil {
			l.logger.Warn("failed to cache payload", "url", url, "error", err)
		}
	}

	return payload, nil
}

func (l *Loader) fetchRemote(ctx context.Context, url string) (string, error) {
	var payload string

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := l.Client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
			// Client errors will not heal on retry.
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		payload = string(body)
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return "", err
	}
	return payload, nil
}

func (l *Loader) readDiskCache(key string, maxAge time.Duration) (string, bool) {
	metaFile := filepath.Join(l.DataDir, key+".meta.json")
	dataFile := filepath.Join(l.DataDir, key+".payload.txt")

	raw, err := os.ReadFile(metaFile)
	if err != nil {
		return "", false
	}
	var meta cacheMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return "", false
	}
	if time.Since(meta.FetchedAt) > maxAge {
		return "", false
	}

	data, err := os.ReadFile(dataFile)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (l *Loader) writeDiskCache(key, payload string) error {
	if err := os.MkdirAll(l.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	dataFile := filepath.Join(l.DataDir, key+".payload.txt")
	if err := os.WriteFile(dataFile, []byte(payload), 0644); err != nil {
		return err
	}

	meta := cacheMeta{
		FetchedAt: time.Now(),
		DataFile:  key + ".payload.txt",
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(l.DataDir, key+".meta.json"), data, 0644)
}

func urlToCacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:8]) // First 8 bytes (16 chars)
}
