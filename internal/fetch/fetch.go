// Package fetch retrieves pages over HTTP and keeps a copy of each on disk so
// that repeated crawls do not refetch.
package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/srdcrawl/internal/config"
)

// Fetcher returns page bodies, reading from and writing to a cache directory.
// It is not safe for concurrent use on the same URL.
type Fetcher struct {
	cacheDir  string
	userAgent string
	secure    *http.Client
	insecure  *http.Client
	hosts     map[string]bool
	logger    *zap.Logger
}

// New creates a Fetcher from crawl settings.
//
// Precondition: cfg.CacheDir must be non-empty and logger non-nil.
func New(cfg config.CrawlConfig, logger *zap.Logger) *Fetcher {
	if cfg.CacheDir == "" || logger == nil {
		panic("fetch.New: cache dir and logger must be set")
	}
	hosts := make(map[string]bool, len(cfg.InsecureHosts))
	for _, h := range cfg.InsecureHosts {
		hosts[strings.ToLower(h)] = true
	}
	insecure := http.DefaultTransport.(*http.Transport).Clone()
	insecure.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // configured per host
	return &Fetcher{
		cacheDir:  cfg.CacheDir,
		userAgent: cfg.UserAgent,
		secure:    &http.Client{Timeout: cfg.Timeout},
		insecure:  &http.Client{Timeout: cfg.Timeout, Transport: insecure},
		hosts:     hosts,
		logger:    logger,
	}
}

// CachePath returns where the body of rawURL is stored under dir: the URL
// with every "/" replaced by "_".
func CachePath(dir, rawURL string) string {
	return filepath.Join(dir, strings.ReplaceAll(rawURL, "/", "_"))
}

// Fetch returns the body of rawURL, from the cache when present.
//
// Postcondition: on a cache miss with a 2xx response the body is written to
// CachePath before it is returned. Non-2xx responses are errors and are not
// cached.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	path := CachePath(f.cacheDir, rawURL)
	if data, err := os.ReadFile(path); err == nil {
		f.logger.Debug("cache hit", zap.String("url", rawURL))
		return data, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading cache for %s: %w", rawURL, err)
	}

	data, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing cache for %s: %w", rawURL, err)
	}
	f.logger.Debug("fetched", zap.String("url", rawURL), zap.Int("bytes", len(data)))
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url %q: %w", rawURL, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	client := f.secure
	if f.hosts[strings.ToLower(u.Hostname())] {
		client = f.insecure
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", rawURL, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", rawURL, err)
	}
	return data, nil
}
