package ics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	appLog "icslint/internal/log"
)

// Fetcher reads ICS payloads from http(s) sources, honoring ETag and
// Last-Modified with an in-memory cache so repeated reads of an unchanged
// feed are cheap.
type Fetcher struct {
	client *http.Client

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	etag         string
	lastModified string
	body         []byte
}

// NewFetcher creates a Fetcher with a bounded request timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 15 * time.Second},
		cache:  make(map[string]cacheEntry),
	}
}

// ReadSource returns the raw ICS content of source, which is either an
// http(s) URL or a local file path.
func (f *Fetcher) ReadSource(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return f.fetchURL(ctx, source)
	}
	return os.ReadFile(source)
}

func (f *Fetcher) fetchURL(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	cached, haveCache := f.cache[url]
	f.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if haveCache {
		if cached.etag != "" {
			req.Header.Set("If-None-Match", cached.etag)
		}
		if cached.lastModified != "" {
			req.Header.Set("If-Modified-Since", cached.lastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		// Network error: fall back to the cached body when we have one.
		if haveCache && len(cached.body) > 0 {
			appLog.Warn("fetch failed, using cached body", "url", redactURL(url), "reason", err.Error())
			return cached.body, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}
		f.mu.Lock()
		f.cache[url] = cacheEntry{
			etag:         resp.Header.Get("ETag"),
			lastModified: resp.Header.Get("Last-Modified"),
			body:         body,
		}
		f.mu.Unlock()
		appLog.Debug("fetched source", "url", redactURL(url), "bytes", len(body))
		return body, nil

	case http.StatusNotModified:
		if !haveCache || len(cached.body) == 0 {
			return nil, errors.New("received 304 Not Modified but no cached body available")
		}
		return cached.body, nil

	default:
		if haveCache && len(cached.body) > 0 {
			appLog.Warn("fetch returned non-OK status, using cached body", "url", redactURL(url), "status", resp.StatusCode)
			return cached.body, nil
		}
		return nil, errors.New(resp.Status)
	}
}

// redactURL hides the path and query of a feed URL for logging, since
// private feed URLs often embed access tokens.
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	i := strings.Index(u, "://")
	if i == -1 {
		return "ics://...(redacted)"
	}

	j := i + 3
	for j < len(u) && u[j] != '/' {
		j++
	}
	return u[:j] + redactedSuffix
}
