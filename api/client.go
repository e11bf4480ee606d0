package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/soar/uknd_exhibit/cache"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTimeout = 30 * time.Second
	// maxDocumentSize caps how much of a remote document is read
	maxDocumentSize = 16 << 20
)

// Document is a run document read from a source
type Document struct {
	Source    string
	Data      []byte
	FromCache bool // Served from the document cache
	Stale     bool // Served from an expired cache entry because the source failed
}

// Client reads run documents from local files or http(s) URLs
type Client struct {
	HTTPClient    *http.Client
	documentCache *cache.DocumentCache
	group         singleflight.Group
}

// NewClient creates a new document client
func NewClient(timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetDocumentCache sets the document cache used for remote sources
func (c *Client) SetDocumentCache(dc *cache.DocumentCache) {
	c.documentCache = dc
}

// GetDocumentCache returns the document cache
func (c *Client) GetDocumentCache() *cache.DocumentCache {
	return c.documentCache
}

// IsRemote reports whether a source is fetched over HTTP
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch reads a run document. Concurrent fetches of the same source share
// one request.
func (c *Client) Fetch(ctx context.Context, source string) (*Document, error) {
	if source == "" {
		return nil, fmt.Errorf("no run document source configured")
	}
	if !IsRemote(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read run document: %w", err)
		}
		return &Document{Source: source, Data: data}, nil
	}

	v, err, _ := c.group.Do(source, func() (any, error) {
		return c.fetchRemote(ctx, source)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Document), nil
}

func (c *Client) fetchRemote(ctx context.Context, source string) (*Document, error) {
	if c.documentCache != nil {
		if item, ok := c.documentCache.Get(source); ok {
			return &Document{Source: source, Data: item.Data, FromCache: true}, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var stale *cache.DocumentCacheItem
	if c.documentCache != nil {
		if item, ok := c.documentCache.Stale(source); ok {
			stale = item
			if item.ETag != "" {
				req.Header.Set("If-None-Match", item.ETag)
			}
		}
	}

	data, etag, notModified, err := c.doRequest(req)
	switch {
	case err != nil && stale != nil:
		return &Document{Source: source, Data: stale.Data, FromCache: true, Stale: true}, nil
	case err != nil:
		return nil, err
	case notModified && stale != nil:
		c.documentCache.Touch(source)
		return &Document{Source: source, Data: stale.Data, FromCache: true}, nil
	case notModified:
		return nil, fmt.Errorf("server answered 304 Not Modified for an uncached document")
	}

	if c.documentCache != nil {
		c.documentCache.Set(source, data, etag)
	}
	return &Document{Source: source, Data: data}, nil
}

func (c *Client) doRequest(req *http.Request) (data []byte, etag string, notModified bool, err error) {
	req.Header.Set("Accept", "application/yaml, text/yaml, text/plain, */*")
	req.Header.Set("User-Agent", "uknd_exhibit/1.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, "", false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return nil, "", true, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", false, fmt.Errorf("source returned error status code %d: %s", resp.StatusCode, string(body))
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) > maxDocumentSize {
		return nil, "", false, fmt.Errorf("run document exceeds %d bytes", maxDocumentSize)
	}
	return data, resp.Header.Get("ETag"), false, nil
}
