// Package fetcher is a ContentStore reading raw page text from a wiki over
// HTTP (index.php?action=raw).
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/mooc-renderer/models"
)

// DefaultTimeout bounds a single page request.
const DefaultTimeout = 30 * time.Second

// userAgent identifies requests to the wiki.
const userAgent = "mooc-renderer/1.0"

type Fetcher struct {
	client  *http.Client
	baseURL string
}

// NewFetcher returns a fetcher for the wiki at baseURL (the directory that
// contains index.php). A nil client gets DefaultTimeout.
func NewFetcher(baseURL string, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Fetcher{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// rawURL returns the raw-action URL of id.
func (f *Fetcher) rawURL(id models.Identifier, action string) string {
	q := url.Values{}
	q.Set("title", strings.ReplaceAll(string(id), " ", "_"))
	q.Set("action", action)
	return f.baseURL + "/index.php?" + q.Encode()
}

// Fetch implements models.ContentStore.
func (f *Fetcher) Fetch(ctx context.Context, id models.Identifier) (string, error) {
	body, err := f.get(ctx, id, f.rawURL(id, "raw"))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchRendered returns the wiki's own HTML rendering of id, used to compare
// output against the live site.
func (f *Fetcher) FetchRendered(ctx context.Context, id models.Identifier) (*goquery.Document, error) {
	body, err := f.get(ctx, id, f.rawURL(id, "render"))
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

func (f *Fetcher) get(ctx context.Context, id models.Identifier, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%q: %w", id, models.ErrPageNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("failed to fetch %q, status code: %d", id, resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return bodyBytes, nil
}
