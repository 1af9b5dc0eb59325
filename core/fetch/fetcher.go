// Package fetch downloads a saved or shared conversation page so the CLI
// can convert it by URL instead of from a local export file.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gaurav-prasanna/chatdoc/core"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "chatdoc/1.0 (https://github.com/gaurav-prasanna/chatdoc)"
)

// HTTPFetcher downloads conversation pages over HTTP(S).
type HTTPFetcher struct {
	client *http.Client
	// limit caps the body read. One byte past MaxHTMLSize is kept so the
	// size check downstream still reports the export as too large.
	limit int64
}

// New creates an HTTPFetcher. Share pages that do not answer within 30
// seconds are abandoned.
func New() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: defaultTimeout},
		limit:  core.MaxHTMLSize + 1,
	}
}

// Fetch downloads the page at rawURL. Only http and https URLs are
// accepted, and the response must be HTML or untyped text; a share link
// that resolves to a JSON API or a binary attachment is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*core.FetchResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("export URL %q must be an absolute http or https URL", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for export %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading export %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("export URL %s returned status %d", rawURL, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !isPageType(ct) {
		return nil, fmt.Errorf("export URL %s served %s, not an HTML page", rawURL, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.limit))
	if err != nil {
		return nil, fmt.Errorf("reading export %s: %w", rawURL, err)
	}

	return &core.FetchResult{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		HTML:       string(body),
	}, nil
}

// isPageType reports whether a Content-Type header can carry a saved page.
func isPageType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "text/") || mediaType == "application/xhtml+xml"
}
