package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Shared request headers.
const (
	acceptLanguage = "en-US,en;q=0.9,vi;q=0.8"
	pageAccept     = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	formContent    = "application/x-www-form-urlencoded"
)

// maxPageBytes caps how much of one page body is held in memory. Document
// pages are far smaller; artifacts never go through FetchPage.
const maxPageBytes = 8 << 20

// Transport bundles the cookie jar, default headers, and HTTP client every
// authenticated request shares. Single-owner and order-sensitive: a login
// must complete before any request that depends on it, so callers serialize
// through the Manager.
type Transport struct {
	client    *http.Client
	userAgent string
	referer   string
}

// NewTransport creates a Transport with a fresh public-suffix-aware cookie
// jar.
func NewTransport(userAgent, referer string) (*Transport, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Transport{
		client:    &http.Client{Jar: jar},
		userAgent: userAgent,
		referer:   referer,
	}, nil
}

// Client exposes the underlying HTTP client for collaborators that stream
// artifact bytes under the session's cookies.
func (t *Transport) Client() *http.Client {
	return t.client
}

// UserAgent returns the agent string sent on every request.
func (t *Transport) UserAgent() string {
	return t.userAgent
}

// Decorate applies the shared headers to an outgoing request.
func (t *Transport) Decorate(req *http.Request) {
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept-Language", acceptLanguage)
	if t.referer != "" {
		req.Header.Set("Referer", t.referer)
	}
}

// FetchPage GETs a page and parses it. Like a browser, it returns whatever
// the server rendered — error pages included — leaving classification to
// the caller; only transport-level failures return an error.
func (t *Transport) FetchPage(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", pageURL, err)
	}
	t.Decorate(req)
	req.Header.Set("Accept", pageAccept)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	return t.readPage(pageURL, resp)
}

// PostForm submits urlencoded form values and parses the response.
func (t *Transport) PostForm(ctx context.Context, actionURL string, values url.Values) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, actionURL, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", actionURL, err)
	}
	t.Decorate(req)
	req.Header.Set("Content-Type", formContent)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	return t.readPage(actionURL, resp)
}

func (t *Transport) readPage(requestURL string, resp *http.Response) (*Page, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read page %s: %w", requestURL, err)
	}

	finalURL := requestURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	page, err := ParsePage(finalURL, string(body))
	if err != nil {
		return nil, err
	}
	page.StatusCode = resp.StatusCode
	return page, nil
}
