// Package discover enumerates candidate work items from the site's listing
// pages. Discovery is stateless and anonymous: it sizes each listing
// pattern's pagination by binary search, fetches every page through a
// bounded worker pool, and extracts (title, URL) rows into a work list. The
// only shared mutable state is the dedup set, guarded by a single mutex.
package discover

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/lawvn/lawfetch/internal/config"
	"github.com/lawvn/lawfetch/internal/model"
)

// Discovery limits.
const (
	// MaxProbePage caps the pagination binary search.
	MaxProbePage = 200
	// MinTitleLength filters out anchor texts too short to be document
	// titles (navigation labels, icons).
	MinTitleLength = 10

	listingAccept   = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	maxListingBytes = 8 << 20
)

// listingRowSelectors detect whether a listing page still has document rows.
// Any hit means the page is worth extracting; no hit past the last page.
var listingRowSelectors = []string{
	`a[href*="/van-ban/"]`,
	`a[href*="/chi-thi/"]`,
	`a[href*="/thong-tu/"]`,
	`a[href*="/nghi-dinh/"]`,
	`a[href*="/quyet-dinh/"]`,
	".doc-title a",
	".document-item a",
	".search-result a",
}

// documentLinkSelectors cast a wider net than the row probe: more document
// kinds plus bare heading anchors, since listing layouts vary by section.
var documentLinkSelectors = []string{
	`a[href*="/van-ban/"]`,
	`a[href*="/chi-thi/"]`,
	`a[href*="/thong-tu/"]`,
	`a[href*="/nghi-dinh/"]`,
	`a[href*="/quyet-dinh/"]`,
	`a[href*="/luat/"]`,
	`a[href*="/cong-van/"]`,
	`a[href*="/thong-bao/"]`,
	".doc-title a",
	".document-item a",
	".search-result a",
	"h3 a",
	"h4 a",
}

// Transport is the slice of the session transport discovery borrows.
// Listing pages are public, but the shared headers keep requests looking
// like the same browser.
type Transport interface {
	Client() *http.Client
	Decorate(req *http.Request)
}

// Scanner discovers work items from listing pages.
type Scanner struct {
	transport Transport
	baseURL   string
	workers   int
	timeout   time.Duration
}

// NewScanner creates a new listing scanner.
func NewScanner(transport Transport, settings config.Settings) *Scanner {
	workers := settings.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	return &Scanner{
		transport: transport,
		baseURL:   strings.TrimRight(settings.BaseURL, "/"),
		workers:   workers,
		timeout:   settings.PageTimeout,
	}
}

// DefaultPatterns lists the listing URLs probed when none are supplied: the
// traffic-law category page, its sub-category variants, and the two site
// search endpoints.
func DefaultPatterns(baseURL string) []string {
	base := strings.TrimRight(baseURL, "/")
	return []string{
		base + "/giao-thong-28.html",
		base + "/giao-thong-28-f1.html",
		base + "/giao-thong-28-f2.html",
		base + "/giao-thong-28-f6.html",
		base + "/search?category=28",
		base + "/tim-kiem.html?q=giao+thong",
	}
}

// DefaultKeywords is the traffic-domain title filter. Each concept appears
// with and without diacritics because listing titles are inconsistent about
// them.
func DefaultKeywords() []string {
	return []string{
		"giao thông", "giao thong", "xe cộ", "ô tô", "xe máy",
		"đường bộ", "duong bo", "vận tải", "van tai",
		"lái xe", "lai xe", "bằng lái", "bang lai",
		"vi phạm", "vi pham", "phạt nguội", "phat nguoi",
		"tốc độ", "toc do", "an toàn", "an toan",
		"đường sắt", "duong sat", "tàu hỏa", "tau hoa",
		"hàng không", "hang khong", "máy bay", "may bay",
		"cảng", "port", "bến xe", "ben xe",
		"biển số", "bien so", "đăng ký", "dang ky",
		"kiểm định", "kiem dinh", "bảo hiểm", "bao hiem",
	}
}

// Scan probes the listing patterns, sizes each one's pagination, fetches
// every listing page through the bounded pool, and returns the deduplicated
// work items whose titles pass the keyword filter. Empty patterns fall back
// to DefaultPatterns; empty keywords keep every title. Page-level failures
// are logged and skipped; Scan fails only when no pattern is reachable or
// the context ends.
func (s *Scanner) Scan(ctx context.Context, patterns, keywords []string) ([]model.WorkItem, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns(s.baseURL)
	}

	pages, err := s.listingPages(ctx, patterns)
	if err != nil {
		return nil, err
	}
	slog.Info("discovery scan starting", "patterns", len(patterns), "pages", len(pages), "workers", s.workers)

	c := &collector{seen: make(map[string]bool)}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, pageURL := range pages {
		pageURL := pageURL // pin per-iteration value; go.mod targets Go 1.21 loop semantics
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, status, err := s.fetchListing(gctx, pageURL)
			if err != nil {
				slog.Warn("listing page failed", "url", pageURL, "error", err)
				return nil
			}
			if status != http.StatusOK {
				slog.Warn("listing page skipped", "url", pageURL, "status", status)
				return nil
			}

			added := 0
			for _, link := range extractLinks(doc, s.baseURL) {
				if utf8.RuneCountInString(link.title) <= MinTitleLength {
					continue
				}
				if !matchesKeywords(link.title, keywords) {
					continue
				}
				if c.add(link.title, link.url) {
					added++
				}
			}
			if added > 0 {
				slog.Debug("listing page scanned", "url", pageURL, "new", added)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("discovery scan complete", "items", len(c.items))
	return c.items, nil
}

// listingPages keeps the reachable patterns and expands each into its full
// page-URL range.
func (s *Scanner) listingPages(ctx context.Context, patterns []string) ([]string, error) {
	var pages []string
	reachable := 0
	for _, pattern := range patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, status, err := s.fetchListing(ctx, pattern)
		if err != nil || status != http.StatusOK {
			slog.Warn("listing pattern unreachable", "pattern", pattern, "status", status, "error", err)
			continue
		}
		reachable++

		max := s.maxPage(ctx, pattern)
		slog.Info("listing pattern sized", "pattern", pattern, "pages", max)
		for n := 1; n <= max; n++ {
			pages = append(pages, buildPageURL(pattern, n))
		}
	}
	if reachable == 0 {
		return nil, fmt.Errorf("no reachable listing patterns out of %d probed", len(patterns))
	}
	return pages, nil
}

// maxPage binary-searches the last listing page that still has document
// rows. Probe failures narrow the search downward, so the result never
// overshoots.
func (s *Scanner) maxPage(ctx context.Context, pattern string) int {
	max := 1
	left, right := 1, MaxProbePage
	for left <= right {
		if ctx.Err() != nil {
			break
		}
		mid := (left + right) / 2
		doc, status, err := s.fetchListing(ctx, buildPageURL(pattern, mid))
		if err == nil && status == http.StatusOK && hasListingRows(doc) {
			max = mid
			left = mid + 1
		} else {
			right = mid - 1
		}
	}
	return max
}

// fetchListing retrieves one listing page and parses it. The HTTP status is
// returned alongside the document so callers can distinguish "past the last
// page" from transport failure.
func (s *Scanner) fetchListing(ctx context.Context, pageURL string) (*goquery.Document, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build listing request: %w", err)
	}
	s.transport.Decorate(req)
	req.Header.Set("Accept", listingAccept)

	resp, err := s.transport.Client().Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch listing %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxListingBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("parse listing %s: %w", pageURL, err)
	}
	return doc, resp.StatusCode, nil
}

// buildPageURL appends the page parameter, extending the query string when
// the pattern already has one.
func buildPageURL(pattern string, page int) string {
	if strings.Contains(pattern, "?") {
		return fmt.Sprintf("%s&page=%d", pattern, page)
	}
	return fmt.Sprintf("%s?page=%d", pattern, page)
}

func hasListingRows(doc *goquery.Document) bool {
	for _, selector := range listingRowSelectors {
		if doc.Find(selector).Length() > 0 {
			return true
		}
	}
	return false
}

type link struct {
	title string
	url   string
}

// extractLinks pulls every document anchor off the page, resolved against
// the site root and deduplicated within the page. Selector order decides
// which anchor text wins when the same URL appears under several selectors.
func extractLinks(doc *goquery.Document, baseURL string) []link {
	seen := make(map[string]bool)
	var links []link
	for _, selector := range documentLinkSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok || strings.TrimSpace(href) == "" {
				return
			}
			abs := resolveURL(baseURL, href)
			if seen[abs] {
				return
			}
			seen[abs] = true
			links = append(links, link{title: strings.TrimSpace(sel.Text()), url: abs})
		})
	}
	return links
}

func resolveURL(baseURL, href string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func matchesKeywords(title string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(title)
	for _, keyword := range keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// collector is the mutex-guarded dedup set shared by the scan workers.
// Different listing pages routinely surface the same document; the first
// worker to claim a URL keeps it.
type collector struct {
	mu    sync.Mutex
	seen  map[string]bool
	items []model.WorkItem
}

func (c *collector) add(title, sourceURL string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen[sourceURL] {
		return false
	}
	c.seen[sourceURL] = true
	c.items = append(c.items, model.WorkItem{
		ID:        len(c.items) + 1,
		Title:     title,
		SourceURL: sourceURL,
	})
	return true
}
