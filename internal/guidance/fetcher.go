package guidance

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/reportlens/internal/cache"
	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.PageFetcher = (*Fetcher)(nil)

const (
	// pageCacheTTL keeps fetched pages warm across requests.
	pageCacheTTL = 12 * time.Hour

	// pageCacheSize bounds the page cache.
	pageCacheSize = 256

	// fetchUserAgent identifies the service to content hosts.
	fetchUserAgent = "reportlens/1.0 (educational)"
)

// allowedHosts is the fixed trusted-source allow-list. Any URL outside
// it is rejected before a connection is made.
var allowedHosts = map[string]struct{}{
	"www.nhs.uk":         {},
	"nhs.uk":             {},
	"medlineplus.gov":    {},
	"www.medlineplus.gov": {},
	"ods.od.nih.gov":     {},
}

// page is a cached fetch result, kept in both raw and stripped forms.
type page struct {
	html string
	text string
}

// Fetcher retrieves informational pages from allow-listed hosts with a
// shared TTL cache.
type Fetcher struct {
	http  *http.Client
	cache *cache.Cache[string, page]
}

// NewFetcher creates a page fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{
		// Per-call deadlines come from the caller's context; this is a
		// backstop against a stuck connection.
		http:  &http.Client{Timeout: 20 * time.Second},
		cache: cache.New[string, page](pageCacheSize, pageCacheTTL),
	}
}

// Allowed reports whether the URL's host is on the allow-list.
func (f *Fetcher) Allowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	_, ok := allowedHosts[u.Hostname()]
	return ok
}

// FetchText returns the page with HTML stripped.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	p, err := f.fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return p.text, nil
}

// FetchHTML returns the raw page markup.
func (f *Fetcher) FetchHTML(ctx context.Context, rawURL string) (string, error) {
	p, err := f.fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return p.html, nil
}

// fetch performs the cached GET. Concurrent requests may both miss and
// both populate a key; last write wins and values are idempotent.
func (f *Fetcher) fetch(ctx context.Context, rawURL string) (page, error) {
	if !f.Allowed(rawURL) {
		return page{}, fmt.Errorf("%w: %s", domain.ErrBlockedHost, rawURL)
	}

	if p, ok := f.cache.Get(rawURL); ok {
		return p, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return page{}, err
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.http.Do(req)
	if err != nil {
		return page{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return page{}, fmt.Errorf("fetch failed: HTTP %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return page{}, err
	}

	p := page{html: string(body), text: StripHTML(string(body))}
	f.cache.Set(rawURL, p)
	return p, nil
}

// Pre-compiled regular expressions for HTML stripping.
var (
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	blockElements = regexp.MustCompile(`(?i)</(p|li|h[1-3]|br|div)>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	stripSpaces   = regexp.MustCompile(`[ \t]+`)
	stripNewlines = regexp.MustCompile(`\n{3,}`)
)

// StripHTML reduces markup to readable text: scripts and styles are
// dropped, block boundaries become newlines, remaining tags are removed
// and whitespace is collapsed. Good enough for nutrient mention
// scanning; this is not a general HTML renderer.
func StripHTML(content string) string {
	content = scriptTag.ReplaceAllString(content, " ")
	content = styleTag.ReplaceAllString(content, " ")
	content = blockElements.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, " ")
	content = html.UnescapeString(content)
	content = stripSpaces.ReplaceAllString(content, " ")
	content = stripNewlines.ReplaceAllString(content, "\n\n")

	lines := strings.Split(content, "\n")
	var kept []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// searchLinkSections are the NHS site sections worth following from a
// search result page.
var searchLinkSections = map[string]struct{}{
	"conditions":              {},
	"live-well":               {},
	"common-health-questions": {},
	"medicines":               {},
}

// blockedSlugs are index pages that carry no condition content.
var blockedSlugs = map[string]struct{}{
	"live-well":     {},
	"mental-health": {},
	"conditions":    {},
	"services":      {},
	"covid-19":      {},
}

// maxSearchLinks caps how many deep links one search page may yield.
const maxSearchLinks = 20

// ExtractSearchLinks pulls condition deep links out of a search result
// page, keeping only allow-listed site sections and dropping index
// slugs. Links come back absolute against the given base host.
func ExtractSearchLinks(htmlContent, baseHost string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.HasPrefix(href, "/") {
			return true
		}

		path := strings.SplitN(href, "#", 2)[0]
		path = strings.SplitN(path, "?", 2)[0]

		var segments []string
		for _, s := range strings.Split(path, "/") {
			if s != "" {
				segments = append(segments, s)
			}
		}
		if len(segments) < 2 {
			return true
		}
		if _, ok := searchLinkSections[segments[0]]; !ok {
			return true
		}
		if _, blocked := blockedSlugs[segments[len(segments)-1]]; blocked {
			return true
		}

		link := "https://" + baseHost + "/" + strings.Join(segments, "/")
		if _, dup := seen[link]; dup {
			return true
		}
		seen[link] = struct{}{}
		links = append(links, link)
		return len(links) < maxSearchLinks
	})

	return links
}
