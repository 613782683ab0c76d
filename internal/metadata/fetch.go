package metadata

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	maxSummaryLen  = 1000
	wordsPerMinute = 200.0
	maxBodyBytes   = 4 << 20
)

// Fetcher resolves one URL to its metadata.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (Preview, error)
}

// HTTPFetcher scrapes Open Graph metadata with browser-like headers and a
// short retry policy for transient upstream failures.
type HTTPFetcher struct {
	client  *http.Client
	retries int
	backoff time.Duration
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		retries: 3,
		backoff: 500 * time.Millisecond,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (Preview, error) {
	body, err := f.get(ctx, pageURL)
	if err != nil {
		return Preview{}, err
	}

	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return Preview{}, fmt.Errorf("parse html for %s: %w", pageURL, err)
	}

	page := extractPage(root, pageURL)
	summary := page.description
	if summary == "" {
		summary = page.firstParagraph
	}
	if len(summary) > maxSummaryLen {
		// Cut on a rune boundary so a multi-byte character at the cap
		// is dropped rather than split.
		cut := maxSummaryLen
		for cut > 0 && !utf8.RuneStart(summary[cut]) {
			cut--
		}
		summary = summary[:cut]
	}

	title := page.title
	if title == "" {
		title = pageURL
	}

	return Preview{
		URL:         pageURL,
		Title:       title,
		Summary:     summary,
		Image:       page.image,
		Date:        page.date,
		Tags:        page.tags,
		ReadMinutes: estimateReadMinutes(summary),
	}, nil
}

// get retries on 429 and 5xx; other status codes fail immediately.
func (f *HTTPFetcher) get(ctx context.Context, pageURL string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			delay := f.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return "", fmt.Errorf("build request for %s: %w", pageURL, err)
		}
		req.Header.Set("User-Agent",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("fetch %s: %w", pageURL, err)
			continue
		}

		if retryableStatus(resp.StatusCode) {
			resp.Body.Close()
			lastErr = fmt.Errorf("fetch %s: upstream status %d", pageURL, resp.StatusCode)
			continue
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return "", fmt.Errorf("fetch %s: upstream status %d", pageURL, resp.StatusCode)
		}

		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read %s: %w", pageURL, err)
			continue
		}
		return string(raw), nil
	}
	return "", lastErr
}

func retryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

type pageMeta struct {
	title          string
	description    string
	image          string
	date           string
	tags           []string
	firstParagraph string
	docTitle       string
}

func extractPage(root *html.Node, baseURL string) pageMeta {
	var page pageMeta
	walk(root, &page)

	if page.title == "" {
		page.title = page.docTitle
	}
	if page.image != "" {
		page.image = resolveURL(baseURL, page.image)
	}
	return page
}

func walk(n *html.Node, page *pageMeta) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "meta":
			readMeta(n, page)
		case "title":
			if page.docTitle == "" {
				page.docTitle = strings.TrimSpace(textContent(n))
			}
		case "p":
			if page.firstParagraph == "" {
				text := strings.TrimSpace(textContent(n))
				if len(text) > 60 {
					page.firstParagraph = text
				}
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child, page)
	}
}

func readMeta(n *html.Node, page *pageMeta) {
	var name, content string
	for _, attr := range n.Attr {
		switch attr.Key {
		case "property", "name":
			if name == "" {
				name = attr.Val
			}
		case "content":
			content = attr.Val
		}
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}

	switch name {
	case "og:title":
		if page.title == "" {
			page.title = content
		}
	case "og:description", "description":
		if page.description == "" {
			page.description = content
		}
	case "og:image":
		if page.image == "" {
			page.image = content
		}
	case "article:published_time", "og:updated_time", "article:modified_time":
		if page.date == "" {
			page.date = content
		}
	case "article:tag":
		page.tags = append(page.tags, content)
	}
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
			b.WriteByte(' ')
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}
	visit(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func resolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

func estimateReadMinutes(text string) int {
	words := len(strings.Fields(text))
	minutes := int(math.Round(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}
