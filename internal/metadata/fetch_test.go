package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"
)

const samplePage = `<!DOCTYPE html>
<html><head>
<title>Fallback Title</title>
<meta property="og:title" content="Understanding Goroutines">
<meta property="og:description" content="A long walk through the scheduler.">
<meta property="og:image" content="/img/cover.png">
<meta property="article:published_time" content="2024-03-01T10:00:00Z">
<meta property="article:tag" content="go">
<meta property="article:tag" content="concurrency">
</head><body><p>Short.</p></body></html>`

func newFastFetcher(timeout time.Duration) *HTTPFetcher {
	f := NewHTTPFetcher(timeout)
	f.backoff = time.Millisecond
	return f
}

func TestFetchParsesOpenGraph(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	fetcher := newFastFetcher(5 * time.Second)
	preview, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if preview.Title != "Understanding Goroutines" {
		t.Errorf("title = %q", preview.Title)
	}
	if preview.Summary != "A long walk through the scheduler." {
		t.Errorf("summary = %q", preview.Summary)
	}
	if !strings.HasPrefix(preview.Image, server.URL) || !strings.HasSuffix(preview.Image, "/img/cover.png") {
		t.Errorf("relative og:image not resolved: %q", preview.Image)
	}
	if preview.Date != "2024-03-01T10:00:00Z" {
		t.Errorf("date = %q", preview.Date)
	}
	if len(preview.Tags) != 2 || preview.Tags[0] != "go" {
		t.Errorf("tags = %v", preview.Tags)
	}
	if preview.ReadMinutes < 1 {
		t.Errorf("readMinutes = %d", preview.ReadMinutes)
	}
}

func TestFetchFallsBackToTitleAndParagraph(t *testing.T) {
	page := `<html><head><title>Plain Page</title></head><body>
<p>tiny</p>
<p>This paragraph is comfortably longer than sixty characters so it should be picked as the summary fallback.</p>
</body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	fetcher := newFastFetcher(5 * time.Second)
	preview, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if preview.Title != "Plain Page" {
		t.Errorf("title fallback = %q", preview.Title)
	}
	if !strings.HasPrefix(preview.Summary, "This paragraph") {
		t.Errorf("paragraph fallback = %q", preview.Summary)
	}
}

func TestFetchTruncatesSummaryOnRuneBoundary(t *testing.T) {
	// 999 ASCII bytes followed by a three-byte rune straddling the cap.
	description := strings.Repeat("a", maxSummaryLen-1) + "日本語"
	page := `<html><head><meta property="og:description" content="` + description + `"></head><body></body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	fetcher := newFastFetcher(5 * time.Second)
	preview, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(preview.Summary) > maxSummaryLen {
		t.Errorf("summary is %d bytes, cap is %d", len(preview.Summary), maxSummaryLen)
	}
	if !utf8.ValidString(preview.Summary) {
		t.Error("truncation split a multi-byte rune")
	}
	if !strings.HasSuffix(preview.Summary, "a") {
		t.Errorf("summary should end before the straddling rune, got %q", preview.Summary[len(preview.Summary)-8:])
	}
}

func TestFetchRetriesTransientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	fetcher := newFastFetcher(5 * time.Second)
	preview, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch after retries: %v", err)
	}
	if preview.Title != "Understanding Goroutines" {
		t.Errorf("title = %q", preview.Title)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := newFastFetcher(5 * time.Second)
	if _, err := fetcher.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("expected error for 404")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected single attempt for 404, got %d", got)
	}
}

func TestEstimateReadMinutes(t *testing.T) {
	if got := estimateReadMinutes(""); got != 1 {
		t.Errorf("empty text = %d, want 1", got)
	}
	long := strings.Repeat("word ", 600)
	if got := estimateReadMinutes(long); got != 3 {
		t.Errorf("600 words = %d, want 3", got)
	}
}
