package metadata

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type stubFetcher struct {
	previews map[string]Preview
	calls    map[string]int
}

func newStubFetcher(previews map[string]Preview) *stubFetcher {
	return &stubFetcher{previews: previews, calls: make(map[string]int)}
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (Preview, error) {
	f.calls[url]++
	preview, ok := f.previews[url]
	if !ok {
		return Preview{}, fmt.Errorf("unresolvable url %s", url)
	}
	return preview, nil
}

func TestNormalizeOverridePrecedence(t *testing.T) {
	fetcher := newStubFetcher(map[string]Preview{
		"a": {URL: "a", Title: "fetched-A"},
		"b": {URL: "b", Title: "fetched-B"},
	})
	svc := NewService(fetcher, NewMemoryCache(), 15*time.Minute)

	normalized, err := svc.Normalize(context.Background(), Batch{
		URLs:       []string{"a", "b"},
		Overrides:  map[string]Overrides{"a": {Title: "X"}},
		TTLMinutes: 15,
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(normalized) != 2 {
		t.Fatalf("expected 2 results, got %d", len(normalized))
	}
	if normalized[0].Title != "X" {
		t.Errorf("override lost: title = %q, want X", normalized[0].Title)
	}
	if normalized[1].Title != "fetched-B" {
		t.Errorf("unexpected override leak: %q", normalized[1].Title)
	}
}

func TestNormalizeCategoryAndPinnedAlwaysWin(t *testing.T) {
	fetcher := newStubFetcher(map[string]Preview{
		"a": {URL: "a", Title: "A", Category: "inferred"},
	})
	svc := NewService(fetcher, NewMemoryCache(), 15*time.Minute)

	normalized, err := svc.Normalize(context.Background(), Batch{
		URLs:       []string{"a"},
		Categories: map[string]string{"a": "tutorials"},
		Pinned:     map[string]bool{"a": true},
		TTLMinutes: 15,
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if normalized[0].Category != "tutorials" {
		t.Errorf("category = %q, want tutorials", normalized[0].Category)
	}
	if !normalized[0].Pinned {
		t.Error("pinned flag lost")
	}
}

func TestNormalizeOmitsUnresolvableURLs(t *testing.T) {
	fetcher := newStubFetcher(map[string]Preview{
		"a": {URL: "a", Title: "A"},
	})
	svc := NewService(fetcher, NewMemoryCache(), 15*time.Minute)

	normalized, err := svc.Normalize(context.Background(), Batch{
		URLs:       []string{"a", "missing"},
		TTLMinutes: 15,
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(normalized) != 1 || normalized[0].URL != "a" {
		t.Errorf("expected only resolvable url, got %+v", normalized)
	}
}

func TestNormalizePreservesInputOrder(t *testing.T) {
	fetcher := newStubFetcher(map[string]Preview{
		"c": {URL: "c"}, "a": {URL: "a"}, "b": {URL: "b"},
	})
	svc := NewService(fetcher, NewMemoryCache(), 15*time.Minute)

	normalized, err := svc.Normalize(context.Background(), Batch{
		URLs:       []string{"c", "a", "b"},
		TTLMinutes: 15,
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	for i, want := range []string{"c", "a", "b"} {
		if normalized[i].URL != want {
			t.Errorf("position %d = %q, want %q", i, normalized[i].URL, want)
		}
	}
}

func TestPreviewUsesCache(t *testing.T) {
	fetcher := newStubFetcher(map[string]Preview{
		"a": {URL: "a", Title: "A"},
	})
	svc := NewService(fetcher, NewMemoryCache(), 15*time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Preview(ctx, "a", time.Minute); err != nil {
			t.Fatalf("preview %d: %v", i, err)
		}
	}
	if fetcher.calls["a"] != 1 {
		t.Errorf("expected 1 upstream fetch with warm cache, got %d", fetcher.calls["a"])
	}
}

func TestPreviewTTLZeroAlwaysFetches(t *testing.T) {
	fetcher := newStubFetcher(map[string]Preview{
		"a": {URL: "a", Title: "A"},
	})
	svc := NewService(fetcher, NewMemoryCache(), 15*time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Preview(ctx, "a", 0); err != nil {
			t.Fatalf("preview %d: %v", i, err)
		}
	}
	if fetcher.calls["a"] != 3 {
		t.Errorf("ttl 0 must bypass cache: got %d fetches", fetcher.calls["a"])
	}
}
