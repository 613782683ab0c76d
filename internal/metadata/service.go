package metadata

import (
	"context"
	"log"
	"time"
)

// Service combines the fetcher and cache and applies the manual-data merge
// contract: overrides win field-by-field, category and pinned always win.
type Service struct {
	fetcher    Fetcher
	cache      Cache
	defaultTTL time.Duration
}

func NewService(fetcher Fetcher, cache Cache, defaultTTL time.Duration) *Service {
	if defaultTTL <= 0 {
		defaultTTL = 15 * time.Minute
	}
	return &Service{fetcher: fetcher, cache: cache, defaultTTL: defaultTTL}
}

// Preview returns metadata for one URL, consulting the cache first.
// ttl <= 0 disables caching for this call and always fetches.
func (s *Service) Preview(ctx context.Context, url string, ttl time.Duration) (Preview, error) {
	if ttl > 0 {
		cached, ok, err := s.cache.Get(ctx, url)
		if err != nil {
			log.Printf("preview cache read failed for %s: %v", url, err)
		} else if ok {
			return cached, nil
		}
	}

	preview, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return Preview{}, err
	}

	if ttl > 0 {
		if err := s.cache.Set(ctx, url, preview, ttl); err != nil {
			log.Printf("preview cache write failed for %s: %v", url, err)
		}
	}
	return preview, nil
}

// Normalize resolves every URL in the batch. URLs that fail to resolve are
// omitted from the result, not reported as partial failure. Result order is
// the batch's URL order.
func (s *Service) Normalize(ctx context.Context, batch Batch) ([]Preview, error) {
	ttl := s.defaultTTL
	if batch.TTLMinutes > 0 {
		ttl = time.Duration(batch.TTLMinutes) * time.Minute
	} else if batch.TTLMinutes == 0 {
		ttl = 0
	}

	normalized := make([]Preview, 0, len(batch.URLs))
	for _, url := range batch.URLs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		preview, err := s.Preview(ctx, url, ttl)
		if err != nil {
			log.Printf("normalize: skipping %s: %v", url, err)
			continue
		}
		normalized = append(normalized, merge(preview, batch, url))
	}
	return normalized, nil
}

func merge(preview Preview, batch Batch, url string) Preview {
	if category, ok := batch.Categories[url]; ok && category != "" {
		preview.Category = category
	}
	if batch.Pinned[url] {
		preview.Pinned = true
	}
	if overrides, ok := batch.Overrides[url]; ok {
		if overrides.Title != "" {
			preview.Title = overrides.Title
		}
		if overrides.Summary != "" {
			preview.Summary = overrides.Summary
		}
		if overrides.Image != "" {
			preview.Image = overrides.Image
		}
		if overrides.Date != "" {
			preview.Date = overrides.Date
		}
	}
	return preview
}
