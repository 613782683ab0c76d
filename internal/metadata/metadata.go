// Package metadata fetches, caches, and normalizes blog post metadata for
// manually curated URLs.
package metadata

// Preview is the normalized metadata for one URL.
type Preview struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Image       string   `json:"image"`
	Date        string   `json:"date"`
	Tags        []string `json:"tags"`
	ReadMinutes int      `json:"readMinutes"`
	Category    string   `json:"category,omitempty"`
	Pinned      bool     `json:"pinned,omitempty"`
}

// Batch is one normalization request: the fetch set plus the per-URL manual
// data that takes precedence over whatever the fetch discovers.
type Batch struct {
	URLs       []string             `json:"urls"`
	Overrides  map[string]Overrides `json:"overrides"`
	Categories map[string]string    `json:"categories"`
	Pinned     map[string]bool      `json:"pinned"`
	TTLMinutes int                  `json:"ttl"`
}

// Overrides are the user-supplied field replacements for one URL. Only
// non-empty fields win over fetched values.
type Overrides struct {
	Title   string `json:"title,omitempty"`
	Summary string `json:"summary,omitempty"`
	Image   string `json:"image,omitempty"`
	Date    string `json:"date,omitempty"`
}
