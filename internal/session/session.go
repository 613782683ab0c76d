// Package session owns the local working copy of the configuration document
// and synchronizes it against the authoritative remote store.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"folio/api/internal/document"
	"folio/api/internal/metadata"
)

// Remote is the slice of the store client the session needs.
type Remote interface {
	FetchConfig(ctx context.Context) ([]byte, error)
	PublishConfig(ctx context.Context, raw json.RawMessage) error
	Normalize(ctx context.Context, batch metadata.Batch) ([]document.NormalizedPost, error)
}

type opKind int

const (
	opPublish opKind = iota
	opLoad
	opNormalize
)

// Session holds the single working copy. Remote operations run with the lock
// released; each one captures the working-copy generation on entry and
// discards its result if the copy was replaced wholesale in the meantime.
type Session struct {
	mu         sync.Mutex
	doc        *document.Document
	draft      *DraftStore
	remote     Remote
	generation uint64
	inflight   map[opKind]bool
}

func New(draft *DraftStore, remote Remote) *Session {
	return &Session{
		doc:      document.Default(),
		draft:    draft,
		remote:   remote,
		inflight: make(map[opKind]bool),
	}
}

// Document returns the live working copy. Callers must not retain it across
// operations that replace the copy wholesale.
func (s *Session) Document() *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Snapshot returns an independent deep copy for read-only use.
func (s *Session) Snapshot() *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// LoadLocalDraft restores a previously saved draft into the working copy.
// It reports whether a draft existed. A corrupt draft is an error and leaves
// the working copy untouched.
func (s *Session) LoadLocalDraft() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return false, nil
	}
	doc, ok, err := s.draft.Load()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	s.replaceLocked(doc)
	return true, nil
}

// PersistLocalDraft writes the current working copy to the draft slot.
func (s *Session) PersistLocalDraft() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// Mutate applies an in-place edit to the working copy and persists the draft
// when the edit succeeds.
func (s *Session) Mutate(fn func(*document.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.doc); err != nil {
		return err
	}
	return s.persistLocked()
}

// LoadFromRemote replaces the working copy with the authoritative document.
// Any unsaved local edits are overwritten.
func (s *Session) LoadFromRemote(ctx context.Context) error {
	s.mu.Lock()
	if s.inflight[opLoad] {
		s.mu.Unlock()
		return ErrBusy
	}
	s.inflight[opLoad] = true
	gen := s.generation
	s.mu.Unlock()

	raw, err := s.remote.FetchConfig(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, opLoad)
	if err != nil {
		return err
	}
	if gen != s.generation {
		return ErrStale
	}
	doc, decodeErr := document.Decode(raw)
	if decodeErr != nil {
		return &ParseError{Source: "remote config", Err: decodeErr}
	}
	s.replaceLocked(doc)
	return s.persistLocked()
}

// Publish pushes the working copy to the remote store wholesale. Rejections
// from the store come back as *remote.RejectionError with the server's
// detail intact.
func (s *Session) Publish(ctx context.Context) error {
	s.mu.Lock()
	if s.inflight[opPublish] {
		s.mu.Unlock()
		return ErrBusy
	}
	s.inflight[opPublish] = true
	raw, err := s.doc.Encode()
	s.mu.Unlock()

	if err == nil {
		err = s.remote.PublishConfig(ctx, raw)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, opPublish)
	return err
}

// ImportSnapshot replaces the working copy with a full document decoded from
// raw bytes. The replacement is fail-closed: nothing changes unless the bytes
// decode cleanly.
func (s *Session) ImportSnapshot(raw []byte) error {
	if err := document.CheckShape(raw); err != nil {
		return &ParseError{Source: "snapshot", Err: err}
	}
	doc, err := document.Decode(raw)
	if err != nil {
		return &ParseError{Source: "snapshot", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(doc)
	return s.persistLocked()
}

// NormalizeBlog collects the manual post list into a fetch batch, runs it
// through the metadata service, and replaces the normalized list wholesale.
// Posts with blank URLs are skipped; for duplicate URLs the first entry wins.
func (s *Session) NormalizeBlog(ctx context.Context) error {
	s.mu.Lock()
	if s.inflight[opNormalize] {
		s.mu.Unlock()
		return ErrBusy
	}
	batch := buildBatch(&s.doc.Blog)
	if len(batch.URLs) == 0 {
		s.mu.Unlock()
		return ErrNoPosts
	}
	s.inflight[opNormalize] = true
	gen := s.generation
	s.mu.Unlock()

	normalized, err := s.remote.Normalize(ctx, batch)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, opNormalize)
	if err != nil {
		return err
	}
	if gen != s.generation {
		return ErrStale
	}
	s.doc.Blog.Normalized = normalized
	return s.persistLocked()
}

func (s *Session) replaceLocked(doc *document.Document) {
	s.doc = doc
	s.generation++
}

func (s *Session) persistLocked() error {
	if s.draft == nil {
		return nil
	}
	return s.draft.Save(s.doc)
}

func buildBatch(blog *document.Blog) metadata.Batch {
	batch := metadata.Batch{
		Overrides:  make(map[string]metadata.Overrides),
		Categories: make(map[string]string),
		Pinned:     make(map[string]bool),
		TTLMinutes: blog.CacheMinutes,
	}
	seen := make(map[string]bool)
	for _, post := range blog.ManualPosts {
		if post.URL == "" {
			continue
		}
		// Fetch each URL once, but let a later duplicate entry overwrite
		// the per-URL data written by an earlier one.
		if !seen[post.URL] {
			seen[post.URL] = true
			batch.URLs = append(batch.URLs, post.URL)
		}
		if o := post.Overrides; o != (document.PostOverrides{}) {
			batch.Overrides[post.URL] = metadata.Overrides{
				Title:   o.Title,
				Summary: o.Summary,
				Image:   o.Image,
				Date:    o.Date,
			}
		}
		if post.Category != "" {
			batch.Categories[post.URL] = post.Category
		}
		if post.Pinned {
			batch.Pinned[post.URL] = true
		}
	}
	return batch
}
