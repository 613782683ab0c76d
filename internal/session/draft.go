package session

import (
	"fmt"
	"os"
	"path/filepath"

	"folio/api/internal/document"
)

// DraftStore persists the local working copy to a single file slot. Writes go
// through a temp file and rename so a crash never leaves a torn draft.
type DraftStore struct {
	path string
}

func NewDraftStore(path string) *DraftStore {
	return &DraftStore{path: path}
}

func (d *DraftStore) Path() string {
	return d.path
}

// Load reads the saved draft. ok is false when no draft exists; a draft that
// exists but cannot be decoded is a ParseError, not a crash.
func (d *DraftStore) Load() (*document.Document, bool, error) {
	raw, err := os.ReadFile(d.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read draft: %w", err)
	}
	doc, err := document.Decode(raw)
	if err != nil {
		return nil, false, &ParseError{Source: d.path, Err: err}
	}
	return doc, true, nil
}

// Save overwrites the draft slot atomically.
func (d *DraftStore) Save(doc *document.Document) error {
	raw, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create draft dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".draft-*")
	if err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write draft: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	if err := os.Rename(tmp.Name(), d.path); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	return nil
}

// Clear removes the saved draft if one exists.
func (d *DraftStore) Clear() error {
	err := os.Remove(d.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
