// Package importer stages externally produced project files for review
// before they enter the document through the editor.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"folio/api/internal/document"
)

// MaxFileBytes is the upper bound on an import file. Checked before any
// bytes are sent to the service.
const MaxFileBytes = 10 << 20

var (
	ErrNotJSON       = errors.New("only JSON files are supported")
	ErrTooLarge      = errors.New("file size must be less than 10MB")
	ErrNothingStaged = errors.New("no import candidate is staged")
)

// ProjectImporter parses raw file bytes into a candidate project.
type ProjectImporter interface {
	ImportProject(ctx context.Context, filename string, raw []byte) (document.Project, error)
}

// FormOpener receives the confirmed candidate as a prepopulated creation
// form. Satisfied by the project editor.
type FormOpener interface {
	OpenNewFrom(p document.Project)
}

// Summary is the review card shown for a staged candidate.
type Summary struct {
	Title      string
	Category   string
	Status     string
	Summary    string
	Paragraphs int
	TechItems  int
	MediaTabs  int
}

// Importer holds at most one staged candidate at a time. Staging a new file
// replaces the previous candidate.
type Importer struct {
	remote ProjectImporter
	editor FormOpener
	staged *document.Project
}

func New(remote ProjectImporter, editor FormOpener) *Importer {
	return &Importer{remote: remote, editor: editor}
}

// StageFile reads a project file from disk and stages it. The extension and
// size guards run before anything touches the network.
func (im *Importer) StageFile(ctx context.Context, path string) (Summary, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return Summary{}, ErrNotJSON
	}
	info, err := os.Stat(path)
	if err != nil {
		return Summary{}, fmt.Errorf("stat import file: %w", err)
	}
	if info.Size() > MaxFileBytes {
		return Summary{}, ErrTooLarge
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("read import file: %w", err)
	}
	return im.Stage(ctx, filepath.Base(path), raw)
}

// Stage submits raw bytes to the import service and stages the parsed
// candidate. On failure nothing is staged.
func (im *Importer) Stage(ctx context.Context, filename string, raw []byte) (Summary, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".json") {
		return Summary{}, ErrNotJSON
	}
	if len(raw) > MaxFileBytes {
		return Summary{}, ErrTooLarge
	}
	project, err := im.remote.ImportProject(ctx, filename, raw)
	if err != nil {
		return Summary{}, err
	}
	im.staged = &project
	return summarize(project), nil
}

// Preview returns the review summary of the staged candidate.
func (im *Importer) Preview() (Summary, bool) {
	if im.staged == nil {
		return Summary{}, false
	}
	return summarize(*im.staged), true
}

// Confirm hands the staged candidate to the editor as a prepopulated
// creation form and clears the stage. The project is not part of the
// document until the user saves the form.
func (im *Importer) Confirm() error {
	if im.staged == nil {
		return ErrNothingStaged
	}
	im.editor.OpenNewFrom(*im.staged)
	im.staged = nil
	return nil
}

// Cancel discards the staged candidate.
func (im *Importer) Cancel() {
	im.staged = nil
}

func summarize(p document.Project) Summary {
	s := Summary{
		Title:      p.Title,
		Category:   p.Meta.Category,
		Status:     p.Meta.Status,
		Summary:    truncate(p.Summary, 150),
		Paragraphs: len(p.Content),
	}
	if p.TechSpecs != nil {
		s.TechItems = len(p.TechSpecs.Items)
	}
	if p.Media != nil {
		s.MediaTabs = len(p.Media.Tabs)
	}
	return s
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
