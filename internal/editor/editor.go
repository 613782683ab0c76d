// Package editor implements the project editing workflow: a flat form over
// one project at a time, with an explicit open/save lifecycle.
package editor

import (
	"encoding/json"
	"errors"
	"fmt"

	"folio/api/internal/document"
)

// DocumentStore is the slice of the synchronizer the editor mutates through.
type DocumentStore interface {
	Document() *document.Document
	Mutate(fn func(*document.Document) error) error
}

// State tracks which project, if any, the form is bound to.
type State int

const (
	// Idle means no form is open.
	Idle State = iota
	// Creating means the form targets a project that does not exist yet.
	Creating
	// Editing means the form targets the project at Editor.Index.
	Editing
)

var (
	ErrNoForm          = errors.New("no project form is open")
	ErrConfirmRequired = errors.New("delete requires confirmation")
)

// ValidationError reports a form field that fails the save-boundary checks.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// Editor is the project editing state machine. Exactly one form can be open
// at a time; Save and Cancel both return to Idle.
type Editor struct {
	store DocumentStore

	state State
	index int
	form  Form
}

func New(store DocumentStore) *Editor {
	return &Editor{store: store, state: Idle}
}

func (e *Editor) State() State {
	return e.state
}

// Index returns the slice position of the project being edited. Only
// meaningful in the Editing state.
func (e *Editor) Index() int {
	return e.index
}

// Form returns a pointer to the live form for field edits. Nil when Idle.
func (e *Editor) Form() *Form {
	if e.state == Idle {
		return nil
	}
	return &e.form
}

// OpenNew opens an empty form for a project that will be inserted at the
// head of the list on save.
func (e *Editor) OpenNew() {
	e.form = Form{}
	e.state = Creating
	e.index = 0
}

// OpenNewFrom opens a creation form prepopulated from an existing project,
// for example an import candidate.
func (e *Editor) OpenNewFrom(p document.Project) {
	e.form = formFromProject(p)
	e.state = Creating
	e.index = 0
}

// OpenExisting binds the form to the project at index i.
func (e *Editor) OpenExisting(i int) error {
	doc := e.store.Document()
	if i < 0 || i >= len(doc.Projects) {
		return fmt.Errorf("no project at index %d", i)
	}
	e.form = formFromProject(doc.Projects[i])
	e.state = Editing
	e.index = i
	return nil
}

// Cancel discards the open form without touching the document.
func (e *Editor) Cancel() {
	e.form = Form{}
	e.state = Idle
}

// Save collects the form into a project and commits it: a Creating form
// inserts at the head of the list, an Editing form replaces in place. On
// success the editor returns to Idle. Validation failures leave both the
// form and the document untouched.
func (e *Editor) Save() error {
	if e.state == Idle {
		return ErrNoForm
	}
	project, err := e.form.collect()
	if err != nil {
		return err
	}

	state, index := e.state, e.index
	err = e.store.Mutate(func(doc *document.Document) error {
		switch state {
		case Creating:
			doc.Projects = append([]document.Project{project}, doc.Projects...)
		case Editing:
			if index < 0 || index >= len(doc.Projects) {
				return fmt.Errorf("no project at index %d", index)
			}
			doc.Projects[index] = project
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.Cancel()
	return nil
}

// Duplicate appends a copy of the project at index i with a derived id and
// a "(Copy)" title suffix. It does not open a form.
func (e *Editor) Duplicate(i int) error {
	return e.store.Mutate(func(doc *document.Document) error {
		if i < 0 || i >= len(doc.Projects) {
			return fmt.Errorf("no project at index %d", i)
		}
		src := doc.Projects[i]
		raw, err := json.Marshal(src)
		if err != nil {
			return fmt.Errorf("duplicate project: %w", err)
		}
		var copied document.Project
		if err := json.Unmarshal(raw, &copied); err != nil {
			return fmt.Errorf("duplicate project: %w", err)
		}
		copied.ID = document.SanitizeID(src.ID + "-copy")
		copied.Title = src.Title + " (Copy)"
		doc.Projects = append(doc.Projects, copied)
		return nil
	})
}

// Delete removes the project at index i. The caller must pass an explicit
// confirmation. Deletion always forces the editor back to Idle: whatever
// form was open can no longer trust its index.
func (e *Editor) Delete(i int, confirmed bool) error {
	if !confirmed {
		return ErrConfirmRequired
	}
	err := e.store.Mutate(func(doc *document.Document) error {
		if i < 0 || i >= len(doc.Projects) {
			return fmt.Errorf("no project at index %d", i)
		}
		doc.Projects = append(doc.Projects[:i], doc.Projects[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	e.Cancel()
	return nil
}
