// Package history records every accepted publish as a git commit, so the
// remote store keeps an inspectable revision trail of the configuration
// document.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const configFile = "config.json"

type Revision struct {
	Hash    string    `json:"hash"`
	Author  string    `json:"author"`
	Message string    `json:"message"`
	When    time.Time `json:"when"`
}

// Service owns the revision repository. Commits are serialized by a single
// mutex; there is exactly one document so per-document locking is not needed.
type Service struct {
	dir string
	mu  sync.Mutex
}

func New(dir string) *Service {
	return &Service{dir: dir}
}

// Commit writes the published document into the revision repo. The repo is
// initialized lazily on first publish.
func (s *Service) Commit(raw json.RawMessage, author, message string) (Revision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	repo, err := s.openOrInit()
	if err != nil {
		return Revision{}, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return Revision{}, fmt.Errorf("open worktree: %w", err)
	}

	var pretty json.RawMessage
	if indented, err := indent(raw); err == nil {
		pretty = indented
	} else {
		pretty = raw
	}
	if err := os.WriteFile(filepath.Join(s.dir, configFile), append(pretty, '\n'), 0o644); err != nil {
		return Revision{}, fmt.Errorf("write %s: %w", configFile, err)
	}
	if _, err := worktree.Add(configFile); err != nil {
		return Revision{}, fmt.Errorf("git add %s: %w", configFile, err)
	}

	if author == "" {
		author = "folio"
	}
	hash, err := worktree.Commit(message, &git.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  author,
			Email: fmt.Sprintf("%s@local.folio.dev", sanitizeEmail(author)),
			When:  time.Now(),
		},
	})
	if err != nil {
		return Revision{}, fmt.Errorf("commit config: %w", err)
	}

	commitObj, err := repo.CommitObject(hash)
	if err != nil {
		return Revision{}, fmt.Errorf("read commit object: %w", err)
	}
	return toRevision(commitObj), nil
}

// List returns revisions newest first, capped at limit when limit > 0.
func (s *Service) List(limit int) ([]Revision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	repo, err := git.PlainOpen(s.dir)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return []Revision{}, nil
		}
		return nil, fmt.Errorf("open revision repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return []Revision{}, nil
		}
		return nil, fmt.Errorf("resolve head: %w", err)
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	items := make([]Revision, 0)
	count := 0
	err = iter.ForEach(func(commitObj *object.Commit) error {
		items = append(items, toRevision(commitObj))
		count++
		if limit > 0 && count >= limit {
			return io.EOF
		}
		return nil
	})
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("iterate log: %w", err)
	}
	return items, nil
}

// Show returns the document bytes as they were at the given revision.
func (s *Service) Show(hash string) (json.RawMessage, Revision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	repo, err := git.PlainOpen(s.dir)
	if err != nil {
		return nil, Revision{}, fmt.Errorf("open revision repo: %w", err)
	}

	resolved, err := resolveHash(repo, hash)
	if err != nil {
		return nil, Revision{}, err
	}
	commitObj, err := repo.CommitObject(resolved)
	if err != nil {
		return nil, Revision{}, fmt.Errorf("read commit %s: %w", hash, err)
	}

	file, err := commitObj.File(configFile)
	if err != nil {
		return nil, Revision{}, fmt.Errorf("load %s from commit: %w", configFile, err)
	}
	reader, err := file.Reader()
	if err != nil {
		return nil, Revision{}, fmt.Errorf("open content reader: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, Revision{}, fmt.Errorf("read content bytes: %w", err)
	}
	return raw, toRevision(commitObj), nil
}

func (s *Service) openOrInit() (*git.Repository, error) {
	repo, err := git.PlainOpen(s.dir)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("open revision repo: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create revision dir: %w", err)
	}
	repo, err = git.PlainInit(s.dir, false)
	if err != nil {
		return nil, fmt.Errorf("init revision repo: %w", err)
	}
	return repo, nil
}

func resolveHash(repo *git.Repository, hash string) (plumbing.Hash, error) {
	resolved, err := repo.ResolveRevision(plumbing.Revision(hash))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolve revision %s: %w", hash, err)
	}
	return *resolved, nil
}

func toRevision(commitObj *object.Commit) Revision {
	return Revision{
		Hash:    commitObj.Hash.String(),
		Author:  commitObj.Author.Name,
		Message: strings.TrimSpace(commitObj.Message),
		When:    commitObj.Author.When,
	}
}

func sanitizeEmail(author string) string {
	lowered := strings.ToLower(strings.TrimSpace(author))
	lowered = strings.ReplaceAll(lowered, " ", ".")
	if lowered == "" {
		return "folio"
	}
	return lowered
}

func indent(raw json.RawMessage) (json.RawMessage, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	return json.MarshalIndent(value, "", "  ")
}
