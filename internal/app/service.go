// Package app wires the configuration store, revision history, and metadata
// pipeline behind the remote store's HTTP API.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"folio/api/internal/document"
	"folio/api/internal/history"
	"folio/api/internal/metadata"
	"folio/api/internal/store"
)

// MaxImportBytes is the upload ceiling for project imports.
const MaxImportBytes = 10 << 20

type ConfigStore interface {
	Ping(ctx context.Context) error
	GetConfig(ctx context.Context) (store.ConfigRecord, error)
	SaveConfig(ctx context.Context, data json.RawMessage) error
}

type RevisionLog interface {
	Commit(raw json.RawMessage, author, message string) (history.Revision, error)
	List(limit int) ([]history.Revision, error)
	Show(hash string) (json.RawMessage, history.Revision, error)
}

type MetadataService interface {
	Preview(ctx context.Context, url string, ttl time.Duration) (metadata.Preview, error)
	Normalize(ctx context.Context, batch metadata.Batch) ([]metadata.Preview, error)
}

type CacheControl interface {
	Clear(ctx context.Context) (int, error)
}

type Service struct {
	store     ConfigStore
	revisions RevisionLog
	metadata  MetadataService
	cache     CacheControl
}

func New(configStore ConfigStore, revisions RevisionLog, meta MetadataService, cache CacheControl) *Service {
	return &Service{store: configStore, revisions: revisions, metadata: meta, cache: cache}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// GetConfig returns the stored document, or the schema-aligned default when
// the slot is still empty.
func (s *Service) GetConfig(ctx context.Context) (json.RawMessage, error) {
	record, err := s.store.GetConfig(ctx)
	if errors.Is(err, store.ErrNotFound) {
		doc := document.Default()
		raw, encodeErr := doc.Encode()
		if encodeErr != nil {
			return nil, encodeErr
		}
		return raw, nil
	}
	if err != nil {
		return nil, err
	}
	return record.Data, nil
}

// PutConfig validates the submitted document and replaces the stored one
// wholesale. The server is the sole authority on schema correctness; the
// detail string of a rejection is surfaced to clients verbatim.
func (s *Service) PutConfig(ctx context.Context, raw json.RawMessage, author string) error {
	if err := validateDocument(raw); err != nil {
		return domainError(http.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("Schema validation error: %v", err))
	}
	if err := s.store.SaveConfig(ctx, raw); err != nil {
		return err
	}
	if _, err := s.revisions.Commit(raw, author, "Publish configuration"); err != nil {
		// The save already succeeded; a history failure must not turn the
		// publish into an error the client would retry.
		return nil
	}
	return nil
}

func (s *Service) Revisions(limit int) ([]history.Revision, error) {
	return s.revisions.List(limit)
}

func (s *Service) Revision(hash string) (json.RawMessage, history.Revision, error) {
	raw, rev, err := s.revisions.Show(hash)
	if err != nil {
		return nil, history.Revision{}, domainError(http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Revision %s not found", hash))
	}
	return raw, rev, nil
}

func (s *Service) Preview(ctx context.Context, url string, ttlMinutes int) (metadata.Preview, error) {
	if len(strings.TrimSpace(url)) < 10 {
		return metadata.Preview{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "url query parameter is required")
	}
	ttl := time.Duration(ttlMinutes) * time.Minute
	preview, err := s.metadata.Preview(ctx, url, ttl)
	if err != nil {
		return metadata.Preview{}, domainError(http.StatusBadGateway, "UPSTREAM_ERROR", fmt.Sprintf("Preview fetch failed: %v", err))
	}
	return preview, nil
}

func (s *Service) Normalize(ctx context.Context, batch metadata.Batch) ([]metadata.Preview, error) {
	if len(batch.URLs) == 0 {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "urls must not be empty")
	}
	normalized, err := s.metadata.Normalize(ctx, batch)
	if err != nil {
		return nil, domainError(http.StatusBadGateway, "UPSTREAM_ERROR", fmt.Sprintf("Normalize failed: %v", err))
	}
	return normalized, nil
}

func (s *Service) ClearCache(ctx context.Context) (int, error) {
	return s.cache.Clear(ctx)
}

// ImportProject guards and parses an uploaded project file into a candidate
// Project. Guards run in order and fail before anything is parsed.
func (s *Service) ImportProject(filename string, size int64, raw []byte) (document.Project, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".json") {
		return document.Project{}, domainError(http.StatusBadRequest, "VALIDATION_ERROR", "Only JSON files are supported")
	}
	if size > MaxImportBytes || int64(len(raw)) > MaxImportBytes {
		return document.Project{}, domainError(http.StatusBadRequest, "VALIDATION_ERROR", "File size must be less than 10MB")
	}

	var project document.Project
	if err := json.Unmarshal(raw, &project); err != nil {
		return document.Project{}, domainError(http.StatusBadRequest, "PARSE_ERROR", "Invalid JSON file format")
	}
	if err := project.Validate(); err != nil {
		return document.Project{}, domainError(http.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("Invalid project structure: %v", err))
	}
	return project, nil
}

func (s *Service) ValidateProject(raw json.RawMessage) error {
	var project document.Project
	if err := json.Unmarshal(raw, &project); err != nil {
		return domainError(http.StatusBadRequest, "PARSE_ERROR", "Invalid project JSON")
	}
	if err := project.Validate(); err != nil {
		return domainError(http.StatusBadRequest, "VALIDATION_ERROR", fmt.Sprintf("Validation error: %v", err))
	}
	return nil
}

// validateDocument is the authoritative publish gate.
func validateDocument(raw json.RawMessage) error {
	doc, err := document.Decode(raw)
	if err != nil {
		return err
	}
	if doc.Blog.Mode != "" && doc.Blog.Mode != "manual" {
		return fmt.Errorf("blog.mode %q is not supported", doc.Blog.Mode)
	}
	if doc.Blog.CacheMinutes < 0 {
		return fmt.Errorf("blog.cacheMinutes must not be negative")
	}
	seen := make(map[string]bool, len(doc.Projects))
	for i := range doc.Projects {
		project := &doc.Projects[i]
		if err := project.Validate(); err != nil {
			return fmt.Errorf("projects[%d]: %w", i, err)
		}
		if seen[project.ID] {
			return fmt.Errorf("projects[%d]: duplicate id %q", i, project.ID)
		}
		seen[project.ID] = true
	}
	return nil
}
