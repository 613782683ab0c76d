package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"folio/api/internal/metadata"
	"folio/api/internal/store"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := s.service.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":     false,
				"status": "not_ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "status": "ready"})
		return
	}

	if r.URL.Path == "/api/config" {
		s.handleConfig(w, r)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/config/schema" {
		writeJSON(w, http.StatusOK, schemaDescriptor())
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/config/revisions" {
		limit := 50
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "limit must be a positive integer")
				return
			}
			limit = parsed
		}
		revisions, err := s.service.Revisions(limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Could not list revisions")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"revisions": revisions})
		return
	}

	if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/config/revisions/") {
		hash := strings.TrimPrefix(r.URL.Path, "/api/config/revisions/")
		raw, rev, err := s.service.Revision(hash)
		if err != nil {
			status, code, detail := mapError(err)
			writeError(w, status, code, detail)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"revision": rev, "data": json.RawMessage(raw)})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/blog/preview" {
		url := strings.TrimSpace(r.URL.Query().Get("url"))
		ttl := 15
		if raw := strings.TrimSpace(r.URL.Query().Get("ttl")); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
				ttl = parsed
			}
		}
		preview, err := s.service.Preview(r.Context(), url, ttl)
		if err != nil {
			status, code, detail := mapError(err)
			writeError(w, status, code, detail)
			return
		}
		writeJSON(w, http.StatusOK, preview)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/blog/normalize" {
		var batch metadata.Batch
		if err := decodeBody(r, &batch); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		normalized, err := s.service.Normalize(r.Context(), batch)
		if err != nil {
			status, code, detail := mapError(err)
			writeError(w, status, code, detail)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"normalized": normalized})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/blog/cache/clear" {
		cleared, err := s.service.ClearCache(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Could not clear cache")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cleared": cleared})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/projects/import" {
		s.handleProjectImport(w, r)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/projects/validate" {
		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxImportBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", "Could not read request body")
			return
		}
		if err := s.service.ValidateProject(raw); err != nil {
			status, code, detail := mapError(err)
			writeError(w, status, code, detail)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "valid"})
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
}

func (s *HTTPServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		raw, err := s.service.GetConfig(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Could not load configuration")
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
		return
	}

	if r.Method == http.MethodPut {
		var body struct {
			Data json.RawMessage `json:"data"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		if len(body.Data) == 0 {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", "data is required")
			return
		}
		author := strings.TrimSpace(r.Header.Get("X-Folio-Author"))
		if err := s.service.PutConfig(r.Context(), body.Data, author); err != nil {
			status, code, detail := mapError(err)
			writeError(w, status, code, detail)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
		return
	}

	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

func (s *HTTPServer) handleProjectImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxImportBytes+(1<<20))
	if err := r.ParseMultipartForm(MaxImportBytes); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "File size must be less than 10MB")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "A single file field is required")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, MaxImportBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Could not read uploaded file")
		return
	}

	project, err := s.service.ImportProject(header.Filename, header.Size, raw)
	if err != nil {
		status, code, detail := mapError(err)
		writeError(w, status, code, detail)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"project":  project,
		"filename": header.Filename,
	})
}

// schemaDescriptor is the advisory shape document clients may fetch for
// smoke checks. The PUT handler is the authority.
func schemaDescriptor() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"personalInfo", "projects"},
		"properties": map[string]any{
			"personalInfo": map[string]any{"type": "object"},
			"projects":     map[string]any{"type": "array"},
			"blog":         map[string]any{"type": "object"},
			"sidebar":      map[string]any{"type": "object"},
			"settings":     map[string]any{"type": "object"},
		},
	}
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID, X-Folio-Author")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, map[string]any{
		"code":   code,
		"detail": detail,
	})
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func mapError(err error) (status int, code, detail string) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Detail
	}
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound, "NOT_FOUND", "Not found"
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error"
}
