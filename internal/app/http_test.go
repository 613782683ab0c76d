package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"folio/api/internal/metadata"
)

func newTestServer(svc *Service) *HTTPServer {
	return NewHTTPServer(svc, "*")
}

func doRequest(t *testing.T, server *HTTPServer, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(newTestService(&fakeStore{}))
	rr := doRequest(t, server, http.MethodGet, "/api/health", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d", rr.Code)
	}
	var response map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if response["ok"] != true {
		t.Errorf("expected ok=true, got %v", response["ok"])
	}
}

func TestReadyReportsDatabaseFailure(t *testing.T) {
	fs := &fakeStore{pingFn: func(context.Context) error {
		return context.DeadlineExceeded
	}}
	server := newTestServer(newTestService(fs))
	rr := doRequest(t, server, http.MethodGet, "/api/ready", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestGetConfigReturnsDocument(t *testing.T) {
	server := newTestServer(newTestService(&fakeStore{}))
	rr := doRequest(t, server, http.MethodGet, "/api/config", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var doc map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if _, ok := doc["personalInfo"]; !ok {
		t.Error("config missing personalInfo")
	}
	if _, ok := doc["projects"]; !ok {
		t.Error("config missing projects")
	}
}

func TestPutConfigRejectionCarriesDetail(t *testing.T) {
	server := newTestServer(newTestService(&fakeStore{}))
	payload := []byte(`{"data":{"personalInfo":{},"projects":[{"id":"x"}]}}`)
	rr := doRequest(t, server, http.MethodPut, "/api/config", payload)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	var response struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("parse error body: %v", err)
	}
	if response.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", response.Code)
	}
	if !strings.Contains(response.Detail, "title") {
		t.Errorf("detail = %q, expected mention of title", response.Detail)
	}
}

func TestPutConfigAccepted(t *testing.T) {
	server := newTestServer(newTestService(&fakeStore{}))
	body, _ := json.Marshal(map[string]any{"data": json.RawMessage(validDocumentJSON(t))})
	rr := doRequest(t, server, http.MethodPut, "/api/config", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	meta := &fakeMetadata{normalizeFn: func(_ context.Context, batch metadata.Batch) ([]metadata.Preview, error) {
		if batch.TTLMinutes != 20 {
			t.Errorf("ttl = %d, want 20", batch.TTLMinutes)
		}
		return []metadata.Preview{{URL: batch.URLs[0], Title: "A"}}, nil
	}}
	svc := New(&fakeStore{}, &fakeRevisions{}, meta, &fakeCache{})
	server := newTestServer(svc)

	payload := []byte(`{"urls":["https://example.com/a"],"ttl":20}`)
	rr := doRequest(t, server, http.MethodPost, "/api/blog/normalize", payload)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var response struct {
		Normalized []metadata.Preview `json:"normalized"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if len(response.Normalized) != 1 || response.Normalized[0].Title != "A" {
		t.Errorf("normalized = %+v", response.Normalized)
	}
}

func TestNormalizeEmptyBatchRejected(t *testing.T) {
	server := newTestServer(newTestService(&fakeStore{}))
	rr := doRequest(t, server, http.MethodPost, "/api/blog/normalize", []byte(`{"urls":[]}`))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rr.Code)
	}
}

func TestPreviewEndpointRequiresURL(t *testing.T) {
	server := newTestServer(newTestService(&fakeStore{}))
	rr := doRequest(t, server, http.MethodGet, "/api/blog/preview?url=x", nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rr.Code)
	}
}

func TestPreviewEndpointPassesTTL(t *testing.T) {
	meta := &fakeMetadata{previewFn: func(_ context.Context, url string, ttl time.Duration) (metadata.Preview, error) {
		if ttl != 30*time.Minute {
			t.Errorf("ttl = %v, want 30m", ttl)
		}
		return metadata.Preview{URL: url, Title: "T"}, nil
	}}
	svc := New(&fakeStore{}, &fakeRevisions{}, meta, &fakeCache{})
	server := newTestServer(svc)

	rr := doRequest(t, server, http.MethodGet, "/api/blog/preview?url=https://example.com/post&ttl=30", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
}

func TestCacheClearEndpoint(t *testing.T) {
	cache := &fakeCache{clearFn: func(context.Context) (int, error) { return 4, nil }}
	svc := New(&fakeStore{}, &fakeRevisions{}, &fakeMetadata{}, cache)
	server := newTestServer(svc)

	rr := doRequest(t, server, http.MethodPost, "/api/blog/cache/clear", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var response map[string]int
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if response["cleared"] != 4 {
		t.Errorf("cleared = %d, want 4", response["cleared"])
	}
}

func multipartBody(t *testing.T, filename string, contents []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(contents); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestProjectImportEndpoint(t *testing.T) {
	server := newTestServer(newTestService(&fakeStore{}))

	body, contentType := multipartBody(t, "project.json", []byte(`{"id":"demo","title":"Demo"}`))
	req := httptest.NewRequest(http.MethodPost, "/api/projects/import", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var response struct {
		Status   string          `json:"status"`
		Filename string          `json:"filename"`
		Project  json.RawMessage `json:"project"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if response.Status != "success" || response.Filename != "project.json" {
		t.Errorf("response = %+v", response)
	}
}

func TestProjectImportRejectsExtension(t *testing.T) {
	server := newTestServer(newTestService(&fakeStore{}))

	body, contentType := multipartBody(t, "project.yaml", []byte(`id: demo`))
	req := httptest.NewRequest(http.MethodPost, "/api/projects/import", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestValidateProjectEndpoint(t *testing.T) {
	server := newTestServer(newTestService(&fakeStore{}))

	rr := doRequest(t, server, http.MethodPost, "/api/projects/validate", []byte(`{"id":"a","title":"A"}`))
	if rr.Code != http.StatusOK {
		t.Errorf("valid project status = %d", rr.Code)
	}

	rr = doRequest(t, server, http.MethodPost, "/api/projects/validate", []byte(`{"id":"a"}`))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid project status = %d, want 400", rr.Code)
	}
}

func TestUnknownRouteNotFound(t *testing.T) {
	server := newTestServer(newTestService(&fakeStore{}))
	rr := doRequest(t, server, http.MethodGet, "/api/nope", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}
