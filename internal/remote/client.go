// Package remote is the HTTP client for the authoritative store and the
// external metadata/import services.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"folio/api/internal/document"
	"folio/api/internal/history"
	"folio/api/internal/metadata"
)

// RejectionError carries a server-side rejection. Detail is surfaced to the
// user verbatim.
type RejectionError struct {
	Status int
	Detail string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("server rejected request (%d): %s", e.Status, e.Detail)
}

// TransportError marks network-level failures: the remote was never able to
// answer, so the operation is retryable as-is.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type Client struct {
	baseURL    string
	author     string
	httpClient *http.Client
}

func NewClient(baseURL, author string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		author:  author,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchConfig retrieves the full authoritative document.
func (c *Client) FetchConfig(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/config", nil)
	if err != nil {
		return nil, &TransportError{Op: "fetch config", Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "fetch config", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.rejection(resp)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "fetch config", Err: err}
	}
	return raw, nil
}

// PublishConfig replaces the remote document wholesale.
func (c *Client) PublishConfig(ctx context.Context, raw json.RawMessage) error {
	payload, err := json.Marshal(map[string]json.RawMessage{"data": raw})
	if err != nil {
		return &TransportError{Op: "publish config", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/config", bytes.NewReader(payload))
	if err != nil {
		return &TransportError{Op: "publish config", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.author != "" {
		req.Header.Set("X-Folio-Author", c.author)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: "publish config", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.rejection(resp)
	}
	return nil
}

// Revisions lists the publish history, newest first.
func (c *Client) Revisions(ctx context.Context, limit int) ([]history.Revision, error) {
	endpoint := c.baseURL + "/api/config/revisions"
	if limit > 0 {
		endpoint += "?limit=" + strconv.Itoa(limit)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Op: "list revisions", Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "list revisions", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.rejection(resp)
	}
	var body struct {
		Revisions []history.Revision `json:"revisions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &TransportError{Op: "list revisions", Err: err}
	}
	return body.Revisions, nil
}

// Revision retrieves the document as it was at one publish.
func (c *Client) Revision(ctx context.Context, hash string) (json.RawMessage, history.Revision, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/config/revisions/"+url.PathEscape(hash), nil)
	if err != nil {
		return nil, history.Revision{}, &TransportError{Op: "show revision", Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, history.Revision{}, &TransportError{Op: "show revision", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, history.Revision{}, c.rejection(resp)
	}
	var body struct {
		Revision history.Revision `json:"revision"`
		Data     json.RawMessage  `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, history.Revision{}, &TransportError{Op: "show revision", Err: err}
	}
	return body.Data, body.Revision, nil
}

// Normalize submits the batch to the metadata service and returns one
// normalized post per URL it could resolve.
func (c *Client) Normalize(ctx context.Context, batch metadata.Batch) ([]document.NormalizedPost, error) {
	payload, err := json.Marshal(batch)
	if err != nil {
		return nil, &TransportError{Op: "normalize", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/blog/normalize", bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Op: "normalize", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "normalize", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.rejection(resp)
	}
	var body struct {
		Normalized []document.NormalizedPost `json:"normalized"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &TransportError{Op: "normalize", Err: err}
	}
	return body.Normalized, nil
}

// Preview fetches best-effort metadata for a single URL.
func (c *Client) Preview(ctx context.Context, pageURL string) (metadata.Preview, error) {
	endpoint := c.baseURL + "/api/blog/preview?url=" + url.QueryEscape(pageURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return metadata.Preview{}, &TransportError{Op: "preview", Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return metadata.Preview{}, &TransportError{Op: "preview", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return metadata.Preview{}, c.rejection(resp)
	}
	var preview metadata.Preview
	if err := json.NewDecoder(resp.Body).Decode(&preview); err != nil {
		return metadata.Preview{}, &TransportError{Op: "preview", Err: err}
	}
	return preview, nil
}

// ClearCache drops every cached preview on the metadata service and returns
// how many entries were removed.
func (c *Client) ClearCache(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/blog/cache/clear", nil)
	if err != nil {
		return 0, &TransportError{Op: "clear cache", Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &TransportError{Op: "clear cache", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, c.rejection(resp)
	}
	var body struct {
		Cleared int `json:"cleared"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, &TransportError{Op: "clear cache", Err: err}
	}
	return body.Cleared, nil
}

// ImportProject submits raw file bytes for parsing into a candidate project.
func (c *Client) ImportProject(ctx context.Context, filename string, raw []byte) (document.Project, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return document.Project{}, &TransportError{Op: "import project", Err: err}
	}
	if _, err := part.Write(raw); err != nil {
		return document.Project{}, &TransportError{Op: "import project", Err: err}
	}
	if err := writer.Close(); err != nil {
		return document.Project{}, &TransportError{Op: "import project", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/projects/import", &buf)
	if err != nil {
		return document.Project{}, &TransportError{Op: "import project", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return document.Project{}, &TransportError{Op: "import project", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return document.Project{}, c.rejection(resp)
	}
	var body struct {
		Project document.Project `json:"project"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return document.Project{}, &TransportError{Op: "import project", Err: err}
	}
	return body.Project, nil
}

// rejection decodes the server's structured error. Bodies without a detail
// field fall back to the HTTP status text.
func (c *Client) rejection(resp *http.Response) error {
	var body struct {
		Detail string `json:"detail"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	detail := body.Detail
	if detail == "" {
		detail = resp.Status
	}
	return &RejectionError{Status: resp.StatusCode, Detail: detail}
}
