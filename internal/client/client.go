// Package client is the programmatic counterpart of the RiceGuard web UI:
// it submits an image to a running server and returns the parsed metrics.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/riceguard/backend/internal/models"
)

// Client posts images to a RiceGuard server. A zero-value HTTP client is
// used unless one is supplied, so there is no client-side timeout: each
// submission runs to completion or failure exactly once.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given server base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// NewWithHTTPClient creates a client with a caller-supplied http.Client,
// mainly for tests.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// AnalysisError is a non-2xx response from the server, with the message
// resolved per the degradation order documented on Analyze.
type AnalysisError struct {
	StatusCode int
	Message    string
}

func (e *AnalysisError) Error() string {
	return e.Message
}

// AnalyzeFile submits the image at path.
func (c *Client) AnalyzeFile(ctx context.Context, path string) (*models.AnalysisResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	defer f.Close()

	return c.Analyze(ctx, filepath.Base(path), f)
}

// Analyze submits one image as multipart field "file" to POST /analyze.
//
// A 2xx response is decoded into an AnalysisResult. For a non-2xx response
// the error message degrades gracefully: a JSON body with a `detail` string
// wins, then the raw JSON text, then the raw body text, then a generic
// status-code message. Transport and decode failures are wrapped with an
// "analysis failed" prefix.
func (c *Client) Analyze(ctx context.Context, filename string, r io.Reader) (*models.AnalysisResult, error) {
	var body strings.Builder
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", strings.NewReader(body.String()))
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &AnalysisError{
			StatusCode: resp.StatusCode,
			Message:    resolveErrorMessage(resp.StatusCode, raw),
		}
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	return &result, nil
}

// resolveErrorMessage extracts the most useful message from an error body:
// detail field, then raw JSON, then raw text, then a generic status message.
func resolveErrorMessage(status int, raw []byte) string {
	text := strings.TrimSpace(string(raw))

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(raw, &parsed); err == nil {
		var detail string
		if rawDetail, ok := parsed["detail"]; ok {
			if err := json.Unmarshal(rawDetail, &detail); err == nil && detail != "" {
				return detail
			}
		}
		return text
	}

	if json.Valid(raw) {
		return text
	}

	if text != "" {
		return text
	}

	return fmt.Sprintf("analysis request failed with status %d", status)
}
