// handlers_analyze_test.go - Tests for the analyze handler
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/riceguard/backend/internal/history"
	"github.com/riceguard/backend/internal/inference"
	"github.com/riceguard/backend/internal/models"
	"github.com/riceguard/backend/internal/testutil"
	"github.com/riceguard/backend/internal/vision"
)

// newMultipartRequest builds a POST /analyze request carrying fileData under
// the "file" field. An empty fieldName omits the file part entirely.
func newMultipartRequest(t *testing.T, fieldName string, fileData []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if fieldName != "" {
		part, err := writer.CreateFormFile(fieldName, "rice.jpg")
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		if _, err := part.Write(fileData); err != nil {
			t.Fatalf("writing form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/analyze", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestAnalyzeHandler_HandleAnalyze(t *testing.T) {
	sampleResult := &models.AnalysisResult{
		TotalGrains:        100,
		WholeGrains:        90,
		BrokenGrains:       10,
		BrokenPercentage:   10.0,
		AvgModelConfidence: 0.95,
		ProcessedImage:     "c29tZS1qcGVn",
	}

	tests := []struct {
		name       string
		fieldName  string
		analyzer   *testutil.MockAnalyzer
		wantStatus int
		wantErr    bool
		errCode    string
		wantDetail string
	}{
		{
			name:       "successful analysis",
			fieldName:  "file",
			analyzer:   testutil.NewMockAnalyzer(sampleResult),
			wantStatus: http.StatusOK,
		},
		{
			name:       "no file provided",
			fieldName:  "",
			analyzer:   testutil.NewMockAnalyzer(sampleResult),
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "BAD_REQUEST",
			wantDetail: "no file provided",
		},
		{
			name:       "wrong field name",
			fieldName:  "image",
			analyzer:   testutil.NewMockAnalyzer(sampleResult),
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "BAD_REQUEST",
		},
		{
			name:      "inference not configured",
			fieldName: "file",
			analyzer: &testutil.MockAnalyzer{
				ReadyErr: errors.New("Roboflow API key missing"),
			},
			wantStatus: http.StatusServiceUnavailable,
			wantErr:    true,
			errCode:    "SERVICE_UNAVAILABLE",
			wantDetail: "Roboflow API key missing",
		},
		{
			name:      "undecodable image",
			fieldName: "file",
			analyzer: &testutil.MockAnalyzer{
				Err: fmt.Errorf("reading image dimensions: %w", vision.ErrInvalidImage),
			},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "BAD_REQUEST",
			wantDetail: "invalid image",
		},
		{
			name:      "upstream inference failure",
			fieldName: "file",
			analyzer: &testutil.MockAnalyzer{
				Err: &inference.UpstreamError{Status: 500, Body: "model crashed"},
			},
			wantStatus: http.StatusBadGateway,
			wantErr:    true,
			errCode:    "UPSTREAM_ERROR",
			wantDetail: "Roboflow failed (500)",
		},
		{
			name:      "unexpected pipeline failure",
			fieldName: "file",
			analyzer: &testutil.MockAnalyzer{
				Err: errors.New("boom"),
			},
			wantStatus: http.StatusInternalServerError,
			wantErr:    true,
			errCode:    "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			hist := history.NewManager()
			handler := NewAnalyzeHandler(tt.analyzer, hist)

			e := echo.New()
			req := newMultipartRequest(t, tt.fieldName, []byte("fake image bytes"))
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			// Execute
			err := handler.HandleAnalyze(c)

			// Assert
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				apiErr, ok := err.(*APIError)
				if !ok {
					t.Fatalf("expected APIError, got %T", err)
				}
				if apiErr.Status != tt.wantStatus {
					t.Errorf("expected status %d, got %d", tt.wantStatus, apiErr.Status)
				}
				if apiErr.Code != tt.errCode {
					t.Errorf("expected error code %s, got %s", tt.errCode, apiErr.Code)
				}
				if tt.wantDetail != "" && !strings.Contains(apiErr.Detail, tt.wantDetail) {
					t.Errorf("expected detail containing %q, got %q", tt.wantDetail, apiErr.Detail)
				}
				if hist.Count() != 0 {
					t.Error("failed analysis should not be recorded")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			var response models.AnalysisResult
			if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if response != *sampleResult {
				t.Errorf("expected result %+v, got %+v", *sampleResult, response)
			}
			if response.WholeGrains+response.BrokenGrains != response.TotalGrains {
				t.Error("whole + broken must equal total")
			}
			if hist.Count() != 1 {
				t.Errorf("expected 1 history record, got %d", hist.Count())
			}
		})
	}
}

func TestAnalyzeHandler_ErrorBodyCarriesDetail(t *testing.T) {
	// The frontend resolves error messages from the `detail` field, so the
	// full error handler path must produce it.
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler

	analyzer := &testutil.MockAnalyzer{ReadyErr: errors.New("Roboflow API key missing")}
	handler := NewAnalyzeHandler(analyzer, nil)
	e.POST("/analyze", handler.HandleAnalyze)

	req := newMultipartRequest(t, "file", []byte("fake image bytes"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal error body: %v", err)
	}
	if body["detail"] != "Roboflow API key missing" {
		t.Errorf("expected detail field, got body %q", rec.Body.String())
	}
}
