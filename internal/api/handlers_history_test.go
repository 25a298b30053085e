// handlers_history_test.go - Tests for history handlers
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/riceguard/backend/internal/history"
	"github.com/riceguard/backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

func seedHistory(hist *history.Manager, n int) []*models.AnalysisRecord {
	records := make([]*models.AnalysisRecord, 0, n)
	for i := 0; i < n; i++ {
		result := &models.AnalysisResult{
			TotalGrains:        10 + i,
			WholeGrains:        8 + i,
			BrokenGrains:       2,
			BrokenPercentage:   20.0,
			AvgModelConfidence: 0.9,
		}
		records = append(records, hist.Add(fmt.Sprintf("batch-%d.jpg", i), 1024, result, 50*time.Millisecond))
	}
	return records
}

func TestHistoryHandler_HandleListAnalyses(t *testing.T) {
	tests := []struct {
		name      string
		seed      int
		limit     string
		wantCount int
	}{
		{name: "empty history", seed: 0, wantCount: 0},
		{name: "all records", seed: 3, wantCount: 3},
		{name: "limited", seed: 5, limit: "2", wantCount: 2},
		{name: "invalid limit falls back to default", seed: 3, limit: "abc", wantCount: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hist := history.NewManager()
			seedHistory(hist, tt.seed)
			handler := NewHistoryHandler(hist)

			e := echo.New()
			target := "/api/analyses"
			if tt.limit != "" {
				target += "?limit=" + tt.limit
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := handler.HandleListAnalyses(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rec.Code)
			}

			var records []models.AnalysisRecord
			if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if len(records) != tt.wantCount {
				t.Errorf("expected %d records, got %d", tt.wantCount, len(records))
			}
		})
	}
}

func TestHistoryHandler_HandleListAnalysesMsgpack(t *testing.T) {
	hist := history.NewManager()
	seeded := seedHistory(hist, 2)
	handler := NewHistoryHandler(hist)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/analyses/msgpack", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.HandleListAnalysesMsgpack(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/x-msgpack" {
		t.Errorf("expected msgpack content type, got %s", got)
	}

	var records []models.AnalysisRecord
	if err := msgpack.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("failed to decode msgpack body: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// Newest first
	if records[0].ID != seeded[1].ID {
		t.Errorf("expected newest record first, got %s", records[0].ID)
	}
}

func TestHistoryHandler_HandleGetAnalysis(t *testing.T) {
	hist := history.NewManager()
	seeded := seedHistory(hist, 1)
	handler := NewHistoryHandler(hist)

	tests := []struct {
		name       string
		id         string
		wantStatus int
		wantErr    bool
		errCode    string
	}{
		{name: "existing record", id: seeded[0].ID, wantStatus: http.StatusOK},
		{name: "missing id", id: "", wantStatus: http.StatusBadRequest, wantErr: true, errCode: "VALIDATION_ERROR"},
		{name: "unknown id", id: "nope", wantStatus: http.StatusNotFound, wantErr: true, errCode: "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/analyses/:id", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("id")
			c.SetParamValues(tt.id)

			err := handler.HandleGetAnalysis(c)

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
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var record models.AnalysisRecord
			if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if record.ID != tt.id {
				t.Errorf("expected ID %s, got %s", tt.id, record.ID)
			}
		})
	}
}
