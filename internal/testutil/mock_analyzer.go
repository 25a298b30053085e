// mock_analyzer.go - Mock analysis pipeline implementations for testing
package testutil

import (
	"context"
	"sync"

	"github.com/riceguard/backend/internal/models"
)

// MockAnalyzer implements the api.Analyzer interface for handler tests.
type MockAnalyzer struct {
	mu       sync.Mutex
	Result   *models.AnalysisResult
	Err      error
	ReadyErr error
	calls    int
}

// NewMockAnalyzer creates a mock that returns the given result.
func NewMockAnalyzer(result *models.AnalysisResult) *MockAnalyzer {
	return &MockAnalyzer{Result: result}
}

func (m *MockAnalyzer) Ready() error {
	return m.ReadyErr
}

func (m *MockAnalyzer) Analyze(ctx context.Context, imageData []byte) (*models.AnalysisResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

// Calls returns how many times Analyze was invoked.
func (m *MockAnalyzer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockEngine implements the inference.Engine interface for analyzer tests.
type MockEngine struct {
	Detections []models.Detection
	Err        error
	ReadyErr   error

	// LastWidth and LastHeight capture the dimensions passed to Infer.
	LastWidth  int
	LastHeight int
}

func (m *MockEngine) Ready() error {
	return m.ReadyErr
}

func (m *MockEngine) Infer(ctx context.Context, imageData []byte, width, height int) ([]models.Detection, error) {
	m.LastWidth = width
	m.LastHeight = height
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Detections, nil
}
