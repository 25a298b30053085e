// Package history keeps an in-memory record of recent analyses. Records hold
// metrics only and are lost on restart; nothing here touches disk.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/riceguard/backend/internal/models"
)

// DefaultMaxRecords bounds the history to keep memory flat.
const DefaultMaxRecords = 100

// DefaultMaxAge is how long records survive before cleanup.
const DefaultMaxAge = 24 * time.Hour

// Manager holds recent analysis records, newest first.
type Manager struct {
	mu         sync.RWMutex
	records    []*models.AnalysisRecord
	maxRecords int
}

// NewManager creates a history manager with the default record limit.
func NewManager() *Manager {
	return NewManagerWithLimit(DefaultMaxRecords)
}

// NewManagerWithLimit creates a history manager with a specific record limit.
func NewManagerWithLimit(maxRecords int) *Manager {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &Manager{maxRecords: maxRecords}
}

// Add records a completed analysis and returns the stored record.
// The oldest record is evicted once the limit is reached.
func (m *Manager) Add(fileName string, fileSize int64, result *models.AnalysisResult, duration time.Duration) *models.AnalysisRecord {
	record := &models.AnalysisRecord{
		ID:                 uuid.New().String(),
		FileName:           fileName,
		FileSize:           fileSize,
		TotalGrains:        result.TotalGrains,
		WholeGrains:        result.WholeGrains,
		BrokenGrains:       result.BrokenGrains,
		BrokenPercentage:   result.BrokenPercentage,
		AvgModelConfidence: result.AvgModelConfidence,
		DurationMs:         duration.Milliseconds(),
		AnalyzedAt:         time.Now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append([]*models.AnalysisRecord{record}, m.records...)
	if len(m.records) > m.maxRecords {
		m.records = m.records[:m.maxRecords]
	}

	return record
}

// Get returns a record by ID.
func (m *Manager) Get(id string) (*models.AnalysisRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.records {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// List returns up to limit records, newest first. A non-positive limit
// returns everything.
func (m *Manager) List(limit int) []*models.AnalysisRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.records)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]*models.AnalysisRecord, n)
	copy(out, m.records[:n])
	return out
}

// Count returns the number of stored records.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// CleanupOld drops records older than maxAge and returns how many were removed.
func (m *Manager) CleanupOld(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	removed := 0
	for _, r := range m.records {
		if r.AnalyzedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return removed
}
