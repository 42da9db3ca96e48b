package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"media-transcriber/internal/app/model"
	"media-transcriber/internal/app/repository"
)

var _ repository.TranscriptionDAO = (*MockTranscriptionDAO)(nil)

// MockTranscriptionDAO is an in-memory TranscriptionDAO. Setting an entry in
// ErrorMap makes the named method ("Record", "GetByFileHash", "List") fail.
type MockTranscriptionDAO struct {
	mu       sync.RWMutex
	records  []model.TranscriptionRecord
	ErrorMap map[string]error
	Closed   bool
}

// NewMockTranscriptionDAO creates an empty store.
func NewMockTranscriptionDAO() *MockTranscriptionDAO {
	return &MockTranscriptionDAO{ErrorMap: make(map[string]error)}
}

func (m *MockTranscriptionDAO) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

func (m *MockTranscriptionDAO) Record(ctx context.Context, r *model.TranscriptionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ErrorMap["Record"]; err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.records = append(m.records, *r)
	return nil
}

func (m *MockTranscriptionDAO) GetByFileHash(ctx context.Context, fileHash string) (*model.TranscriptionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.ErrorMap["GetByFileHash"]; err != nil {
		return nil, err
	}
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if r.FileHash == fileHash && !r.HasError {
			return &r, nil
		}
	}
	return nil, nil
}

func (m *MockTranscriptionDAO) List(ctx context.Context, limit int) ([]model.TranscriptionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.ErrorMap["List"]; err != nil {
		return nil, err
	}
	out := append([]model.TranscriptionRecord(nil), m.records...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Records returns a copy of everything recorded, in insertion order.
func (m *MockTranscriptionDAO) Records() []model.TranscriptionRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.TranscriptionRecord(nil), m.records...)
}
