package cards

import (
	"sync"

	"github.com/flashnotes/backend/internal/models"
)

// MemKV is an in-memory KV collaborator with an optional per-record size
// cap, used by tests and as a persistence-free dev mode.
type MemKV struct {
	mu       sync.Mutex
	data     map[string][]byte
	MaxBytes int // 0 means unlimited
}

func NewMemKV() *MemKV {
	return &MemKV{data: make(map[string][]byte)}
}

func (m *MemKV) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, true, nil
}

func (m *MemKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MaxBytes > 0 && len(value) > m.MaxBytes {
		return models.ErrStorageCapacityExceeded
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

func (m *MemKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Corrupt overwrites a key with malformed bytes, for recovery tests.
func (m *MemKV) Corrupt(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = []byte("{not json")
}
