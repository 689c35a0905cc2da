// Package cache keeps finished analyses for the lifetime of the current
// document set. Entries are invalidated when documents change, never by
// time.
package cache

import (
	"sync"

	"github.com/dealsense/sales-intel/internal/core/domain"
)

type Memory struct {
	mu      sync.RWMutex
	entries map[string]*domain.Analysis
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*domain.Analysis)}
}

func (m *Memory) Get(key string) (*domain.Analysis, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	analysis, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	copied := *analysis
	return &copied, true
}

func (m *Memory) Put(key string, analysis *domain.Analysis) {
	if analysis == nil {
		return
	}
	copied := *analysis
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = &copied
}

// Reset drops every entry; called whenever the underlying document set or
// its configuration changes.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*domain.Analysis)
}
