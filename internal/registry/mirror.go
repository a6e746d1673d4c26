package registry

import (
	"sort"
	"sync"

	"github.com/jverho/kontor/internal/domain"
)

// Mirror is the in-memory view of the module records. It is a cache of the
// persisted store, replaced wholesale on every refresh rather than patched
// incrementally; readers always see a complete snapshot.
type Mirror struct {
	mu      sync.RWMutex
	modules map[string]domain.ModuleRecord
}

func NewMirror() *Mirror {
	return &Mirror{modules: make(map[string]domain.ModuleRecord)}
}

// ReplaceAll swaps in a new snapshot atomically.
func (m *Mirror) ReplaceAll(records []domain.ModuleRecord) {
	next := make(map[string]domain.ModuleRecord, len(records))
	for _, rec := range records {
		next[rec.Slug] = rec
	}
	m.mu.Lock()
	m.modules = next
	m.mu.Unlock()
}

func (m *Mirror) Get(slug string) (domain.ModuleRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.modules[slug]
	return rec, ok
}

// List returns the snapshot ordered by installation time, then slug.
func (m *Mirror) List() []domain.ModuleRecord {
	m.mu.RLock()
	records := make([]domain.ModuleRecord, 0, len(m.modules))
	for _, rec := range m.modules {
		records = append(records, rec)
	}
	m.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].InstalledAt.Equal(records[j].InstalledAt) {
			return records[i].Slug < records[j].Slug
		}
		return records[i].InstalledAt.Before(records[j].InstalledAt)
	})
	return records
}

func (m *Mirror) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.modules)
}
