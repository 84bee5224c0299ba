package store

import (
	"context"
	"sync"

	"github.com/smilemakc/gardenflow/gardenmodel"
)

type memKey struct {
	entity  string
	name    string
	version string
	lineage string
}

// Memory is an in-process DataStore, grounded on
// the now-removed internal/infrastructure/storage/memory.go's RWMutex-guarded map-of-structs
// pattern, adapted from one map per entity kind to a single map keyed by the
// full (entity, name, version, lineage) tuple.
type Memory struct {
	mu   sync.RWMutex
	rows map[memKey]gardenmodel.Data
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{rows: make(map[memKey]gardenmodel.Data)}
}

func (m *Memory) Put(_ context.Context, d gardenmodel.Data) (bool, error) {
	key := memKey{entity: d.Entity(), name: d.Name(), version: d.Version(), lineage: d.Lineage()}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.rows[key]
	if ok && existing.Value() == d.Value() {
		return false, nil
	}
	m.rows[key] = d
	return true, nil
}

func (m *Memory) Get(_ context.Context, entity string, name, version, lineage *string) ([]gardenmodel.Data, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []gardenmodel.Data
	for key, d := range m.rows {
		if key.entity != entity {
			continue
		}
		if name != nil && key.name != *name {
			continue
		}
		if version != nil && key.version != *version {
			continue
		}
		if lineage != nil && key.lineage != *lineage {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
