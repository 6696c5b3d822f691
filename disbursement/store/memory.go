// Package store provides TariffStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/pda-engine/disbursement"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	profiles map[string]disbursement.TariffProfile
}

func NewMemory() *Memory {
	return &Memory{profiles: make(map[string]disbursement.TariffProfile)}
}

// Compile-time check that Memory implements disbursement.TariffStore
var _ disbursement.TariffStore = (*Memory)(nil)

// Save validates and stores a profile, replacing one with the same ID.
func (m *Memory) Save(_ context.Context, profile disbursement.TariffProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.ID] = clone(profile)
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*disbursement.TariffProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[id]
	if !ok {
		return nil, disbursement.ErrProfileNotFound
	}
	c := clone(p)
	return &c, nil
}

func (m *Memory) List(_ context.Context) ([]disbursement.TariffProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]disbursement.TariffProfile, 0, len(m.profiles))
	for _, p := range m.profiles {
		result = append(result, clone(p))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, id)
	return nil
}

// clone copies the slices so callers can't mutate stored tables.
func clone(p disbursement.TariffProfile) disbursement.TariffProfile {
	p.Dues = append([]disbursement.FeeDefinition(nil), p.Dues...)
	p.Brackets = append([]disbursement.AgencyFeeBracket(nil), p.Brackets...)
	return p
}
