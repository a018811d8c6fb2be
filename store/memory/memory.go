// Package memory provides an in-memory implementation of the entry and
// settings stores (for tests and dev).
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bzrenis/workt-sub001/factory"
	"github.com/bzrenis/workt-sub001/generic"
	"github.com/bzrenis/workt-sub001/monthly"
	"github.com/bzrenis/workt-sub001/settings"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Store struct {
	mu       sync.RWMutex
	entries  []monthly.WorkEntry // sorted by date
	byDate   map[string]string   // date -> entry ID
	settings *settings.Settings
	defaults settings.Settings
}

func New() *Store {
	return &Store{
		byDate:   make(map[string]string),
		defaults: factory.DefaultSettings(),
	}
}

// SaveEntry inserts or updates an entry, keeping one entry per date.
func (m *Store) SaveEntry(_ context.Context, e monthly.WorkEntry) (monthly.WorkEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	date := e.Date.String()
	if owner, ok := m.byDate[date]; ok && owner != e.ID {
		return monthly.WorkEntry{}, fmt.Errorf("%w: %s", generic.ErrDuplicateEntry, date)
	}

	now := time.Now().UTC().Truncate(time.Second)
	if i := m.indexOf(e.ID); i >= 0 {
		old := m.entries[i]
		e.CreatedAt = old.CreatedAt
		delete(m.byDate, old.Date.String())
		m.entries = append(m.entries[:i], m.entries[i+1:]...)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	// Binary search for the insertion point
	i := sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].Date.After(e.Date)
	})
	m.entries = append(m.entries, monthly.WorkEntry{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = e
	m.byDate[date] = e.ID

	return e, nil
}

func (m *Store) GetEntry(_ context.Context, id string) (monthly.WorkEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.indexOf(id); i >= 0 {
		return m.entries[i], nil
	}
	return monthly.WorkEntry{}, fmt.Errorf("%w: %s", generic.ErrEntryNotFound, id)
}

func (m *Store) DeleteEntry(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", generic.ErrEntryNotFound, id)
	}
	delete(m.byDate, m.entries[i].Date.String())
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	return nil
}

func (m *Store) EntriesInRange(_ context.Context, p generic.Period) ([]monthly.WorkEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []monthly.WorkEntry
	for _, e := range m.entries {
		if p.Contains(e.Date) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *Store) indexOf(id string) int {
	for i, e := range m.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Store) LoadSettings(_ context.Context) (settings.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.settings == nil {
		return m.defaults, nil
	}
	return *m.settings, nil
}

func (m *Store) SaveSettings(_ context.Context, s settings.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = &s
	return nil
}

// =============================================================================
// UTILITIES
// =============================================================================

func (m *Store) Ping(context.Context) error { return nil }

// Reset clears all data.
func (m *Store) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	m.byDate = make(map[string]string)
	m.settings = nil
	return nil
}
