package translations

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-globalize/internal/registry"
)

// MemoryStore keeps translation rows in memory for scaffolding and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]map[uuid.UUID]map[string]*Row
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[string]map[uuid.UUID]map[string]*Row),
	}
}

var _ Store = (*MemoryStore)(nil)

// Get returns the row for (ownerID, locale).
func (m *MemoryStore) Get(_ context.Context, model *registry.Model, ownerID uuid.UUID, locale string) (*Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.owner(model, ownerID)[locale]
	if !ok {
		return nil, ErrRowNotFound
	}
	return cloneRow(row), nil
}

// ListByLocales returns the owner's rows for the given locales.
func (m *MemoryStore) ListByLocales(_ context.Context, model *registry.Model, ownerID uuid.UUID, locales []string) ([]*Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.owner(model, ownerID)
	out := make([]*Row, 0, len(locales))
	for _, code := range locales {
		if row, ok := rows[code]; ok {
			out = append(out, cloneRow(row))
		}
	}
	return out, nil
}

// List returns every row of the owner ordered by locale.
func (m *MemoryStore) List(_ context.Context, model *registry.Model, ownerID uuid.UUID) ([]*Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.owner(model, ownerID)
	out := make([]*Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, cloneRow(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Locale < out[j].Locale })
	return out, nil
}

// ListForOwners returns the rows of several owners in one locale.
func (m *MemoryStore) ListForOwners(_ context.Context, model *registry.Model, ownerIDs []uuid.UUID, locale string) ([]*Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Row
	for _, ownerID := range ownerIDs {
		if row, ok := m.owner(model, ownerID)[locale]; ok {
			out = append(out, cloneRow(row))
		}
	}
	return out, nil
}

// Locales returns the distinct locales stored for the owner.
func (m *MemoryStore) Locales(ctx context.Context, model *registry.Model, ownerID uuid.UUID) ([]string, error) {
	rows, err := m.List(ctx, model, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.Locale
	}
	return out, nil
}

// Insert stores a new row, rejecting a second row for the same locale.
func (m *MemoryStore) Insert(_ context.Context, model *registry.Model, row *Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	table, ok := m.tables[model.TranslationTable()]
	if !ok {
		table = make(map[uuid.UUID]map[string]*Row)
		m.tables[model.TranslationTable()] = table
	}
	rows, ok := table[row.OwnerID]
	if !ok {
		rows = make(map[string]*Row)
		table[row.OwnerID] = rows
	}
	if _, exists := rows[row.Locale]; exists {
		return ErrDuplicateRow
	}
	rows[row.Locale] = cloneRow(row)
	return nil
}

// Update replaces an existing row.
func (m *MemoryStore) Update(_ context.Context, model *registry.Model, row *Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.owner(model, row.OwnerID)
	if _, ok := rows[row.Locale]; !ok {
		return ErrRowNotFound
	}
	rows[row.Locale] = cloneRow(row)
	return nil
}

// DeleteByOwner removes every row of the owner.
func (m *MemoryStore) DeleteByOwner(_ context.Context, model *registry.Model, ownerID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	table := m.tables[model.TranslationTable()]
	count := len(table[ownerID])
	delete(table, ownerID)
	return count, nil
}

func (m *MemoryStore) owner(model *registry.Model, ownerID uuid.UUID) map[string]*Row {
	return m.tables[model.TranslationTable()][ownerID]
}
