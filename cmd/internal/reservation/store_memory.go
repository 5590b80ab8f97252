package reservation

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. It backs tests and single
// instance development runs.
type MemoryStore struct {
	mu       sync.RWMutex
	byHolder map[string]Record
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byHolder: make(map[string]Record)}
}

func (m *MemoryStore) CountByResource(ctx context.Context, resourceID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, r := range m.byHolder {
		if r.ResourceID() == resourceID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) CountAll(ctx context.Context) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]int)
	for _, r := range m.byHolder {
		if id := r.ResourceID(); id != "" {
			out[id]++
		}
	}
	return out, nil
}

func (m *MemoryStore) FindByHolder(ctx context.Context, holderID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.byHolder[holderID]
	if !ok {
		return Record{}, ErrNotRegistered
	}
	return r.clone(), nil
}

func (m *MemoryStore) Insert(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if strings.TrimSpace(rec.ID) == "" || strings.TrimSpace(rec.HolderID) == "" {
		return Record{}, ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byHolder[rec.HolderID]; exists {
		return Record{}, ErrAlreadyRegistered
	}
	m.byHolder[rec.HolderID] = rec.clone()
	return rec.clone(), nil
}

func (m *MemoryStore) AttachLock(ctx context.Context, holderID string, lock LockFields, now time.Time) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.byHolder[holderID]
	if !ok {
		return Record{}, ErrNotRegistered
	}
	if r.Lock != nil {
		return Record{}, ErrAlreadyLocked
	}
	r.Lock = &lock
	r.UpdatedAt = now
	m.byHolder[holderID] = r
	return r.clone(), nil
}

func (m *MemoryStore) UpdateTeam(ctx context.Context, holderID string, team Team, now time.Time) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.byHolder[holderID]
	if !ok {
		return Record{}, ErrNotRegistered
	}
	r.Team = team
	r.UpdatedAt = now
	m.byHolder[holderID] = r.clone()
	return r.clone(), nil
}

func (m *MemoryStore) Delete(ctx context.Context, holderID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.byHolder[holderID]
	if !ok {
		return Record{}, ErrNotRegistered
	}
	delete(m.byHolder, holderID)
	return r, nil
}
