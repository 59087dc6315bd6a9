package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lastutorials/pdfsplit/internal/document"
)

// MemoryRepo is an in-memory repository used for local runs and unit tests.
// Stored records are copied on the way in and out.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[document.ID]document.Document
	now   func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[document.ID]document.Document), now: time.Now}
}

func (m *MemoryRepo) Create(_ context.Context, doc *document.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[doc.DocumentID]; ok {
		return ErrExists
	}
	doc.CreatedAt = m.now().UTC()
	doc.UpdatedAt = doc.CreatedAt
	m.store[doc.DocumentID] = doc.Clone()
	return nil
}

func (m *MemoryRepo) Get(_ context.Context, id document.ID) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := d.Clone()
	return &out, nil
}

func (m *MemoryRepo) List(_ context.Context) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*document.Document, 0, len(m.store))
	for _, d := range m.store {
		c := d.Clone()
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentID < out[j].DocumentID })
	return out, nil
}

func (m *MemoryRepo) Update(_ context.Context, id document.ID, p Patch) (*document.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.apply(&d)
	d.UpdatedAt = m.now().UTC()
	m.store[id] = d.Clone()
	out := d.Clone()
	return &out, nil
}

func (m *MemoryRepo) Delete(_ context.Context, id document.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}
