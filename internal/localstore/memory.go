package localstore

import (
	"context"
	"sync"

	"hikayat/internal/models"
)

// MemoryStore keeps every profile in process memory. It backs tests and the
// "memory" storage driver; nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]map[string][]byte)}
}

func (s *MemoryStore) Profile(id string) Profile {
	return &memProfile{id: id, store: s}
}

func (s *MemoryStore) Stats(ctx context.Context) (models.StorageStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.StorageStats{}
	for _, items := range s.profiles {
		if len(items) == 0 {
			continue
		}
		stats.Profiles++
		stats.Items += len(items)
	}
	return stats, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

type memProfile struct {
	id    string
	store *MemoryStore
}

func (p *memProfile) ID() string {
	return p.id
}

func (p *memProfile) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	p.store.mu.RLock()
	defer p.store.mu.RUnlock()

	value, ok := p.store.profiles[p.id][key]
	if !ok {
		return nil, false, nil
	}
	return clone(value), true, nil
}

func (p *memProfile) SetItem(ctx context.Context, key string, value []byte) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	p.items()[key] = clone(value)
	return nil
}

func (p *memProfile) RemoveItem(ctx context.Context, key string) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	delete(p.store.profiles[p.id], key)
	return nil
}

func (p *memProfile) Atomic(ctx context.Context, fn func(tx Local) error) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	staged := make(map[string][]byte, len(p.store.profiles[p.id]))
	for k, v := range p.store.profiles[p.id] {
		staged[k] = v
	}

	tx := &memTx{items: staged}
	if err := fn(tx); err != nil {
		return err
	}

	p.store.profiles[p.id] = staged
	tx.committed()
	return nil
}

// items must be called with the write lock held.
func (p *memProfile) items() map[string][]byte {
	items, ok := p.store.profiles[p.id]
	if !ok {
		items = make(map[string][]byte)
		p.store.profiles[p.id] = items
	}
	return items
}

// memTx works on a staged copy while the store lock is held by Atomic.
type memTx struct {
	items       map[string][]byte
	afterCommit []func()
}

func (t *memTx) AfterCommit(fn func()) {
	t.afterCommit = append(t.afterCommit, fn)
}

func (t *memTx) committed() {
	for _, fn := range t.afterCommit {
		fn()
	}
}

func (t *memTx) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok := t.items[key]
	if !ok {
		return nil, false, nil
	}
	return clone(value), true, nil
}

func (t *memTx) SetItem(ctx context.Context, key string, value []byte) error {
	t.items[key] = clone(value)
	return nil
}

func (t *memTx) RemoveItem(ctx context.Context, key string) error {
	delete(t.items, key)
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
