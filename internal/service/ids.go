package service

import (
	"sync"
	"time"
)

// idGenerator issues millisecond-based story ids that never repeat, even
// when several records are created within the same millisecond.
type idGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func newIDGenerator() *idGenerator {
	return &idGenerator{now: time.Now}
}

// Next returns max(now in ms, last issued + 1, maxExisting + 1).
func (g *idGenerator) Next(maxExisting int64) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	if id <= maxExisting {
		id = maxExisting + 1
	}

	g.last = id
	return id
}
