// Package notice collects user-visible warnings raised while serving a request,
// such as a storage collection that had to be reset.
package notice

import (
	"context"
	"sync"
)

type ctxKey struct{}

type Notices struct {
	mu       sync.Mutex
	messages []string
}

// With attaches an empty collector to ctx.
func With(ctx context.Context) (context.Context, *Notices) {
	n := &Notices{}
	return context.WithValue(ctx, ctxKey{}, n), n
}

// Add records msg on the collector of ctx. Without a collector it is a no-op.
func Add(ctx context.Context, msg string) {
	n, ok := ctx.Value(ctxKey{}).(*Notices)
	if !ok {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, m := range n.messages {
		if m == msg {
			return
		}
	}
	n.messages = append(n.messages, msg)
}

func From(ctx context.Context) []string {
	n, ok := ctx.Value(ctxKey{}).(*Notices)
	if !ok {
		return nil
	}
	return n.Messages()
}

func (n *Notices) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.messages))
	copy(out, n.messages)
	return out
}
