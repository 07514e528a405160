package events

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryBus is an in-process Publisher and Subscriber used when Redis is not
// configured. Events round-trip through JSON so handlers see the same
// payload types as with Redis.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]func(Event)
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[string][]func(Event))}
}

func (b *MemoryBus) Publish(ctx context.Context, stream string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	var decoded Event
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	b.mu.RLock()
	handlers := append(([]func(Event))(nil), b.handlers[stream]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(decoded)
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, stream string, handler func(Event)) error {
	b.mu.Lock()
	b.handlers[stream] = append(b.handlers[stream], handler)
	b.mu.Unlock()
	return nil
}
