// Package bus is the in-process publish/subscribe hub. Every cross-component
// interaction in dictum flows through named events; no component holds a
// reference to another component, only to the bus it was constructed with.
package bus

import (
	"sync"

	"dictum/log"
)

// Handler receives the payload passed to Emit.
type Handler func(payload any)

// Token identifies one subscription for later removal.
type Token struct {
	name string
	id   uint64
}

type subscription struct {
	id uint64
	fn Handler
}

// Bus dispatches events synchronously, in registration order per event name.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string][]subscription
}

func New() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

// Subscribe registers fn for name. Multiple handlers per name are allowed and
// run in registration order.
func (b *Bus) Subscribe(name string, fn Handler) Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs[name] = append(b.subs[name], subscription{id: b.nextID, fn: fn})
	return Token{name: name, id: b.nextID}
}

// Unsubscribe removes the handler identified by tok. Removing an already
// removed handler is a no-op.
func (b *Bus) Unsubscribe(tok Token) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[tok.name]
	for i := range subs {
		if subs[i].id == tok.id {
			b.subs[tok.name] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Emit invokes every handler currently registered for name, synchronously and
// in registration order. A panicking handler is logged and does not stop the
// remaining handlers. Emitting with no subscribers is a no-op.
func (b *Bus) Emit(name string, payload any) {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs[name]))
	copy(subs, b.subs[name])
	b.mu.Unlock()

	for _, s := range subs {
		dispatch(name, s.fn, payload)
	}
}

func dispatch(name string, fn Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("event handler panic: event=%s err=%v", name, r)
		}
	}()
	fn(payload)
}
