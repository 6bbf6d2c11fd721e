// Package pubsub provides a minimal synchronous publish/subscribe bus.
//
// The bus dispatches payloads by topic string. Handlers are invoked
// synchronously on the publishing goroutine, in subscription order, so a
// publisher observes every side effect of delivery before its Publish call
// returns. A panicking handler is isolated and does not prevent delivery to
// the remaining handlers.
package pubsub

import (
	"log"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
)

// Handler is a function that receives published payloads.
type Handler func(payload any)

// PanicHandler is invoked when a subscriber panics during delivery.
type PanicHandler func(topic string, recovered any, stack []byte)

// subscription pairs a handler with its registration identity.
type subscription struct {
	id      string
	topic   string
	handler Handler
}

// Bus is a synchronous topic-keyed publish/subscribe dispatcher. All methods
// are safe for concurrent use.
type Bus struct {
	mu      sync.RWMutex
	subs    map[string][]subscription
	all     []subscription
	onPanic PanicHandler
}

// NewBus creates an empty bus. A nil panic handler logs recovered panics
// through the standard logger.
func NewBus(onPanic PanicHandler) *Bus {
	if onPanic == nil {
		onPanic = func(topic string, recovered any, stack []byte) {
			log.Printf("pubsub: handler for %q panicked: %v\n%s", topic, recovered, stack)
		}
	}
	return &Bus{
		subs:    make(map[string][]subscription),
		onPanic: onPanic,
	}
}

var idCounter atomic.Int64

func nextID() string {
	return "sub-" + strconv.FormatInt(idCounter.Add(1), 10)
}

// Subscribe registers a handler for one topic and returns its subscription ID.
func (b *Bus) Subscribe(topic string, h Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := subscription{id: nextID(), topic: topic, handler: h}
	b.subs[topic] = append(b.subs[topic], s)
	return s.id
}

// SubscribeAll registers a handler that receives every published payload,
// regardless of topic. All-topic handlers run after topic-specific ones.
func (b *Bus) SubscribeAll(h Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := subscription{id: nextID(), topic: "*", handler: h}
	b.all = append(b.all, s)
	return s.id
}

// Unsubscribe removes the subscription with the given ID and reports whether
// one was removed. Removing an unknown or already-removed ID is a no-op.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for topic, list := range b.subs {
		for i, s := range list {
			if s.id != id {
				continue
			}
			// Rebuild rather than splice in place: snapshots taken by an
			// in-flight Publish share the old backing array.
			filtered := make([]subscription, 0, len(list)-1)
			filtered = append(filtered, list[:i]...)
			filtered = append(filtered, list[i+1:]...)
			if len(filtered) == 0 {
				delete(b.subs, topic)
			} else {
				b.subs[topic] = filtered
			}
			return true
		}
	}
	for i, s := range b.all {
		if s.id != id {
			continue
		}
		filtered := make([]subscription, 0, len(b.all)-1)
		filtered = append(filtered, b.all[:i]...)
		filtered = append(filtered, b.all[i+1:]...)
		b.all = filtered
		return true
	}
	return false
}

// Publish delivers payload to every handler subscribed to topic, then to
// every all-topic handler, synchronously on the calling goroutine.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.RLock()
	handlers := make([]subscription, 0, len(b.subs[topic])+len(b.all))
	handlers = append(handlers, b.subs[topic]...)
	handlers = append(handlers, b.all...)
	b.mu.RUnlock()

	for _, s := range handlers {
		b.safeCall(s, topic, payload)
	}
}

func (b *Bus) safeCall(s subscription, topic string, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.onPanic(topic, r, debug.Stack())
		}
	}()
	s.handler(payload)
}

// SubscriptionCount returns the number of active subscriptions across all
// topics, including all-topic registrations.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := len(b.all)
	for _, list := range b.subs {
		n += len(list)
	}
	return n
}

// Clear removes every subscription in one step.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = make(map[string][]subscription)
	b.all = nil
}
