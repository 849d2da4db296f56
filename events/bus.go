// Package events implements the Event Bus half of §4.3: typed
// publish/subscribe keyed by event variant, idempotent cancellation
// handles, async handlers that run concurrently and are awaited by
// Publish, and fire-and-forget sync handlers whose failures are counted
// but never propagate. It is grounded on the same teacher
// internal/metadata observability shape as progress/, generalized from a
// single Recorder sink into a full pub/sub bus.
package events

import (
	"sync"
	"time"
)

// Kind identifies an event variant.
type Kind string

const (
	CrawlStarted         Kind = "CrawlStarted"
	UrlProcessingStarted Kind = "UrlProcessingStarted"
	UrlProcessed         Kind = "UrlProcessed"
	UrlProcessingFailed  Kind = "UrlProcessingFailed"
	CrawlCompleted       Kind = "CrawlCompleted"
	CrawlError           Kind = "CrawlError"
	CrawlWarning         Kind = "CrawlWarning"
)

// Event is one published occurrence. Payload is variant-specific data
// (e.g. a progress.Snapshot, a URL, an error message); handlers type-
// assert on what they expect for the Kind they registered for.
type Event struct {
	Kind      Kind
	JobID     string
	Payload   interface{}
	Timestamp time.Time
}

// Handler processes one Event.
type Handler func(Event)

// Handle cancels a subscription. Invocation is idempotent: calling it
// more than once has no additional effect.
type Handle func()

type subscription struct {
	id      uint64
	async   bool
	handler Handler
}

// Bus is a typed, concurrency-safe publish/subscribe hub.
type Bus struct {
	mu       sync.RWMutex
	perKind  map[Kind][]*subscription
	all      []*subscription
	nextID   uint64
	failures uint64
	now      func() time.Time
}

func New() *Bus {
	return &Bus{
		perKind: make(map[Kind][]*subscription),
		now:     time.Now,
	}
}

// Subscribe registers handler for a single event Kind. async=true runs the
// handler concurrently with siblings and is waited on by Publish; async=
// false is fire-and-forget and its panics/failures are only counted.
func (b *Bus) Subscribe(kind Kind, async bool, handler Handler) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &subscription{id: b.nextID, async: async, handler: handler}
	b.perKind[kind] = append(b.perKind[kind], sub)
	return b.unsubscribeHandle(kind, sub.id)
}

// SubscribeAll routes every published event, regardless of Kind, to
// handler.
func (b *Bus) SubscribeAll(async bool, handler Handler) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &subscription{id: b.nextID, async: async, handler: handler}
	b.all = append(b.all, sub)
	return b.unsubscribeAllHandle(sub.id)
}

func (b *Bus) unsubscribeHandle(kind Kind, id uint64) Handle {
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			subs := b.perKind[kind]
			for i, s := range subs {
				if s.id == id {
					b.perKind[kind] = append(subs[:i], subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (b *Bus) unsubscribeAllHandle(id uint64) Handle {
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.all {
				if s.id == id {
					b.all = append(b.all[:i], b.all[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers event to every matching subscriber. It returns once
// every async handler (for this Kind and "subscribe all") has settled;
// sync handlers are invoked inline before that wait, fire-and-forget with
// respect to their own failures.
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = b.now()
	}

	b.mu.RLock()
	kindSubs := append([]*subscription(nil), b.perKind[event.Kind]...)
	allSubs := append([]*subscription(nil), b.all...)
	b.mu.RUnlock()

	var wg sync.WaitGroup
	dispatch := func(sub *subscription) {
		if !sub.async {
			b.runSync(sub, event)
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.runAsync(sub, event)
		}()
	}

	for _, sub := range kindSubs {
		dispatch(sub)
	}
	for _, sub := range allSubs {
		dispatch(sub)
	}
	wg.Wait()
}

func (b *Bus) runSync(sub *subscription, event Event) {
	defer b.recoverAndCount()
	sub.handler(event)
}

func (b *Bus) runAsync(sub *subscription, event Event) {
	defer b.recoverAndCount()
	sub.handler(event)
}

func (b *Bus) recoverAndCount() {
	if r := recover(); r != nil {
		b.mu.Lock()
		b.failures++
		b.mu.Unlock()
	}
}

// FailureCount returns how many handler invocations have panicked.
func (b *Bus) FailureCount() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.failures
}
