// Package notifications fans client events out to interested parties:
// the log, the presentation layer, and the managers that react to session changes.
package notifications

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/you/storefront/domain"
)

// Handler consumes one event
type Handler func(ctx context.Context, event domain.Event)

const defaultBuffer = 64

type subscriber struct {
	id      int
	types   map[domain.EventType]bool
	ch      chan domain.Event
	handler Handler
	done    chan struct{}
}

// Bus is an in-process EventSink with asynchronous subscribers.
// Each subscriber gets its own goroutine and buffer; a full buffer drops the
// event for that subscriber rather than blocking the publisher.
type Bus struct {
	logger *zap.Logger
	buffer int

	mu     sync.RWMutex
	subs   map[int]*subscriber
	nextID int
	closed bool
	ctx    context.Context
	cancel context.CancelFunc
}

// NewBus creates an event bus
func NewBus(logger *zap.Logger) *Bus {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bus{
		logger: logger,
		buffer: defaultBuffer,
		subs:   make(map[int]*subscriber),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Subscribe registers handler for the given event types (all types when none
// are given). The returned function unsubscribes and waits for the handler
// goroutine to exit.
func (b *Bus) Subscribe(handler Handler, types ...domain.EventType) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return func() {}
	}

	s := &subscriber{
		id:      b.nextID,
		ch:      make(chan domain.Event, b.buffer),
		handler: handler,
		done:    make(chan struct{}),
	}
	if len(types) > 0 {
		s.types = make(map[domain.EventType]bool, len(types))
		for _, t := range types {
			s.types[t] = true
		}
	}
	b.nextID++
	b.subs[s.id] = s
	go b.run(s)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			if _, ok := b.subs[s.id]; ok {
				delete(b.subs, s.id)
				close(s.ch)
			}
			b.mu.Unlock()
			<-s.done
		})
	}
}

func (b *Bus) run(s *subscriber) {
	defer close(s.done)
	for event := range s.ch {
		s.handler(b.ctx, event)
	}
}

// Publish implements domain.EventSink
func (b *Bus) Publish(_ context.Context, event *domain.Event) {
	if event == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, s := range b.subs {
		if s.types != nil && !s.types[event.Type] {
			continue
		}
		select {
		case s.ch <- *event:
		default:
			b.logger.Warn("event dropped, subscriber buffer full",
				zap.String("type", string(event.Type)),
				zap.Int("subscriber", s.id))
		}
	}
}

// Close stops delivery and waits for every subscriber to drain. Handlers
// see a cancelled context once Close has been called.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.cancel()
	subs := make([]*subscriber, 0, len(b.subs))
	for id, s := range b.subs {
		close(s.ch)
		subs = append(subs, s)
		delete(b.subs, id)
	}
	b.mu.Unlock()

	for _, s := range subs {
		<-s.done
	}
}

var _ domain.EventSink = (*Bus)(nil)
