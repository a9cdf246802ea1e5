// internal/events/bus.go
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrBusClosed = errors.New("event bus is shutting down")
	ErrBusFull   = errors.New("event channel full")
)

// handlerTimeout bounds one handler call. Handlers never see the bus's own
// shutdown, so a queued event is delivered even while the bus is closing.
const handlerTimeout = 10 * time.Second

// Bus is an in-memory event bus. Published events are delivered in order by a
// single dispatcher goroutine, so handlers observe commit order.
type Bus struct {
	mu         sync.RWMutex
	handlers   map[EventType]map[string]Handler
	logger     *zap.Logger
	closed     bool
	quit       chan struct{}
	quitOnce   sync.Once
	wg         sync.WaitGroup
	eventChan  chan Event
	bufferSize int

	published uint64
	dropped   uint64
	failed    uint64
}

// BusStats is a point-in-time view of the bus counters.
type BusStats struct {
	BufferSize      int
	PendingEvents   int
	Published       uint64
	Dropped         uint64
	HandlerFailures uint64
	HandlersPerType map[EventType]int
}

// NewBus creates a new event bus.
func NewBus(logger *zap.Logger, bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	bus := &Bus{
		handlers:   make(map[EventType]map[string]Handler),
		logger:     logger.Named("event_bus"),
		quit:       make(chan struct{}),
		eventChan:  make(chan Event, bufferSize),
		bufferSize: bufferSize,
	}

	bus.wg.Add(1)
	go bus.processEvents()

	return bus
}

// Subscribe registers a handler for a specific event type.
func (b *Bus) Subscribe(eventType EventType, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()
	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[string]Handler)
	}
	b.handlers[eventType][id] = handler

	b.logger.Debug("Handler subscribed",
		zap.String("event_type", string(eventType)),
		zap.String("subscription_id", id))

	return &subscription{id: id, eventBus: b, typ: eventType}
}

// SubscribeFunc is a convenience method for subscribing with a function.
func (b *Bus) SubscribeFunc(eventType EventType, fn func(context.Context, Event) error) Subscription {
	return b.Subscribe(eventType, HandlerFunc(fn))
}

// SubscribeAll registers handler for every event type the program emits.
func (b *Bus) SubscribeAll(handler Handler) []Subscription {
	subs := make([]Subscription, 0, len(AllTypes))
	for _, t := range AllTypes {
		subs = append(subs, b.Subscribe(t, handler))
	}
	return subs
}

// Emit implements Sink. A full or closed bus drops the event with a warning.
func (b *Bus) Emit(event Event) {
	if err := b.Publish(event); err != nil {
		b.logger.Warn("Event not published",
			zap.String("event_type", string(event.Type())),
			zap.Error(err))
	}
}

// Publish queues an event for asynchronous delivery.
func (b *Bus) Publish(event Event) error {
	// read lock held across the send so Shutdown cannot slip in between
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	select {
	case b.eventChan <- event:
		atomic.AddUint64(&b.published, 1)
		return nil
	default:
		atomic.AddUint64(&b.dropped, 1)
		return ErrBusFull
	}
}

// PublishSync delivers an event to all registered handlers synchronously.
func (b *Bus) PublishSync(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.Type()]
	handlersCopy := make(map[string]Handler, len(handlers))
	for id, h := range handlers {
		handlersCopy[id] = h
	}
	b.mu.RUnlock()

	var errs []error
	for id, handler := range handlersCopy {
		if err := handler.Handle(ctx, event); err != nil {
			atomic.AddUint64(&b.failed, 1)
			b.logger.Error("Handler error",
				zap.String("event_type", string(event.Type())),
				zap.String("handler_id", id),
				zap.Error(err))
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("handlers failed: %w", errors.Join(errs...))
	}
	return nil
}

func (b *Bus) processEvents() {
	defer b.wg.Done()

	for {
		select {
		case <-b.quit:
			// Publish is closed, so the queue only shrinks from here
			for {
				select {
				case event := <-b.eventChan:
					b.dispatch(event)
				default:
					return
				}
			}
		case event := <-b.eventChan:
			b.dispatch(event)
		}
	}
}

func (b *Bus) dispatch(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	_ = b.PublishSync(ctx, event)
}

func (b *Bus) unsubscribe(id string, eventType EventType) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if handlers, ok := b.handlers[eventType]; ok {
		delete(handlers, id)
		if len(handlers) == 0 {
			delete(b.handlers, eventType)
		}
	}

	b.logger.Debug("Handler unsubscribed",
		zap.String("event_type", string(eventType)),
		zap.String("subscription_id", id))
}

// Shutdown stops accepting events, drains the queue and waits for the
// dispatcher or ctx, whichever comes first.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.logger.Debug("Shutting down event bus")
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.quitOnce.Do(func() { close(b.quit) })

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		b.logger.Warn("Event bus shutdown timeout")
		return ctx.Err()
	}
}

// Stats returns statistics about the event bus.
func (b *Bus) Stats() BusStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	perType := make(map[EventType]int, len(b.handlers))
	for t, hs := range b.handlers {
		perType[t] = len(hs)
	}
	return BusStats{
		BufferSize:      b.bufferSize,
		PendingEvents:   len(b.eventChan),
		Published:       atomic.LoadUint64(&b.published),
		Dropped:         atomic.LoadUint64(&b.dropped),
		HandlerFailures: atomic.LoadUint64(&b.failed),
		HandlersPerType: perType,
	}
}
