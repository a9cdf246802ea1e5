package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewBus(zap.NewNop(), 64)

	var mu sync.Mutex
	var got []uint64
	bus.SubscribeFunc(PriceCalculated, func(_ context.Context, e Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.(*PriceEvent).Supply)
		return nil
	})

	for i := uint64(0); i < 20; i++ {
		bus.Emit(&PriceEvent{BaseEvent: NewBase(PriceCalculated, time.Now()), Supply: i})
	}
	require.NoError(t, bus.Shutdown(context.Background()))

	require.Len(t, got, 20)
	for i, s := range got {
		assert.Equal(t, uint64(i), s)
	}
	assert.Equal(t, uint64(20), bus.Stats().Published)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop(), 8)
	defer bus.Shutdown(context.Background())

	calls := 0
	sub := bus.SubscribeFunc(PauseChanged, func(context.Context, Event) error {
		calls++
		return nil
	})
	ev := &PauseChangedEvent{BaseEvent: NewBase(PauseChanged, time.Now()), Paused: true}

	require.NoError(t, bus.PublishSync(context.Background(), ev))
	sub.Unsubscribe()
	require.NoError(t, bus.PublishSync(context.Background(), ev))
	assert.Equal(t, 1, calls)
	assert.Empty(t, bus.Stats().HandlersPerType)
}

func TestBusHandlerErrorsAreReported(t *testing.T) {
	bus := NewBus(zap.NewNop(), 8)
	defer bus.Shutdown(context.Background())

	boom := errors.New("disk full")
	bus.SubscribeAll(HandlerFunc(func(context.Context, Event) error { return boom }))

	err := bus.PublishSync(context.Background(), &AirdropEvent{BaseEvent: NewBase(AirdropRecorded, time.Now())})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, uint64(1), bus.Stats().HandlerFailures)
}

func TestBusRejectsAfterShutdown(t *testing.T) {
	bus := NewBus(zap.NewNop(), 1)
	require.NoError(t, bus.Shutdown(context.Background()))

	err := bus.Publish(&PriceEvent{BaseEvent: NewBase(PriceCalculated, time.Now())})
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestBusShutdownDeliversQueuedEventsWithLiveContext(t *testing.T) {
	for round := 0; round < 20; round++ {
		bus := NewBus(zap.NewNop(), 256)

		var mu sync.Mutex
		delivered, cancelled := 0, 0
		bus.SubscribeFunc(PurchaseRecorded, func(ctx context.Context, _ Event) error {
			mu.Lock()
			defer mu.Unlock()
			delivered++
			if ctx.Err() != nil {
				cancelled++
			}
			return nil
		})

		for i := 0; i < 100; i++ {
			bus.Emit(&PurchaseEvent{BaseEvent: NewBase(PurchaseRecorded, time.Now())})
		}
		require.NoError(t, bus.Shutdown(context.Background()))

		assert.Equal(t, 100, delivered, "round %d", round)
		assert.Zero(t, cancelled, "round %d", round)
	}
}

func TestBusShutdownIsIdempotent(t *testing.T) {
	bus := NewBus(zap.NewNop(), 4)
	require.NoError(t, bus.Shutdown(context.Background()))
	require.NoError(t, bus.Shutdown(context.Background()))
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Emit(&PriceEvent{BaseEvent: NewBase(PriceCalculated, time.Now())})
	r.Emit(&SaleEvent{BaseEvent: NewBase(SaleRecorded, time.Now())})

	assert.Len(t, r.Events(), 2)
	assert.Len(t, r.OfType(SaleRecorded), 1)
	r.Reset()
	assert.Empty(t, r.Events())
}
