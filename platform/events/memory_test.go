package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"roofline_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
	Value int
}

func (e testEvent) EventName() string { return "test.event" }

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	var wg sync.WaitGroup
	wg.Add(2)
	var mu sync.Mutex
	got := make([]int, 0, 2)

	handler := HandlerFunc(func(_ context.Context, event Event) error {
		defer wg.Done()
		mu.Lock()
		got = append(got, event.(testEvent).Value)
		mu.Unlock()
		return nil
	})
	bus.Subscribe("test.event", handler)
	bus.Subscribe("test.event", handler)

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), Value: 7})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handlers did not run")
	}

	if len(got) != 2 || got[0] != 7 || got[1] != 7 {
		t.Errorf("unexpected deliveries: %v", got)
	}
}

func TestPublishSyncReturnsFirstError(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))
	boom := errors.New("boom")
	secondRan := false

	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error { return boom }))
	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error {
		secondRan = true
		return nil
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	if !errors.Is(err, boom) {
		t.Errorf("expected first error, got %v", err)
	}
	if !secondRan {
		t.Error("remaining handlers must still run after an error")
	}
}

func TestPublishSyncRecoversHandlerPanic(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))
	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error {
		panic("kaboom")
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	if err == nil {
		t.Fatal("expected panic converted to error")
	}
}

func TestPublishUnsubscribedEventIsNoop(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))
	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPublishDetachesFromCallerCancellation(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	published := make(chan struct{})
	errCh := make(chan error, 1)
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, _ Event) error {
		<-published
		errCh <- ctx.Err()
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, testEvent{BaseEvent: NewBaseEvent()})
	cancel()
	close(published)

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("handler context must survive the publisher's cancellation, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not run")
	}
}
