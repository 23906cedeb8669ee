package host

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	var flushes atomic.Int32
	d := newSaveDebouncer(30*time.Millisecond, func() {
		flushes.Add(1)
	})

	for i := 0; i < 10; i++ {
		d.Schedule()
	}

	time.Sleep(100 * time.Millisecond)
	if got := flushes.Load(); got != 1 {
		t.Errorf("expected 1 flush for a burst, got %d", got)
	}
}

func TestDebouncerRearmsAfterFire(t *testing.T) {
	var flushes atomic.Int32
	d := newSaveDebouncer(20*time.Millisecond, func() {
		flushes.Add(1)
	})

	d.Schedule()
	time.Sleep(60 * time.Millisecond)
	d.Schedule()
	time.Sleep(60 * time.Millisecond)

	if got := flushes.Load(); got != 2 {
		t.Errorf("expected 2 flushes, got %d", got)
	}
}

func TestDebouncerFlushCancelsTimer(t *testing.T) {
	var flushes atomic.Int32
	d := newSaveDebouncer(time.Hour, func() {
		flushes.Add(1)
	})

	d.Schedule()
	d.Flush()

	if got := flushes.Load(); got != 1 {
		t.Fatalf("expected immediate flush, got %d", got)
	}

	time.Sleep(20 * time.Millisecond)
	if got := flushes.Load(); got != 1 {
		t.Errorf("cancelled timer still fired, flushes = %d", got)
	}
}

func TestBusDropsWhenSubscriberLagging(t *testing.T) {
	b := NewBus()
	events, cancel := b.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		b.Emit(Event{Type: EventMessageSent})
	}

	received := 0
	for {
		select {
		case <-events:
			received++
		default:
			if received != subscriberBuffer {
				t.Errorf("expected %d buffered events, got %d", subscriberBuffer, received)
			}
			return
		}
	}
}

func TestBusCancelIsIdempotent(t *testing.T) {
	b := NewBus()
	_, cancel := b.Subscribe()
	cancel()
	cancel()

	// Emitting after cancel must not panic on the closed channel.
	b.Emit(Event{Type: EventMessageSent})
}
