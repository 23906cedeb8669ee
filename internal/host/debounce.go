package host

import (
	"sync"
	"time"
)

// saveDebouncer coalesces bursts of save requests into one flush.
type saveDebouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	flush func()
}

func newSaveDebouncer(delay time.Duration, flush func()) *saveDebouncer {
	return &saveDebouncer{delay: delay, flush: flush}
}

// Schedule arms (or re-arms) the flush timer.
func (d *saveDebouncer) Schedule() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.fire)
		return
	}
	d.timer.Reset(d.delay)
}

func (d *saveDebouncer) fire() {
	d.mu.Lock()
	d.timer = nil
	d.mu.Unlock()
	d.flush()
}

// Flush cancels any pending timer and flushes immediately.
func (d *saveDebouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.flush()
}
