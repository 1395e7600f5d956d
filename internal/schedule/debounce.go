// Package schedule provides the cancellable timer abstraction used to
// coalesce bursts of recompute triggers into a single run.
package schedule

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Debouncer runs fn once per burst of Trigger calls: each call restarts the
// window, and fn fires when the window elapses with no further trigger. It is
// deliberately independent of any rendering or framework lifecycle.
type Debouncer struct {
	window time.Duration
	fn     func()
	logger *logrus.Logger

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	wg      sync.WaitGroup
}

// NewDebouncer creates a debouncer around fn with the given window.
func NewDebouncer(window time.Duration, fn func(), logger *logrus.Logger) *Debouncer {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Debouncer{
		window: window,
		fn:     fn,
		logger: logger,
	}
}

// Trigger schedules fn after the window, cancelling any pending run. Calls
// after Stop are ignored.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.timer != nil {
		if d.timer.Stop() {
			d.wg.Done()
		}
	}

	d.wg.Add(1)
	d.timer = time.AfterFunc(d.window, func() {
		defer d.wg.Done()
		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()
		if stopped {
			return
		}
		d.fn()
	})
}

// Flush cancels any pending run and executes fn immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn()
}

// Stop cancels any pending run and waits for an in-flight one to finish.
// Further triggers are no-ops.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}
	d.timer = nil
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Debug("Debouncer stopped")
}
