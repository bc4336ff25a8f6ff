// Package mainloop provides the UI scheduling context: one goroutine that runs
// posted callbacks one at a time, in the order they were posted.
package mainloop

import (
	"context"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/kompas/internal/logger"
)

// Loop is a serial executor with an unbounded queue.
// Post never blocks, so code running on the loop may post to it.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	logger  logger.Logger
	started bool
	stopped bool
}

// New creates a loop; call Start before expecting callbacks to run.
func New(log logger.Logger) *Loop {
	return &Loop{
		wake:   make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		logger: log,
	}
}

// Start runs the loop until Stop is called or ctx is done.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return
	}
	l.started = true
	l.mu.Unlock()

	go func() {
		defer close(l.doneCh)
		for {
			l.runPending()
			select {
			case <-l.wake:
			case <-l.stopCh:
				return
			case <-ctx.Done():
				l.mu.Lock()
				l.stopped = true
				l.queue = nil
				l.mu.Unlock()
				return
			}
		}
	}()
}

// Stop ends the loop. Callbacks still queued are dropped.
// Safe to call more than once.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	started := l.started
	l.queue = nil
	l.mu.Unlock()

	close(l.stopCh)
	if started {
		<-l.doneCh
	}
}

// Post queues fn to run on the loop. Posting to a stopped loop is a no-op.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Dispatch is Post; it lets the loop serve as a broadcast.Dispatcher.
func (l *Loop) Dispatch(fn func()) {
	l.Post(fn)
}

// Drain blocks until every callback posted before the call has run,
// or until ctx is done or the loop stops.
func (l *Loop) Drain(ctx context.Context) error {
	done := make(chan struct{})
	l.Post(func() { close(done) })

	select {
	case <-done:
		return nil
	case <-l.doneCh:
		return fmt.Errorf("loop stopped before drain completed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of queued callbacks
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.queue)
}

func (l *Loop) runPending() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 || l.stopped {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.run(fn)
	}
}

// run executes one callback; a panicking observer must not take the loop down.
func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("ui loop callback panicked",
				logger.String("panic", fmt.Sprint(r)))
		}
	}()
	fn()
}
