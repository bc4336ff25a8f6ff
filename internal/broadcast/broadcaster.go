// Package broadcast is the bookmark change channel: a payload-free pulse that
// tells every observer "bookmarks changed, read them again".
package broadcast

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/kompas/internal/logger"
	"github.com/MrSnakeDoc/kompas/internal/metrics"
)

// Dispatcher decides where observer callbacks run.
// In the application this is the UI loop.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatchFunc adapts a plain function to Dispatcher.
type DispatchFunc func(fn func())

func (f DispatchFunc) Dispatch(fn func()) { f(fn) }

// Broadcaster fans change pulses out to subscribers.
// One instance per process, built in the composition root.
type Broadcaster struct {
	mu         sync.RWMutex
	subs       map[string]*Subscription
	dispatcher Dispatcher
	logger     logger.Logger
	metrics    metrics.Recorder
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	id       string
	fn       func()
	active   atomic.Bool
	once     sync.Once
	released chan struct{}
	owner    *Broadcaster
}

// New creates a broadcaster delivering through dispatcher.
func New(dispatcher Dispatcher, log logger.Logger, rec metrics.Recorder) *Broadcaster {
	if rec == nil {
		rec = metrics.NopRecorder{}
	}
	return &Broadcaster{
		subs:       make(map[string]*Subscription),
		dispatcher: dispatcher,
		logger:     log,
		metrics:    rec,
	}
}

// Subscribe registers fn to run on every future Emit.
func (b *Broadcaster) Subscribe(fn func()) *Subscription {
	sub := &Subscription{
		id:       uuid.NewString(),
		fn:       fn,
		released: make(chan struct{}),
		owner:    b,
	}
	sub.active.Store(true)

	b.mu.Lock()
	b.subs[sub.id] = sub
	n := len(b.subs)
	b.mu.Unlock()

	b.metrics.SetSubscribers(n)
	b.logger.Debug("bookmark observer subscribed",
		logger.String("subscription_id", sub.id),
		logger.Int("subscribers", n))

	return sub
}

// SubscribeContext is Subscribe bound to ctx: the subscription is released
// when ctx is done, so an observer scoped to a request or a screen cannot
// outlive it.
func (b *Broadcaster) SubscribeContext(ctx context.Context, fn func()) *Subscription {
	sub := b.Subscribe(fn)
	go func() {
		select {
		case <-ctx.Done():
			sub.Unsubscribe()
		case <-sub.released:
		}
	}()
	return sub
}

// Emit schedules one delivery per currently registered subscriber.
// It never runs callbacks on the caller's goroutine unless the dispatcher does.
func (b *Broadcaster) Emit() {
	b.mu.RLock()
	targets := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	b.metrics.RecordEmit()
	b.logger.Debug("bookmark change emitted",
		logger.Int("subscribers", len(targets)))

	for _, sub := range targets {
		sub := sub
		b.dispatcher.Dispatch(func() {
			// Released between Emit and delivery: the observer is gone
			if !sub.active.Load() {
				return
			}
			sub.fn()
		})
	}
}

// Len returns the number of registered subscribers
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs)
}

func (b *Broadcaster) remove(sub *Subscription) {
	b.mu.Lock()
	delete(b.subs, sub.id)
	n := len(b.subs)
	b.mu.Unlock()

	b.metrics.SetSubscribers(n)
	b.logger.Debug("bookmark observer unsubscribed",
		logger.String("subscription_id", sub.id),
		logger.Int("subscribers", n))
}

// ID identifies the subscription in logs
func (s *Subscription) ID() string {
	return s.id
}

// Active reports whether the subscription still receives pulses
func (s *Subscription) Active() bool {
	return s.active.Load()
}

// Unsubscribe stops delivery to this subscriber. Calling it again does nothing.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.active.Store(false)
		close(s.released)
		s.owner.remove(s)
	})
}
