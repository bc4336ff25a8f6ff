package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/kompas/internal/feed"
	"github.com/MrSnakeDoc/kompas/internal/logger"
	"github.com/MrSnakeDoc/kompas/internal/metrics"
)

// FeedSink receives the outcome of every reload
type FeedSink interface {
	SetSections(sections []feed.HomeSection)
	SetError(err error)
}

// FeedReloader handles periodic reloading of the home feed
type FeedReloader struct {
	source        feed.Source
	sink          FeedSink
	logger        logger.Logger
	metrics       metrics.Recorder
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}

	mu         sync.RWMutex
	lastReload time.Time
	lastErr    error
}

// NewFeedReloader creates a new feed reloader
func NewFeedReloader(
	source feed.Source,
	sink FeedSink,
	log logger.Logger,
	rec metrics.Recorder,
	interval time.Duration,
	manualTrigger chan struct{},
) *FeedReloader {
	if rec == nil {
		rec = metrics.NopRecorder{}
	}
	return &FeedReloader{
		source:        source,
		sink:          sink,
		logger:        log,
		metrics:       rec,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the feed once and then keeps it fresh in the background.
// A failed first load is only a warning: the feed screen shows the error
// and the next tick or manual trigger tries again.
func (fr *FeedReloader) Start(ctx context.Context) {
	if err := fr.Reload(ctx); err != nil {
		fr.logger.Warn("initial feed load failed",
			logger.String("source", fr.source.Name()),
			logger.Error(err))
	}

	ticker := time.NewTicker(fr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := fr.Reload(ctx); err != nil {
					fr.logger.Error("failed to reload feed",
						logger.Error(err))
				}
			case <-fr.manualTrigger:
				fr.logger.Info("manual feed reload triggered")
				if err := fr.Reload(ctx); err != nil {
					fr.logger.Error("failed to reload feed",
						logger.Error(err))
				}
			case <-fr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the reloader. Safe to call more than once.
func (fr *FeedReloader) Stop() {
	fr.stopOnce.Do(func() {
		close(fr.stopCh)
	})
}

// Reload fetches the feed and hands the result to the sink
func (fr *FeedReloader) Reload(ctx context.Context) error {
	fr.logger.Debug("reloading home feed",
		logger.String("source", fr.source.Name()))

	start := time.Now()
	sections, err := fr.source.Fetch(ctx)
	latency := time.Since(start)
	fr.metrics.RecordFeedFetch(err == nil, latency)

	fr.mu.Lock()
	fr.lastReload = time.Now()
	fr.lastErr = err
	fr.mu.Unlock()

	if err != nil {
		fr.sink.SetError(err)
		return fmt.Errorf("failed to fetch home sections: %w", err)
	}

	fr.sink.SetSections(sections)
	fr.logger.Info("home feed loaded",
		logger.Int("sections", len(sections)),
		logger.Duration("latency", latency))

	return nil
}

// Status returns the time and error of the last reload attempt
func (fr *FeedReloader) Status() (time.Time, error) {
	fr.mu.RLock()
	defer fr.mu.RUnlock()

	return fr.lastReload, fr.lastErr
}
