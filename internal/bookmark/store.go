// Package bookmark owns the saved-articles collection.
//
// Every operation runs on one worker goroutine, so a duplicate check and the
// insert that follows it can never interleave with another caller. Storage
// errors stop here: they are logged and turned into a no-op, false or an
// empty list. Bookmarking is best effort.
package bookmark

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/kompas/internal/domain"
	"github.com/MrSnakeDoc/kompas/internal/logger"
	"github.com/MrSnakeDoc/kompas/internal/metrics"
)

// DefaultOpTimeout bounds a single repository call.
const DefaultOpTimeout = 5 * time.Second

// Operation names used in logs and metrics.
const (
	opAdd          = "add"
	opRemove       = "remove"
	opIsBookmarked = "is_bookmarked"
	opList         = "list"
	opCount        = "count"
)

// Repository is the persistence backend (Redis or memory).
type Repository interface {
	Exists(ctx context.Context, identifier string) (bool, error)
	Insert(ctx context.Context, bookmark domain.Bookmark) error
	Delete(ctx context.Context, identifier string) (int, error)
	List(ctx context.Context) ([]domain.Bookmark, error)
	Count(ctx context.Context) (int, error)
}

// Pinger is implemented by repositories that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Notifier receives one pulse after every Add and Remove.
type Notifier interface {
	Emit()
}

type operation struct {
	fn   func()
	done chan struct{}
}

// Store is the single source of truth for bookmarks.
type Store struct {
	repo      Repository
	notifier  Notifier
	logger    logger.Logger
	metrics   metrics.Recorder
	opTimeout time.Duration
	now       func() time.Time

	ops       chan operation
	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once

	// owned by the worker goroutine
	lastSavedAt time.Time
}

// New starts a store on top of repo. Close releases the worker.
func New(repo Repository, notifier Notifier, log logger.Logger, rec metrics.Recorder, opTimeout time.Duration) *Store {
	if rec == nil {
		rec = metrics.NopRecorder{}
	}
	if opTimeout <= 0 {
		opTimeout = DefaultOpTimeout
	}

	s := &Store{
		repo:      repo,
		notifier:  notifier,
		logger:    log,
		metrics:   rec,
		opTimeout: opTimeout,
		now:       time.Now,
		ops:       make(chan operation),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}

	go s.run()
	return s
}

// Add bookmarks the article. A second Add for the same identifier keeps the
// existing row. Observers are notified either way.
func (s *Store) Add(article domain.Article) {
	identifier := article.Identifier()
	if !s.do(func() { s.add(article, identifier) }) {
		s.logger.Debug("bookmark store closed, add dropped",
			logger.String("identifier", identifier))
		return
	}
	s.notifier.Emit()
}

// Remove deletes the bookmark stored under identifier, if any.
// Observers are notified whether or not a row existed.
func (s *Store) Remove(identifier string) {
	if !s.do(func() { s.remove(identifier) }) {
		s.logger.Debug("bookmark store closed, remove dropped",
			logger.String("identifier", identifier))
		return
	}
	s.notifier.Emit()
}

// RemoveArticle is Remove with the identifier derived from article.
func (s *Store) RemoveArticle(article domain.Article) {
	s.Remove(article.Identifier())
}

// IsBookmarked reports whether identifier is currently saved.
// Any storage error reads as false.
func (s *Store) IsBookmarked(identifier string) bool {
	var found bool
	s.do(func() {
		ctx, cancel := s.opContext()
		defer cancel()

		exists, err := s.repo.Exists(ctx, identifier)
		if err != nil {
			s.storeError(opIsBookmarked, identifier, err)
			return
		}
		found = exists
	})
	return found
}

// List returns a snapshot of every bookmark, most recently saved first.
// Any storage error reads as an empty list; the result is never nil.
func (s *Store) List() []domain.Bookmark {
	bookmarks := []domain.Bookmark{}
	s.do(func() {
		ctx, cancel := s.opContext()
		defer cancel()

		rows, err := s.repo.List(ctx)
		if err != nil {
			s.storeError(opList, "", err)
			return
		}
		domain.SortBySavedAtDesc(rows)
		bookmarks = append(bookmarks, rows...)
	})
	return bookmarks
}

// Count returns the number of saved bookmarks, 0 on error.
func (s *Store) Count() int {
	var n int
	s.do(func() {
		ctx, cancel := s.opContext()
		defer cancel()

		count, err := s.repo.Count(ctx)
		if err != nil {
			s.storeError(opCount, "", err)
			return
		}
		n = count
	})
	return n
}

// AddAsync runs Add without blocking the caller. The returned channel is
// closed once the bookmark is committed and observers are notified.
func (s *Store) AddAsync(article domain.Article) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Add(article)
	}()
	return done
}

// RemoveAsync runs Remove without blocking the caller.
func (s *Store) RemoveAsync(identifier string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Remove(identifier)
	}()
	return done
}

// Ping checks the backend when it supports it. It bypasses the worker queue.
func (s *Store) Ping(ctx context.Context) error {
	p, ok := s.repo.(Pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("bookmark backend unreachable: %w", err)
	}
	return nil
}

// Close stops the worker after the running operation finishes.
// Calls made after Close are dropped. Safe to call more than once.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.stopCh)
		<-s.doneCh
	})
}

// ─────────────────────────────
// Worker side
// ─────────────────────────────

func (s *Store) run() {
	defer close(s.doneCh)
	for {
		select {
		case op := <-s.ops:
			s.exec(op)
		case <-s.stopCh:
			return
		}
	}
}

func (s *Store) exec(op operation) {
	defer close(op.done)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("bookmark operation panicked",
				logger.String("panic", fmt.Sprint(r)))
		}
	}()
	op.fn()
}

// do hands fn to the worker and waits for it. It returns false when the
// store is closed and fn did not run.
func (s *Store) do(fn func()) bool {
	op := operation{fn: fn, done: make(chan struct{})}
	select {
	case s.ops <- op:
	case <-s.stopCh:
		return false
	}
	<-op.done
	return true
}

func (s *Store) add(article domain.Article, identifier string) {
	ctx, cancel := s.opContext()
	defer cancel()

	exists, err := s.repo.Exists(ctx, identifier)
	if err != nil {
		s.storeError(opAdd, identifier, err)
		s.metrics.RecordBookmarkOp(opAdd, metrics.OutcomeFailed)
		return
	}
	if exists {
		s.logger.Debug("bookmark already saved",
			logger.String("identifier", identifier))
		s.metrics.RecordBookmarkOp(opAdd, metrics.OutcomeDuplicate)
		return
	}

	bookmark := domain.NewBookmark(article, s.nextSavedAt())
	if err := s.repo.Insert(ctx, bookmark); err != nil {
		s.storeError(opAdd, identifier, err)
		s.rollback(identifier)
		s.metrics.RecordBookmarkOp(opAdd, metrics.OutcomeFailed)
		return
	}

	s.logger.Info("bookmark saved",
		logger.String("identifier", identifier),
		logger.String("title", bookmark.Title))
	s.metrics.RecordBookmarkOp(opAdd, metrics.OutcomeOK)
}

// rollback removes whatever a failed insert may have left behind.
func (s *Store) rollback(identifier string) {
	ctx, cancel := s.opContext()
	defer cancel()

	if _, err := s.repo.Delete(ctx, identifier); err != nil {
		s.logger.Error("bookmark rollback failed",
			logger.String("identifier", identifier),
			logger.Error(err))
		return
	}
	s.logger.Warn("bookmark insert rolled back",
		logger.String("identifier", identifier))
}

func (s *Store) remove(identifier string) {
	ctx, cancel := s.opContext()
	defer cancel()

	n, err := s.repo.Delete(ctx, identifier)
	if err != nil {
		s.storeError(opRemove, identifier, err)
		s.metrics.RecordBookmarkOp(opRemove, metrics.OutcomeFailed)
		return
	}
	if n == 0 {
		s.logger.Debug("bookmark not found",
			logger.String("identifier", identifier))
		s.metrics.RecordBookmarkOp(opRemove, metrics.OutcomeNotFound)
		return
	}

	s.logger.Info("bookmark removed",
		logger.String("identifier", identifier),
		logger.Int("rows", n))
	s.metrics.RecordBookmarkOp(opRemove, metrics.OutcomeOK)
}

// nextSavedAt returns now at microsecond precision, strictly after the
// previous value handed out by this store.
func (s *Store) nextSavedAt() time.Time {
	t := s.now().UTC().Truncate(time.Microsecond)
	if !t.After(s.lastSavedAt) {
		t = s.lastSavedAt.Add(time.Microsecond)
	}
	s.lastSavedAt = t
	return t
}

func (s *Store) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.opTimeout)
}

func (s *Store) storeError(op, identifier string, err error) {
	s.metrics.RecordStoreError(op)
	s.logger.Error("bookmark store error",
		logger.String("op", op),
		logger.String("identifier", identifier),
		logger.Error(err))
}
