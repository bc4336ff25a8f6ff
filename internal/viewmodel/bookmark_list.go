package viewmodel

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/kompas/internal/broadcast"
	"github.com/MrSnakeDoc/kompas/internal/domain"
	"github.com/MrSnakeDoc/kompas/internal/logger"
)

// BookmarkList backs the dedicated bookmarks screen
type BookmarkList struct {
	store  Store
	sub    *broadcast.Subscription
	logger logger.Logger

	mu          sync.RWMutex
	items       []domain.Bookmark
	reads       readOrder
	lastRefresh time.Time
	onUpdate    func([]domain.Bookmark)
}

// NewBookmarkList follows changes and loads the current bookmarks.
// Subscribing first means a change committed during the first read still
// reaches the list.
func NewBookmarkList(store Store, changes Changes, log logger.Logger) *BookmarkList {
	l := &BookmarkList{
		store:  store,
		logger: log,
	}
	l.sub = changes.Subscribe(l.Refresh)
	l.Refresh()
	return l
}

// Refresh re-reads the store and notifies the OnUpdate hook
func (l *BookmarkList) Refresh() {
	l.mu.Lock()
	ticket := l.reads.begin()
	l.mu.Unlock()

	items := l.store.List()

	l.mu.Lock()
	if !l.reads.accept(ticket) {
		// a later read already landed
		l.mu.Unlock()
		return
	}
	l.items = items
	l.lastRefresh = time.Now()
	hook := l.onUpdate
	l.mu.Unlock()

	l.logger.Debug("bookmark list refreshed",
		logger.Int("items", len(items)))

	if hook != nil {
		hook(copyBookmarks(items))
	}
}

// Items returns a copy of the cached list, most recently saved first
func (l *BookmarkList) Items() []domain.Bookmark {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return copyBookmarks(l.items)
}

// IsEmpty drives the "no bookmarks yet" state
func (l *BookmarkList) IsEmpty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.items) == 0
}

// LastRefresh returns when the cache was last rebuilt
func (l *BookmarkList) LastRefresh() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.lastRefresh
}

// OnUpdate registers a hook called with the new items after every refresh
func (l *BookmarkList) OnUpdate(fn func([]domain.Bookmark)) {
	l.mu.Lock()
	l.onUpdate = fn
	l.mu.Unlock()
}

// Close stops following changes
func (l *BookmarkList) Close() {
	l.sub.Unsubscribe()
}

func copyBookmarks(in []domain.Bookmark) []domain.Bookmark {
	out := make([]domain.Bookmark, len(in))
	copy(out, in)
	return out
}
