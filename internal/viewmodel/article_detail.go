package viewmodel

import (
	"sync"

	"github.com/MrSnakeDoc/kompas/internal/broadcast"
	"github.com/MrSnakeDoc/kompas/internal/domain"
	"github.com/MrSnakeDoc/kompas/internal/logger"
)

// ArticleDetail backs one article's detail screen and its bookmark icon
type ArticleDetail struct {
	article    domain.Article
	identifier string
	store      Store
	sub        *broadcast.Subscription
	logger     logger.Logger

	mu         sync.RWMutex
	bookmarked bool
	reads      readOrder
}

// NewArticleDetail reads the article's bookmark state and follows changes
func NewArticleDetail(article domain.Article, store Store, changes Changes, log logger.Logger) *ArticleDetail {
	d := &ArticleDetail{
		article:    article,
		identifier: article.Identifier(),
		store:      store,
		logger:     log,
	}
	d.sub = changes.Subscribe(d.refresh)
	d.refresh()
	return d
}

func (d *ArticleDetail) refresh() {
	d.mu.Lock()
	ticket := d.reads.begin()
	d.mu.Unlock()

	bookmarked := d.store.IsBookmarked(d.identifier)

	d.mu.Lock()
	if d.reads.accept(ticket) {
		d.bookmarked = bookmarked
	}
	d.mu.Unlock()
}

// Article returns the article shown
func (d *ArticleDetail) Article() domain.Article {
	return d.article
}

// IsBookmarked is the icon state: filled or outline
func (d *ArticleDetail) IsBookmarked() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.bookmarked
}

// ToggleBookmark flips the icon immediately and asks the store to follow.
// The next pulse replaces the optimistic value with the stored one.
func (d *ArticleDetail) ToggleBookmark() <-chan struct{} {
	d.mu.Lock()
	next, done := toggle(d.store, d.article, d.bookmarked)
	d.bookmarked = next
	d.mu.Unlock()

	d.logger.Debug("bookmark toggled",
		logger.String("identifier", d.identifier),
		logger.Bool("bookmarked", next))

	return done
}

// Close stops following changes
func (d *ArticleDetail) Close() {
	d.sub.Unsubscribe()
}
