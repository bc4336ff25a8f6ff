// Package viewmodel holds the screens' cached views of bookmark state.
//
// Each view model subscribes to the change broadcaster on construction and
// re-reads the store on every pulse. Pulses arrive on the UI loop; the
// accessors are safe from any goroutine.
package viewmodel

import (
	"github.com/MrSnakeDoc/kompas/internal/broadcast"
	"github.com/MrSnakeDoc/kompas/internal/domain"
)

// Store is the part of the bookmark store the screens use
type Store interface {
	IsBookmarked(identifier string) bool
	List() []domain.Bookmark
	AddAsync(article domain.Article) <-chan struct{}
	RemoveAsync(identifier string) <-chan struct{}
}

// Changes delivers bookmark change pulses
type Changes interface {
	Subscribe(fn func()) *broadcast.Subscription
}

// toggle flips the stored state of article and returns the new optimistic
// value together with the completion channel.
func toggle(store Store, article domain.Article, bookmarked bool) (bool, <-chan struct{}) {
	if bookmarked {
		return false, store.RemoveAsync(article.Identifier())
	}
	return true, store.AddAsync(article)
}

// readOrder orders store reads so an older read never overwrites the result
// of a read that started after it. Callers hold their own lock around both
// methods.
type readOrder struct {
	issued  uint64
	applied uint64
}

// begin hands out the ticket for a read about to start
func (o *readOrder) begin() uint64 {
	o.issued++
	return o.issued
}

// accept reports whether the read holding ticket may be applied
func (o *readOrder) accept(ticket uint64) bool {
	if ticket <= o.applied {
		return false
	}
	o.applied = ticket
	return true
}
