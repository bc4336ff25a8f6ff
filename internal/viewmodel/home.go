package viewmodel

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/kompas/internal/broadcast"
	"github.com/MrSnakeDoc/kompas/internal/domain"
	"github.com/MrSnakeDoc/kompas/internal/feed"
	"github.com/MrSnakeDoc/kompas/internal/logger"
)

// Row is one bookmarkable article of the home feed
type Row struct {
	Section      feed.SectionType `json:"section"`
	SectionTitle string           `json:"section_title,omitempty"`
	Identifier   string           `json:"identifier"`
	Article      domain.Article   `json:"article"`
	Bookmarked   bool             `json:"bookmarked"`
}

// Home backs the feed screen: the latest sections plus the bookmark flag of
// every article they contain.
type Home struct {
	store  Store
	sub    *broadcast.Subscription
	logger logger.Logger

	mu         sync.RWMutex
	sections   []feed.HomeSection
	bookmarked map[string]bool
	reads      readOrder
	lastErr    error
	lastLoad   time.Time
}

// NewHome creates an empty feed view that follows bookmark changes
func NewHome(store Store, changes Changes, log logger.Logger) *Home {
	h := &Home{
		store:      store,
		logger:     log,
		bookmarked: make(map[string]bool),
	}
	h.sub = changes.Subscribe(h.refreshBookmarks)
	h.refreshBookmarks()
	return h
}

// SetSections replaces the feed content and clears the last error.
// The bookmark flags are re-read too, unless a pulse already delivered
// fresher ones while the read was in flight.
func (h *Home) SetSections(sections []feed.HomeSection) {
	ticket, flags := h.bookmarkSet()

	h.mu.Lock()
	h.sections = sections
	if h.reads.accept(ticket) {
		h.bookmarked = flags
	}
	h.lastErr = nil
	h.lastLoad = time.Now()
	h.mu.Unlock()

	h.logger.Debug("home sections updated",
		logger.Int("sections", len(sections)))
}

// SetError records a failed load. The previous sections stay on screen.
func (h *Home) SetError(err error) {
	h.mu.Lock()
	h.lastErr = err
	h.mu.Unlock()
}

// Sections returns the current sections
func (h *Home) Sections() []feed.HomeSection {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]feed.HomeSection, len(h.sections))
	copy(out, h.sections)
	return out
}

// Rows flattens the sections into bookmarkable articles, in feed order
func (h *Home) Rows() []Row {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rows := make([]Row, 0)
	for _, section := range h.sections {
		for _, article := range section.Articles() {
			id := article.Identifier()
			rows = append(rows, Row{
				Section:      section.Type,
				SectionTitle: section.Title,
				Identifier:   id,
				Article:      article,
				Bookmarked:   h.bookmarked[id],
			})
		}
	}
	return rows
}

// IsBookmarked returns the cached flag for identifier
func (h *Home) IsBookmarked(identifier string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.bookmarked[identifier]
}

// ToggleBookmark flips the row's flag optimistically and updates the store
func (h *Home) ToggleBookmark(article domain.Article) <-chan struct{} {
	id := article.Identifier()

	h.mu.Lock()
	next, done := toggle(h.store, article, h.bookmarked[id])
	h.bookmarked[id] = next
	h.mu.Unlock()

	return done
}

// LastError returns the error of the last failed load, nil after a success
func (h *Home) LastError() error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.lastErr
}

// LastLoad returns when sections were last replaced
func (h *Home) LastLoad() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.lastLoad
}

// Close stops following changes
func (h *Home) Close() {
	h.sub.Unsubscribe()
}

func (h *Home) refreshBookmarks() {
	ticket, flags := h.bookmarkSet()

	h.mu.Lock()
	if h.reads.accept(ticket) {
		h.bookmarked = flags
	}
	h.mu.Unlock()
}

// bookmarkSet reads every saved identifier in one store call
func (h *Home) bookmarkSet() (uint64, map[string]bool) {
	h.mu.Lock()
	ticket := h.reads.begin()
	h.mu.Unlock()

	list := h.store.List()
	flags := make(map[string]bool, len(list))
	for _, b := range list {
		flags[b.Identifier] = true
	}
	return ticket, flags
}
