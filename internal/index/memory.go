package index

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/kompas/internal/domain"
)

// MemoryIndex keeps bookmarks in process memory.
// It backs the store when KOMPAS_STORE_BACKEND=memory and in tests.
// Nothing survives a restart.
type MemoryIndex struct {
	mu         sync.RWMutex
	bookmarks  map[string]domain.Bookmark // Identifier -> Bookmark
	lastChange time.Time
}

// NewMemoryIndex creates an empty memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		bookmarks: make(map[string]domain.Bookmark),
	}
}

// Exists reports whether a bookmark with this identifier is stored
func (idx *MemoryIndex) Exists(_ context.Context, identifier string) (bool, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	_, ok := idx.bookmarks[identifier]
	return ok, nil
}

// Insert stores a bookmark, replacing any row with the same identifier
func (idx *MemoryIndex) Insert(_ context.Context, bookmark domain.Bookmark) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.bookmarks[bookmark.Identifier] = bookmark
	idx.lastChange = time.Now()
	return nil
}

// Delete removes the bookmark with this identifier and returns how many rows went away
func (idx *MemoryIndex) Delete(_ context.Context, identifier string) (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.bookmarks[identifier]; !ok {
		return 0, nil
	}
	delete(idx.bookmarks, identifier)
	idx.lastChange = time.Now()
	return 1, nil
}

// List returns copies of all bookmarks, most recently saved first
func (idx *MemoryIndex) List(_ context.Context) ([]domain.Bookmark, error) {
	idx.mu.RLock()
	bookmarks := make([]domain.Bookmark, 0, len(idx.bookmarks))
	for _, bookmark := range idx.bookmarks {
		bookmarks = append(bookmarks, bookmark)
	}
	idx.mu.RUnlock()

	domain.SortBySavedAtDesc(bookmarks)
	return bookmarks, nil
}

// Count returns the number of stored bookmarks
func (idx *MemoryIndex) Count(_ context.Context) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.bookmarks), nil
}

// Ping always succeeds; memory is always reachable.
func (idx *MemoryIndex) Ping(_ context.Context) error {
	return nil
}

// LastChange returns the time of the last insert or delete
func (idx *MemoryIndex) LastChange() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastChange
}
