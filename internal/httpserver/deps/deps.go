package deps

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MrSnakeDoc/kompas/internal/broadcast"
	"github.com/MrSnakeDoc/kompas/internal/domain"
	"github.com/MrSnakeDoc/kompas/internal/logger"
	"github.com/MrSnakeDoc/kompas/internal/viewmodel"
)

// BookmarkStore is what the bookmark endpoints call
type BookmarkStore interface {
	Add(article domain.Article)
	Remove(identifier string)
	IsBookmarked(identifier string) bool
	List() []domain.Bookmark
	Count() int
	Ping(ctx context.Context) error
}

// Changes is the broadcaster as seen by the event stream
type Changes interface {
	SubscribeContext(ctx context.Context, fn func()) *broadcast.Subscription
	Len() int
}

// FeedStatus reports the last feed reload attempt
type FeedStatus interface {
	Status() (time.Time, error)
}

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	AllowedHosts    []string                // Host headers allowed on ops endpoints
	AllowedCIDRS    []string                // IPs allowed on ops endpoints
	TrustProxy      bool                    // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateLimitPerMin int                     // bookmark writes per client IP per minute
	RateLimitBurst  int                     // bookmark write burst per client IP
	StoreBackend    string                  // "redis" | "memory"
	Store           BookmarkStore           // single source of truth for bookmarks
	Changes         Changes                 // bookmark change pulses
	BookmarkList    *viewmodel.BookmarkList // cached bookmarks screen
	Home            *viewmodel.Home         // feed screen with bookmark flags
	Feed            FeedStatus              // feed reloader status
	ReloadTrigger   chan struct{}           // Channel to trigger manual feed reload
	Gatherer        prometheus.Gatherer     // metrics registry
	KeepAlive       time.Duration           // SSE comment interval, defaults to 25s
}
