// Package app wires the bookmark core, the feed screens and the HTTP surface.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/kompas/internal/bookmark"
	"github.com/MrSnakeDoc/kompas/internal/broadcast"
	"github.com/MrSnakeDoc/kompas/internal/config"
	"github.com/MrSnakeDoc/kompas/internal/feed"
	"github.com/MrSnakeDoc/kompas/internal/httpserver"
	"github.com/MrSnakeDoc/kompas/internal/httpserver/deps"
	"github.com/MrSnakeDoc/kompas/internal/index"
	"github.com/MrSnakeDoc/kompas/internal/logger"
	"github.com/MrSnakeDoc/kompas/internal/mainloop"
	"github.com/MrSnakeDoc/kompas/internal/metrics"
	"github.com/MrSnakeDoc/kompas/internal/redis"
	"github.com/MrSnakeDoc/kompas/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/kompas/internal/store/redis"
	"github.com/MrSnakeDoc/kompas/internal/utils"
	"github.com/MrSnakeDoc/kompas/internal/version"
	"github.com/MrSnakeDoc/kompas/internal/viewmodel"
)

type App struct {
	cfg          *config.Config
	logger       logger.Logger
	server       *httpserver.Server
	redisClient  *goredis.Client
	loop         *mainloop.Loop
	store        *bookmark.Store
	bookmarkList *viewmodel.BookmarkList
	home         *viewmodel.Home
	reloader     *scheduler.FeedReloader
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewCollector(reg)

	repo, redisClient := openRepository(cfg, loggerClient)

	// Observers run on the UI loop, never on the caller of Add/Remove.
	loop := mainloop.New(loggerClient.With(logger.String("component", "mainloop")))
	changes := broadcast.New(loop, loggerClient, rec)

	store := bookmark.New(repo, changes, loggerClient.With(logger.String("component", "bookmarks")), rec, cfg.StoreTimeout)

	list := viewmodel.NewBookmarkList(store, changes, loggerClient)
	home := viewmodel.NewHome(store, changes, loggerClient)

	reloadTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewFeedReloader(
		feedSource(cfg),
		home,
		loggerClient,
		rec,
		cfg.ReloadInterval,
		reloadTrigger,
	)

	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		RateLimitPerMin: cfg.RateLimitPerMin,
		RateLimitBurst:  cfg.RateLimitBurst,
		StoreBackend:    cfg.StoreBackend,
		Store:           store,
		Changes:         changes,
		BookmarkList:    list,
		Home:            home,
		Feed:            reloader,
		ReloadTrigger:   reloadTrigger,
		Gatherer:        reg,
	}

	return &App{
		cfg:          cfg,
		logger:       loggerClient,
		server:       httpserver.New(cfg, loggerClient, d),
		redisClient:  redisClient,
		loop:         loop,
		store:        store,
		bookmarkList: list,
		home:         home,
		reloader:     reloader,
	}
}

// openRepository picks the bookmark backend. Redis is fail-fast: without it
// no bookmark can be saved, so the process exits.
func openRepository(cfg *config.Config, log logger.Logger) (bookmark.Repository, *goredis.Client) {
	if cfg.StoreBackend == config.BackendMemory {
		log.Warn("using in-memory bookmark store, bookmarks will not survive a restart")
		return index.NewMemoryIndex(), nil
	}

	client, err := redis.Connect(context.Background(), redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, log)
	if err != nil {
		log.Fatal("failed to connect to redis", logger.Error(err))
	}
	log.Info("redis bookmark store initialized")

	return redisstore.NewStore(client), client
}

func feedSource(cfg *config.Config) feed.Source {
	if cfg.FeedFile != "" {
		return feed.NewFileSource(cfg.FeedFile)
	}
	return feed.NewHTTPSource(cfg.FeedURL, cfg.FeedTimeout)
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting %s on %s", version.String(), a.cfg.ListenPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The loop outlives ctx so shutdown can still drain it.
	a.loop.Start(context.Background())

	a.reloader.Start(ctx)
	a.logger.Info("feed reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	a.bookmarkList.Close()
	a.home.Close()
	a.store.Close()

	if err := a.loop.Drain(shutdownCtx); err != nil {
		a.logger.Warn("ui loop not drained before shutdown", logger.Error(err))
	}
	a.loop.Stop()

	if a.redisClient != nil {
		utils.MustClose(a.redisClient, "redis", a.logger)
	}

	if runErr != nil {
		return runErr
	}
	a.logger.Info("✅ Kompas stopped cleanly")
	return nil
}
