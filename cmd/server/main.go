package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"premise_fetcher/internal/config"
	"premise_fetcher/internal/dedup"
	"premise_fetcher/internal/httpapi"
	"premise_fetcher/internal/metrics"
	"premise_fetcher/internal/publisher"
	"premise_fetcher/internal/scheduler"
	"premise_fetcher/internal/service"
	"premise_fetcher/internal/source/reddit"
	"premise_fetcher/internal/source/tiktok"
	"premise_fetcher/internal/source/youtube"
	"premise_fetcher/internal/storage/memory"
	"premise_fetcher/internal/storage/postgres"
)

type stores struct {
	sources   service.SourceStore
	premises  service.PremiseStore
	niches    service.NicheStore
	txManager service.TransactionManager
	health    func(ctx context.Context) error
	close     func() error
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer st.close()

	var cache service.LinkCache
	if cfg.Redis.Enabled {
		linkCache, err := dedup.NewLinkCache(ctx, dedup.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.KeyPrefix,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer linkCache.Close()
		cache = linkCache
		logger.Info("link cache enabled", "addr", cfg.Redis.Addr)
	}

	var pub service.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	adapters, closeAdapters := buildAdapters(cfg, logger)
	defer closeAdapters()

	m := metrics.Default()

	ingestService := service.NewIngestService(st.sources, st.premises, adapters, pub, cache, m, logger)
	sourceService := service.NewSourceService(st.sources, st.premises, st.txManager, cache, adapters, logger)
	premiseService := service.NewPremiseService(st.premises, cache, logger)
	nicheService := service.NewNicheService(st.niches)

	router := httpapi.NewRouter(httpapi.Deps{
		Ingest:   ingestService,
		Sources:  sourceService,
		Premises: premiseService,
		Niches:   nicheService,
		Metrics:  m,
		Health:   st.health,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	sched := scheduler.NewScheduler(ingestService, cfg.Sync.Interval, cfg.Sync.RunTimeout, logger)
	go func() {
		if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("scheduler error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("starting premise fetcher",
		"addr", cfg.HTTP.Addr,
		"storage", cfg.Storage.Driver,
		"tiktok_mode", cfg.Platforms.TikTok.Mode,
		"youtube_enabled", cfg.Platforms.YouTube.APIKey != "",
		"sync_interval", cfg.Sync.Interval,
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server error", "error", err)
		os.Exit(1)
	}
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		store := memory.New()
		logger.Info("using in-memory storage")
		return &stores{
			sources:   store.Sources(),
			premises:  store.Premises(),
			niches:    store.Niches(),
			txManager: memory.TransactionManager{},
			close:     func() error { return nil },
		}, nil
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	logger.Info("connected to database")

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db, logger); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &stores{
		sources:   postgres.NewSourceStore(db),
		premises:  postgres.NewPremiseStore(db),
		niches:    postgres.NewNicheStore(db),
		txManager: postgres.NewTransactionManager(db),
		health:    db.PingContext,
		close:     db.Close,
	}, nil
}

// buildAdapters registers every platform. Platforms without credentials or a
// TikTok lister stay registered and report themselves as disabled on fetch.
func buildAdapters(cfg *config.Config, logger *slog.Logger) ([]service.Adapter, func()) {
	p := cfg.Platforms

	redditSource := reddit.New(reddit.Config{
		BaseURL:   p.Reddit.BaseURL,
		UserAgent: p.Reddit.UserAgent,
		Timeout:   p.Reddit.Timeout,
	}, logger)

	youtubeSource := youtube.New(youtube.Config{
		BaseURL: p.YouTube.BaseURL,
		APIKey:  p.YouTube.APIKey,
		Timeout: p.YouTube.Timeout,
	}, logger)

	closeFn := func() {}
	var lister tiktok.VideoLister
	switch p.TikTok.Mode {
	case config.TikTokSimulated:
		lister = tiktok.NewSimulatedLister()
	case config.TikTokBrowser:
		browser := tiktok.NewBrowserLister(tiktok.BrowserConfig{
			Bin:      p.TikTok.Browser.Bin,
			Headless: *p.TikTok.Browser.Headless,
			Timeout:  p.TikTok.Browser.Timeout,
			BaseURL:  p.TikTok.BaseURL,
		}, logger)
		lister = browser
		closeFn = func() {
			if err := browser.Close(); err != nil {
				logger.Warn("close browser", "error", err)
			}
		}
	}

	tiktokSource := tiktok.New(tiktok.Config{
		BaseURL:   p.TikTok.BaseURL,
		UserAgent: p.TikTok.UserAgent,
		Timeout:   p.TikTok.Timeout,
	}, lister, logger)

	return []service.Adapter{redditSource, youtubeSource, tiktokSource}, closeFn
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
