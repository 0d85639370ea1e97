package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xaenox/moodlog/internal/analytics"
	"github.com/xaenox/moodlog/internal/api"
	"github.com/xaenox/moodlog/internal/bus"
	"github.com/xaenox/moodlog/internal/classifier"
	"github.com/xaenox/moodlog/internal/metrics"
	"github.com/xaenox/moodlog/internal/server"
	"github.com/xaenox/moodlog/internal/storage"
	"github.com/xaenox/moodlog/internal/web"
	"github.com/xaenox/moodlog/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", *configPath))
	}

	// Initialize storage
	store, err := newStorage(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer store.Close()

	// Initialize classifier. A load failure leaves the service running in
	// degraded mode: "/" stays up, /query fails fast with 503.
	clf := newClassifier(cfg.OpenAI, logger)

	// Initialize event bus
	events, err := bus.New(cfg.Bus)
	if err != nil {
		logger.Warn("Failed to initialize event bus, falling back to in-memory", zap.Error(err))
		events = bus.NewMemoryBus()
	}
	defer events.Close()

	// Initialize metrics, with optional Redis persistence
	var metricsStore metrics.Storage
	if cfg.Metrics.RedisURL != "" {
		metricsStore, err = metrics.NewRedisStorage(cfg.Metrics.RedisURL)
		if err != nil {
			logger.Warn("Failed to connect metrics storage, counters will not persist", zap.Error(err))
			metricsStore = nil
		} else {
			defer metricsStore.Close()
		}
	}
	collector := metrics.NewCollector(metricsStore, logger)

	// Build handlers
	apiHandler := api.NewHandler(store, clf, events, collector, logger)
	var webHandler *web.Handler
	if cfg.Dashboard.Enabled {
		reader := analytics.NewReader(store, logger)
		webHandler = web.NewHandler(reader, events, logger)
	}

	srv := server.New(server.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		RateLimit:       cfg.Server.RateLimit,
		RateBurst:       cfg.Server.RateBurst,
	}, apiHandler, webHandler, collector, logger)

	// Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		return srv.Stop(context.Background())
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}

func newStorage(cfg config.DatabaseConfig, logger *zap.Logger) (storage.Storage, error) {
	if cfg.UseInMemory {
		logger.Info("Using in-memory storage")
		return storage.NewMemoryStorage(), nil
	}

	switch cfg.Driver {
	case "sqlite":
		logger.Info("Using SQLite storage", zap.String("path", cfg.Path))
		return storage.NewSQLiteStorage(cfg.Path)
	default:
		logger.Info("Using PostgreSQL storage")
		return storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			DBName:   cfg.DBName,
			SSLMode:  cfg.SSLMode,
		})
	}
}

func newClassifier(cfg config.OpenAIConfig, logger *zap.Logger) classifier.Classifier {
	if cfg.APIKey == "" {
		logger.Info("No inference API key configured, using lexicon classifier")
		return classifier.NewLexiconClassifier()
	}

	clf := classifier.NewOpenAIClassifier(
		cfg.APIKey,
		cfg.BaseURL,
		cfg.Model,
		cfg.MaxTokens,
		cfg.Temperature,
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := clf.Ping(ctx); err != nil {
		logger.Error("Model loading failed, API will serve 503 for /query", zap.Error(err))
		return nil
	}

	logger.Info("Model loaded successfully", zap.String("model", cfg.Model))
	return clf
}
