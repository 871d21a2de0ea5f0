package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AnshRaj112/feedback-tracker/internal/config"
	"github.com/AnshRaj112/feedback-tracker/internal/database"
	"github.com/AnshRaj112/feedback-tracker/internal/handlers"
	"github.com/AnshRaj112/feedback-tracker/internal/middleware"
	"github.com/AnshRaj112/feedback-tracker/internal/routes"
	"github.com/AnshRaj112/feedback-tracker/internal/services"
)

const shutdownTimeout = 10 * time.Second

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          cfg.Version,
			AttachStacktrace: true,
		}); err != nil {
			logger.Warn("sentry init failed, continuing without error reporting", zap.Error(err))
		} else {
			logger.Info("✅ Sentry error reporting enabled")
			defer sentry.Flush(2 * time.Second)
		}
	}

	backend, closeBackend, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer closeBackend()
	store := services.NewStore(backend, logger)

	// Redis is optional: cache, shared rate limit and feed relay.
	var redisClient *redis.Client
	if cfg.RedisURI != "" {
		client, err := database.ConnectRedis(cfg.RedisURI, logger)
		if err != nil {
			logger.Warn("Redis unavailable, continuing without cache and shared rate limit", zap.Error(err))
		} else {
			redisClient = client
			defer database.DisconnectRedis(redisClient) //nolint:errcheck
		}
	}

	var gen services.Generator
	if cfg.RemoteConfigured() {
		g, err := services.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiRPS)
		if err != nil {
			logger.Warn("Gemini client unavailable, answering locally", zap.Error(err))
		} else {
			gen = g
			logger.Info("✅ Gemini configured", zap.Strings("models", cfg.GeminiModels))
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set, questions will be answered locally")
	}

	var cache services.AnswerCache
	if redisClient != nil {
		cache = services.NewRedisAnswerCache(services.NewCacheService(redisClient), logger)
	}

	resolver := services.NewResolver(gen, services.ResolverConfig{
		Models:      cfg.GeminiModels,
		CallTimeout: cfg.GeminiTimeout,
	}, cache, logger)
	hub := services.NewFeedHub(redisClient, logger)

	opts := handlers.Options{
		Store:      store,
		Resolver:   resolver,
		Hub:        hub,
		Logger:     logger,
		AskTimeout: cfg.AskTimeout,
	}
	if cfg.CloudinaryConfigured() {
		exporter, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			logger.Warn("Failed to initialize Cloudinary, snapshot upload disabled", zap.Error(err))
		} else {
			opts.Exporter = exporter
			logger.Info("✅ Cloudinary service initialized")
		}
	} else {
		logger.Info("Cloudinary credentials not found, snapshot upload disabled")
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	if cfg.SentryDSN != "" {
		r.Use(middleware.Sentry())
	}
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		logger.Info("✅ Production security headers enabled")
	}

	var askLimiter *middleware.IPRateLimiter
	var askLimit func(http.Handler) http.Handler
	if redisClient != nil {
		askLimit = middleware.NewRedisRateLimiter(redisClient, logger).Middleware
	} else {
		askLimiter = middleware.NewAskRateLimiter()
		askLimit = askLimiter.Middleware
	}

	routes.SetupRoutes(r, handlers.New(opts), askLimit)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.AskTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("🚀 Feedback Tracker backend running",
			zap.String("addr", srv.Addr),
			zap.String("store", store.BackendName()),
			zap.Bool("remoteConfigured", resolver.RemoteConfigured()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return hub.Run(gCtx)
	})
	if askLimiter != nil {
		g.Go(func() error {
			return askLimiter.Run(gCtx)
		})
	}
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openBackend connects the configured store backend. The returned func releases it.
func openBackend(cfg *config.Config, logger *zap.Logger) (database.Backend, func(), error) {
	switch cfg.StoreBackend {
	case "", "file":
		logger.Info("✅ Using file store", zap.String("path", cfg.FeedbackFile))
		return database.NewFileBackend(cfg.FeedbackFile), func() {}, nil

	case "mongo", "mongodb":
		client, db, err := database.ConnectMongo(cfg.MongoURI, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		return database.NewMongoBackend(db), func() {
			if err := database.DisconnectMongo(client); err != nil {
				logger.Warn("MongoDB disconnect failed", zap.Error(err))
			}
		}, nil

	case "postgres", "postgresql":
		db, err := database.ConnectPostgres(cfg.PostgresURI, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		return database.NewPostgresBackend(db), func() {
			if err := database.DisconnectPostgres(db); err != nil {
				logger.Warn("PostgreSQL disconnect failed", zap.Error(err))
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q (want file, mongo or postgres)", cfg.StoreBackend)
	}
}

// migrate loads the store once, which writes a baseline or upgrades legacy data.
func migrate(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	backend, closeBackend, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	col := services.NewStore(backend, logger).Load(ctx)
	logger.Info("✅ Feedback store is current",
		zap.String("store", backend.Name()),
		zap.Int("records", len(col.Feedback)),
		zap.String("version", col.Metadata.Version),
	)
	return nil
}
