package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smartgiftfinder/giftfinder/internal/auth"
	"github.com/smartgiftfinder/giftfinder/internal/config"
	"github.com/smartgiftfinder/giftfinder/internal/database"
	"github.com/smartgiftfinder/giftfinder/internal/generator"
	"github.com/smartgiftfinder/giftfinder/internal/gifts"
	"github.com/smartgiftfinder/giftfinder/internal/httpapi"
	"github.com/smartgiftfinder/giftfinder/internal/logging"
	"github.com/smartgiftfinder/giftfinder/internal/moderation"
	"github.com/smartgiftfinder/giftfinder/internal/ratelimit"
	"github.com/smartgiftfinder/giftfinder/internal/sources"
	"github.com/smartgiftfinder/giftfinder/internal/tagging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(logging.ParseLevel(cfg.LogLevel))
	ctx := context.Background()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	// The rate limiter store is optional: without Redis every check fails
	// open, which keeps the site up at the cost of enforcement.
	var counterStore ratelimit.CounterStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Warn("Invalid REDIS_URL, rate limiting will fail open", logging.WithField("error", err.Error()))
		} else {
			if cfg.RedisPassword != "" {
				opts.Password = cfg.RedisPassword
			}
			counterStore = ratelimit.NewRedisStore(redis.NewClient(opts))
		}
	} else {
		logger.Warn("REDIS_URL not set, rate limiting will fail open")
	}
	limiter := ratelimit.New(counterStore, logger)

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go runCleanup(cleanupCtx, limiter, cfg.CleanupInterval)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTLifetime)
	authMiddleware := auth.NewMiddleware(tokens, logger)
	rateLimitMiddleware := httpapi.NewRateLimitMiddleware(limiter)
	corsMiddleware := httpapi.NewCORSMiddleware(cfg.AllowedOrigins)

	postStore := database.NewPostStore(db)
	userStore := database.NewUserStore(db)
	giftStore := database.NewGiftStore(db)

	var fetchers []sources.Fetcher
	if cfg.FeedsConfigPath != "" {
		feedsConfig, err := sources.LoadFeedsConfig(cfg.FeedsConfigPath)
		if err != nil {
			logger.Warn("Failed to load feeds config, draft generation will have no sources",
				logging.WithField("error", err.Error()))
		} else {
			fetchers = sources.BuildFetchers(feedsConfig)
		}
	}
	generatorSvc := generator.NewService(fetchers, tagging.New(), logger)
	giftsSvc := gifts.NewService(giftStore, logger)

	mux := http.NewServeMux()
	httpapi.NewBlogAPI(postStore, authMiddleware, rateLimitMiddleware, logger).RegisterRoutes(mux, corsMiddleware)
	httpapi.NewAuthAPI(userStore, tokens, authMiddleware, rateLimitMiddleware, logger).RegisterRoutes(mux, corsMiddleware)
	httpapi.NewGenerateAPI(generatorSvc, authMiddleware, rateLimitMiddleware, logger).RegisterRoutes(mux, corsMiddleware)
	httpapi.NewGiftsAPI(giftsSvc, authMiddleware, rateLimitMiddleware, logger).RegisterRoutes(mux, corsMiddleware)

	if cfg.AWSRegion != "" {
		moderator, err := moderation.NewImageModerator(ctx, cfg.AWSRegion, logger)
		if err != nil {
			logger.Warn("Image moderation unavailable, upload endpoint disabled",
				logging.WithField("error", err.Error()))
		} else {
			httpapi.NewUploadAPI(moderator, authMiddleware, rateLimitMiddleware, logger).RegisterRoutes(mux, corsMiddleware)
		}
	} else {
		logger.Warn("AWS_REGION not set, upload endpoint disabled")
	}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", logging.WithField("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("Shutting down", logging.WithField("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// runCleanup periodically trims aged-out rate limit entries. The limiter's
// correctness does not depend on this; it is hygiene for active keys.
func runCleanup(ctx context.Context, limiter *ratelimit.Limiter, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.CleanupExpired(ctx)
		}
	}
}
