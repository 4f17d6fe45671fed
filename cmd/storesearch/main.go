package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storesearch/internal/config"
	"github.com/kailas-cloud/storesearch/internal/db"
	"github.com/kailas-cloud/storesearch/internal/db/memory"
	dbRedis "github.com/kailas-cloud/storesearch/internal/db/redis"
	logpkg "github.com/kailas-cloud/storesearch/internal/logger"
	"github.com/kailas-cloud/storesearch/internal/metrics"
	"github.com/kailas-cloud/storesearch/internal/repository/favorites"
	chiTransport "github.com/kailas-cloud/storesearch/internal/transport/chi"
	"github.com/kailas-cloud/storesearch/internal/transport/remote"
	"github.com/kailas-cloud/storesearch/internal/usecase/gateway"
	healthuc "github.com/kailas-cloud/storesearch/internal/usecase/health"
	"github.com/kailas-cloud/storesearch/internal/usecase/navindex"
	"github.com/kailas-cloud/storesearch/internal/usecase/palette"
	"github.com/kailas-cloud/storesearch/internal/usecase/query"
	"github.com/kailas-cloud/storesearch/internal/usecase/spell"
	"github.com/kailas-cloud/storesearch/internal/usecase/synonym"
	"github.com/kailas-cloud/storesearch/internal/usecase/tablefilter"
	"github.com/kailas-cloud/storesearch/internal/version"
	"github.com/kailas-cloud/storesearch/internal/vocabulary"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting storesearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("built", version.Date),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("search_backend", cfg.RemoteSearch.BaseURL),
	)

	vocab, err := vocabulary.Load(vocabulary.Paths{
		Dictionary: cfg.Vocabulary.Dictionary,
		Synonyms:   cfg.Vocabulary.Synonyms,
		Nav:        cfg.Vocabulary.Nav,
		Access:     cfg.Vocabulary.Access,
	})
	if err != nil {
		logger.Fatal("Failed to load vocabulary", zap.Error(err))
	}
	logger.Info("Vocabulary loaded",
		zap.Int("dictionary_words", vocab.Dictionary.Len()),
		zap.Int("synonym_keys", vocab.Synonyms.Len()),
		zap.Strings("roles", vocab.Access.RoleNames()),
	)

	// Favorites/recents store
	var store db.Store
	switch cfg.Database.Driver {
	case config.DriverRedis:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Database.Addrs,
			Password:   cfg.Database.Password,
			Standalone: cfg.Database.Standalone,
		})
	case config.DriverMemory:
		store = memory.NewStore()
	default:
		logger.Fatal("Unknown database driver", zap.String("driver", cfg.Database.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.Register()

	// Query pipeline
	processor := query.New(spell.New(vocab.Dictionary), synonym.New(vocab.Synonyms))
	catalog := navindex.NewCatalog(vocab.Nav, vocab.Access, logger)
	favStore := favorites.New(store, cfg.Storage.KeyPrefix, cfg.Storage.RecentsLimit)

	// Remote search: one shared client, one gateway per palette session
	searchClient := remote.NewClient(&remote.Config{
		BaseURL: cfg.RemoteSearch.BaseURL,
		Path:    cfg.RemoteSearch.Path,
		Token:   cfg.RemoteSearch.Token,
		Limit:   cfg.RemoteSearch.Limit,
		Timeout: cfg.RemoteSearch.Timeout(),
		Logger:  logger,
	})
	gatewayOpts := gateway.Options{
		Debounce:     cfg.RemoteSearch.Debounce(),
		MinTermRunes: cfg.RemoteSearch.MinTermRunes,
		Logger:       logger,
	}
	newGateway := func(onOutcome gateway.Callback) palette.RemoteGateway {
		return gateway.New(searchClient, onOutcome, gatewayOpts)
	}

	sessions := palette.NewManager(processor, catalog, favStore, newGateway, logger).
		WithIdleTimeout(cfg.Palette.SessionIdle())
	evictCtx, stopEviction := context.WithCancel(ctx)
	defer stopEviction()
	go sessions.RunEviction(evictCtx, cfg.Palette.EvictEvery())
	healthSvc := healthuc.New(store, searchClient)

	server := chiTransport.NewServer(
		processor, catalog, sessions, tablefilter.NewMatcher(vocab.Synonyms), healthSvc, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	chiTransport.Handler(server, r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	// Cancels every pending debounce timer and in-flight search.
	sessions.CloseAll()

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", chi.RouteContext(r.Context()).RoutePattern()),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
