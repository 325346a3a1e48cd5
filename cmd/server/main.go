package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/rink-sequences/internal/cache"
	"github.com/DoyleJ11/rink-sequences/internal/config"
	"github.com/DoyleJ11/rink-sequences/internal/dataapi"
	"github.com/DoyleJ11/rink-sequences/internal/httpapi"
	"github.com/DoyleJ11/rink-sequences/internal/hub"
	"github.com/DoyleJ11/rink-sequences/internal/logging"
	"github.com/DoyleJ11/rink-sequences/internal/session"
	"github.com/DoyleJ11/rink-sequences/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (default: $CONFIG_FILE)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := dataapi.NewClient(dataapi.ClientConfig{
		BaseURL: cfg.Data.URL,
		Timeout: cfg.Data.HTTPTimeout,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	var cacheStore cache.Store = cache.NewMemoryStore()
	if cfg.Data.RedisURL != "" {
		rs, err := cache.NewRedisStoreFromURL(ctx, cfg.Data.RedisURL, "rink:")
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rs.Close()
		cacheStore = rs
		logger.Info("response cache: redis")
	}
	fetcher := cache.NewCachedFetcher(client, cacheStore, cfg.Data.CacheTTL, logger)

	sessionCfg := session.Config{
		Rules:        cfg.Rules(),
		Fetcher:      fetcher,
		Logger:       logger,
		FetchTimeout: cfg.Data.HTTPTimeout,
		IdleTimeout:  cfg.Server.SessionIdle,
	}

	opts := httpapi.Options{Logger: logger, CORSOrigins: cfg.Server.CORSOrigins}
	if cfg.Store.DatabaseURL != "" {
		st, err := store.Open(cfg.Store.DatabaseURL)
		if err != nil {
			return err
		}
		defer st.Close()
		sessionCfg.Recorder = st
		opts.History = st
		logger.Info("transition log enabled")
	}

	h := hub.NewHub(ctx, sessionCfg)

	// Build the router *with* the hub injected
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpapi.SetupRoutes(h, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("data_url", cfg.Data.URL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// the hub stops its sessions when ctx is cancelled
	return server.Shutdown(shutdownCtx)
}
