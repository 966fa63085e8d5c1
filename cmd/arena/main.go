package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/park285/cheese-arena/internal/arena"
	appcfg "github.com/park285/cheese-arena/internal/config"
	"github.com/park285/cheese-arena/internal/httpapi"
	"github.com/park285/cheese-arena/internal/obslog"
	"go.uber.org/zap"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := obslog.InitFromEnv()
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	a, err := arena.Build(cfg, logger)
	if err != nil {
		logger.Fatal("arena_init_failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	a.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(a, logger.Named("http")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_listen", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown_signal")
	case serveErr = <-errCh:
		if serveErr != nil {
			logger.Error("http_serve_failed", zap.Error(serveErr))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http_shutdown_failed", zap.Error(err))
	}
	a.Close()
	logger.Info("arena_stopped")
	if serveErr != nil {
		os.Exit(1)
	}
}
