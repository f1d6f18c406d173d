package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/z-notes/web/internal/config"
	"github.com/zhouzirui/z-notes/web/internal/handler"
	"github.com/zhouzirui/z-notes/web/internal/logger"
	"github.com/zhouzirui/z-notes/web/internal/metrics"
	"github.com/zhouzirui/z-notes/web/internal/service/api"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	log := logger.New("notes-web", cfg.Log.Level, cfg.Log.Format)
	if envErr != nil {
		log.WithError(envErr).Debug("no .env file loaded, continuing with system environment variables only")
	}

	if err := cfg.API.Validate(); err != nil {
		log.WithError(err).Fatal("notes api is not configured")
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		log.Info("prometheus metrics exposed on /metrics")
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout,
		api.WithMetrics(m),
		api.WithLogger(log.WithField("component", "api")),
	)
	log.WithField("api", cfg.API.BaseURL).Info("notes api client initialized")

	router := handler.NewRouter(cfg, client, log, m)

	startServer(ctx, log, cfg.Server, router)
}

func startServer(ctx context.Context, log *logger.Logger, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.WithField("addr", addr).Info("notes web listening")
	if err := runServer(ctx, srv); err != nil {
		log.WithError(err).Fatal("server error")
	}
	log.Info("notes web stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
