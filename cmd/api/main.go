package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/PratikDhanave/safedrive-service/internal/config"
	"github.com/PratikDhanave/safedrive-service/internal/httpserver"
	"github.com/PratikDhanave/safedrive-service/internal/ingest"
	"github.com/PratikDhanave/safedrive-service/internal/logging"
	"github.com/PratikDhanave/safedrive-service/internal/notify"
	"github.com/PratikDhanave/safedrive-service/internal/store"
)

const (
	shutdownTimeout     = 10 * time.Second
	schemaRetryInterval = 5 * time.Second
)

// main boots the service: config → logger → DB → schema → notifier → HTTP server.
func main() {
	configPath := flag.String("c", "", "path to an optional YAML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using process environment")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg)
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// SQLite for local runs, Postgres when DB_URL points at one. Only a
	// malformed URL fails here; an unreachable database is dialed lazily.
	db, err := store.Open(ctx, cfg.DBURL)
	if err != nil {
		logger.WithError(err).Fatal("failed to open store")
	}
	defer db.Close()

	// Create tables on startup so a fresh checkout runs without migrations.
	// When the database is down, keep serving fallbacks and retry.
	schemaCtx, cancelSchema := context.WithTimeout(ctx, schemaRetryInterval)
	err = db.EnsureSchema(schemaCtx)
	cancelSchema()
	if err != nil {
		logger.WithError(err).Error("failed to ensure schema, retrying in background")
		go func() {
			_ = store.WaitForSchema(ctx, db, schemaRetryInterval, logger)
		}()
	}

	// Live notifications are optional; writes never depend on them.
	var pub ingest.Publisher
	if cfg.RedisAddr != "" {
		redisPub, err := notify.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.WithError(err).Warn("live notifications disabled")
		} else {
			defer redisPub.Close()
			pub = redisPub
		}
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddress(),
		Handler:           httpserver.NewRouter(cfg, db, pub, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("server terminated")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
	logger.Info("server stopped")
}
