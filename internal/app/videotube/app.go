// Package videotube собирает HTTP-сервис учётных записей видеоплатформы.
package videotube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/magabrotheeeer/videotube/internal/cache"
	"github.com/magabrotheeeer/videotube/internal/config"
	"github.com/magabrotheeeer/videotube/internal/events"
	"github.com/magabrotheeeer/videotube/internal/http/middlewarectx"
	"github.com/magabrotheeeer/videotube/internal/lib/jwt"
	"github.com/magabrotheeeer/videotube/internal/lib/sl"
	"github.com/magabrotheeeer/videotube/internal/media"
	"github.com/magabrotheeeer/videotube/internal/metrics"
	"github.com/magabrotheeeer/videotube/internal/migrations"
	services "github.com/magabrotheeeer/videotube/internal/services/users"
	"github.com/magabrotheeeer/videotube/internal/storage"
)

const shutdownTimeout = 15 * time.Second

type publisher interface {
	services.EventPublisher
	Close() error
}

// App владеет HTTP-сервером и соединениями с внешними сервисами.
type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *storage.Storage
	cache     *cache.Cache
	publisher publisher
}

// New подключает зависимости, применяет миграции и строит роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "videotube.New"

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.Redis)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	uploader, err := media.New(ctx, logger, cfg.MediaStorage)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pub, err := newPublisher(ctx, cfg.RabbitMQ, logger)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	tokens := jwt.NewJWTMaker(
		cfg.JWTToken.AccessSecret, cfg.JWTToken.AccessTTL,
		cfg.JWTToken.RefreshSecret, cfg.JWTToken.RefreshTTL,
	)

	userService := services.NewUserService(logger, db, tokens, uploader, cacheRedis, pub, m, services.Options{
		ProfileTTL:           cfg.Cache.ChannelProfileTTL,
		CleanupReplacedMedia: cfg.MediaStorage.CleanupReplaced,
	})

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:      logger,
		Users:       userService,
		Metrics:     m,
		Limiter:     middlewarectx.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		DB:          db,
		Cache:       cacheRedis,
		TempDir:     cfg.Uploads.TempDir,
		MaxFormSize: cfg.HTTPServer.MaxUploadSize,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server:    srv,
		logger:    logger,
		db:        db,
		cache:     cacheRedis,
		publisher: pub,
	}, nil
}

func newPublisher(ctx context.Context, cfg config.RabbitMQ, logger *slog.Logger) (publisher, error) {
	if cfg.URL == "" {
		logger.Info("rabbitmq url is empty, account events are disabled")
		return events.Noop{}, nil
	}
	conn, err := events.Connect(ctx, cfg.URL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, err
	}
	pub, err := events.NewPublisher(conn, cfg.Exchange)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return pub, nil
}

// Run обслуживает запросы до отмены ctx, затем плавно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

func (a *App) close() {
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("failed to close event publisher", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("failed to close redis client", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
