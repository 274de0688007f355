package classbook

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/online-class-book/internal/cache"
	"github.com/magabrotheeeer/online-class-book/internal/config"
	"github.com/magabrotheeeer/online-class-book/internal/events"
	"github.com/magabrotheeeer/online-class-book/internal/lib/clock"
	"github.com/magabrotheeeer/online-class-book/internal/lib/jwt"
	"github.com/magabrotheeeer/online-class-book/internal/lib/sl"
	"github.com/magabrotheeeer/online-class-book/internal/migrations"
	authservice "github.com/magabrotheeeer/online-class-book/internal/services/auth"
	bookingservice "github.com/magabrotheeeer/online-class-book/internal/services/booking"
	slotservice "github.com/magabrotheeeer/online-class-book/internal/services/slot"
	"github.com/magabrotheeeer/online-class-book/internal/storage/repository"
)

// App собирает HTTP-сервер и все зависимости приложения.
type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *repository.Storage
	cache     *cache.Cache
	publisher *events.Publisher
}

// New инициализирует хранилище, кеш, брокер событий, сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var publisher *events.Publisher
	if cfg.RabbitMQ.URL != "" {
		publisher, err = events.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			// Брокер не обязателен для работы API, продолжаем без событий.
			logger.Warn("failed to connect to rabbitmq, events disabled", sl.Err(err))
			publisher = nil
		}
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.AccessTTL, cfg.JWTToken.RefreshTTL)
	clk := clock.System()

	auth := authservice.NewAuthService(db, jwtMaker, cacheRedis)
	slots := slotservice.NewSlotService(db, clk, logger)

	var eventSink bookingservice.EventPublisher
	if publisher != nil {
		eventSink = publisher
	}
	bookings := bookingservice.NewBookingService(db, eventSink, clk, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, auth, slots, bookings, jwtMaker)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:    srv,
		logger:    logger,
		db:        db,
		cache:     cacheRedis,
		publisher: publisher,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
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

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.publisher != nil {
			_ = a.publisher.Close()
		}
		_ = a.db.DB.Close()
		return err
	}
}
