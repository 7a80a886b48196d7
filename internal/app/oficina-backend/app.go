// Package oficinabackend собирает основное HTTP-приложение: хранилище,
// миграции, кэш, сервисы и сервер с маршрутами.
package oficinabackend

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/oficinacloud/oficina-backend/internal/cache"
	"github.com/oficinacloud/oficina-backend/internal/config"
	"github.com/oficinacloud/oficina-backend/internal/lib/jwt"
	"github.com/oficinacloud/oficina-backend/internal/migrations"
	authservice "github.com/oficinacloud/oficina-backend/internal/services/auth"
	billingservice "github.com/oficinacloud/oficina-backend/internal/services/billing"
	entitlementservice "github.com/oficinacloud/oficina-backend/internal/services/entitlement"
	planservice "github.com/oficinacloud/oficina-backend/internal/services/plan"
	subscriptionservice "github.com/oficinacloud/oficina-backend/internal/services/subscription"
	workshopservice "github.com/oficinacloud/oficina-backend/internal/services/workshop"
	"github.com/oficinacloud/oficina-backend/internal/storage/repository"
)

// App представляет основное HTTP-приложение.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New создает приложение: подключает хранилище и кэш, применяет миграции,
// собирает сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	entitlementService := entitlementservice.NewService(db, cacheRedis, logger, cfg.Entitlement)
	authService := authservice.NewService(db, jwtMaker, logger)
	billingService := billingservice.NewService(db, entitlementService, logger)
	planService := planservice.NewService(db, cacheRedis, logger, cfg.Entitlement.CacheTTL)
	workshopService := workshopservice.NewService(db, entitlementService, logger)
	subscriptionService := subscriptionservice.NewService(db, entitlementService, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, jwtMaker, &Services{
		Auth:         authService,
		Entitlement:  entitlementService,
		Billing:      billingService,
		Plan:         planService,
		Workshop:     workshopService,
		Subscription: subscriptionService,
		Storage:      db,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
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
		_ = a.db.DB.Close()
		return err
	}
}
