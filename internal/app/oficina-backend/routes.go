package oficinabackend

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/oficinacloud/oficina-backend/internal/config"
	"github.com/oficinacloud/oficina-backend/internal/http/handlers/auth/login"
	"github.com/oficinacloud/oficina-backend/internal/http/handlers/auth/register"
	featurehandler "github.com/oficinacloud/oficina-backend/internal/http/handlers/entitlement/feature"
	resolvehandler "github.com/oficinacloud/oficina-backend/internal/http/handlers/entitlement/resolve"
	"github.com/oficinacloud/oficina-backend/internal/http/handlers/health"
	"github.com/oficinacloud/oficina-backend/internal/http/handlers/payment/asaaswebhook"
	"github.com/oficinacloud/oficina-backend/internal/http/handlers/payment/stripewebhook"
	planlist "github.com/oficinacloud/oficina-backend/internal/http/handlers/plan/list"
	planupsert "github.com/oficinacloud/oficina-backend/internal/http/handlers/plan/upsert"
	"github.com/oficinacloud/oficina-backend/internal/http/handlers/subscription/adminupdate"
	subscriptionread "github.com/oficinacloud/oficina-backend/internal/http/handlers/subscription/read"
	workshopcreate "github.com/oficinacloud/oficina-backend/internal/http/handlers/workshop/create"
	"github.com/oficinacloud/oficina-backend/internal/http/middlewarectx"
	"github.com/oficinacloud/oficina-backend/internal/lib/jwt"
	authservice "github.com/oficinacloud/oficina-backend/internal/services/auth"
	billingservice "github.com/oficinacloud/oficina-backend/internal/services/billing"
	entitlementservice "github.com/oficinacloud/oficina-backend/internal/services/entitlement"
	planservice "github.com/oficinacloud/oficina-backend/internal/services/plan"
	subscriptionservice "github.com/oficinacloud/oficina-backend/internal/services/subscription"
	workshopservice "github.com/oficinacloud/oficina-backend/internal/services/workshop"
	"github.com/oficinacloud/oficina-backend/internal/storage/repository"
)

// Services собирает сервисы, используемые маршрутами.
type Services struct {
	Auth         *authservice.Service
	Entitlement  *entitlementservice.Service
	Billing      *billingservice.Service
	Plan         *planservice.Service
	Workshop     *workshopservice.Service
	Subscription *subscriptionservice.Service
	Storage      *repository.Storage
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, jwtMaker jwt.Maker, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	limiter := rate.NewLimiter(10, 30)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		r.Get("/plans", planlist.New(logger, s.Plan).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(logger, jwtMaker))
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))
			r.Get("/entitlement", resolvehandler.New(logger, s.Entitlement).ServeHTTP)
			r.Get("/entitlement/features/{feature}", featurehandler.New(logger, s.Entitlement).ServeHTTP)
			r.Get("/subscriptions/current", subscriptionread.New(logger, s.Subscription).ServeHTTP)
			r.Post("/workshops", workshopcreate.New(logger, s.Workshop).ServeHTTP)

			// Административные конечные точки
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireAdmin(logger))
				r.Post("/admin/plans", planupsert.New(logger, s.Plan).ServeHTTP)
				r.Put("/admin/subscriptions/{useruid}", adminupdate.New(logger, s.Subscription).ServeHTTP)
			})
		})

		// Webhook конечные точки (аутентификация общим секретом провайдера)
		r.Post("/webhooks/asaas", asaaswebhook.New(logger, s.Billing, cfg.AsaasAccessToken).ServeHTTP)
		r.Post("/webhooks/stripe", stripewebhook.New(logger, s.Billing, cfg.StripeToken).ServeHTTP)
	})

	r.Get("/health", health.New(logger, s.Storage).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
