// Package api собирает HTTP-приложение платформы: маршруты, сервисы и сервер.
package api

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/content-platform/internal/access"
	"github.com/magabrotheeeer/content-platform/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/content-platform/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/content-platform/internal/http/handlers/content/create"
	"github.com/magabrotheeeer/content-platform/internal/http/handlers/content/list"
	"github.com/magabrotheeeer/content-platform/internal/http/handlers/content/read"
	contentremove "github.com/magabrotheeeer/content-platform/internal/http/handlers/content/remove"
	"github.com/magabrotheeeer/content-platform/internal/http/handlers/content/slug"
	"github.com/magabrotheeeer/content-platform/internal/http/handlers/content/update"
	eventregister "github.com/magabrotheeeer/content-platform/internal/http/handlers/events/register"
	"github.com/magabrotheeeer/content-platform/internal/http/handlers/health"
	"github.com/magabrotheeeer/content-platform/internal/http/handlers/payment/webhook"
	"github.com/magabrotheeeer/content-platform/internal/http/handlers/subscription/checkout"
	"github.com/magabrotheeeer/content-platform/internal/http/handlers/subscription/me"
	subscriptionremove "github.com/magabrotheeeer/content-platform/internal/http/handlers/subscription/remove"
	"github.com/magabrotheeeer/content-platform/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/content-platform/internal/services/auth"
	contentservice "github.com/magabrotheeeer/content-platform/internal/services/content"
	subscriptionservice "github.com/magabrotheeeer/content-platform/internal/services/subscription"
)

// Services — зависимости обработчиков.
type Services struct {
	Auth          *authservice.AuthService
	Content       *contentservice.ContentService
	Subscriptions *subscriptionservice.SubscriptionService
	Policy        *access.Policy
	Health        health.Checker
}

// RouteOptions — параметры маршрутизации из конфига.
type RouteOptions struct {
	WebhookSecret string
	RateLimit     float64
	RateBurst     int
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services, opts RouteOptions) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, opts.RateLimit, opts.RateBurst))

		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)
		r.Get("/health", health.New(logger, svc.Health).ServeHTTP)

		// Webhook провайдера проверяется подписью, а не JWT
		r.Post("/payments/webhook", webhook.New(logger, svc.Subscriptions, opts.WebhookSecret).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.PrincipalMiddleware(svc.Auth, logger))

			// Чтение доступно анонимно, доступ решается уровнем подписки
			r.Get("/content", list.New(logger, svc.Content).ServeHTTP)
			r.Get("/content/{id}", read.New(logger, svc.Content).ServeHTTP)
			r.Get("/content/slug/{slug}", slug.New(logger, svc.Content).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireAuthenticated(logger))
				r.Post("/events/{id}/registrations", eventregister.New(logger, svc.Content).ServeHTTP)
				r.Post("/subscriptions/checkout", checkout.New(logger, svc.Subscriptions).ServeHTTP)
				r.Get("/subscriptions/me", me.New(logger, svc.Subscriptions).ServeHTTP)
				r.Delete("/subscriptions/{id}", subscriptionremove.New(logger, svc.Subscriptions).ServeHTTP)
			})

			r.With(middlewarectx.RequirePrivileged(svc.Policy, "content.create")).
				Post("/content", create.New(logger, svc.Content).ServeHTTP)
			r.With(middlewarectx.RequirePrivileged(svc.Policy, "content.update")).
				Put("/content/{id}", update.New(logger, svc.Content).ServeHTTP)
			r.With(middlewarectx.RequirePrivileged(svc.Policy, "content.delete")).
				Delete("/content/{id}", contentremove.New(logger, svc.Content).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
