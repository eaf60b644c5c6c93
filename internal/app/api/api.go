package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	_ "github.com/magabrotheeeer/content-platform/docs"
	"github.com/magabrotheeeer/content-platform/internal/access"
	"github.com/magabrotheeeer/content-platform/internal/cache"
	"github.com/magabrotheeeer/content-platform/internal/config"
	"github.com/magabrotheeeer/content-platform/internal/hooks"
	"github.com/magabrotheeeer/content-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/content-platform/internal/lib/sl"
	"github.com/magabrotheeeer/content-platform/internal/migrations"
	"github.com/magabrotheeeer/content-platform/internal/models"
	"github.com/magabrotheeeer/content-platform/internal/paymentprovider"
	authservice "github.com/magabrotheeeer/content-platform/internal/services/auth"
	contentservice "github.com/magabrotheeeer/content-platform/internal/services/content"
	subscriptionservice "github.com/magabrotheeeer/content-platform/internal/services/subscription"
	"github.com/magabrotheeeer/content-platform/internal/storage/repository"
)

// App — HTTP-приложение API.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New подключает хранилища, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.api.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err = migrations.Run(db.DB, cfg.MigrationsPath, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	provider := paymentprovider.NewClient(cfg.ShopID, cfg.SecretKey, cfg.APIURL)

	registry := hooks.NewRegistry[models.Subscription]()
	registry.Register(subscriptionservice.NewEntitlementDowngrade(db, db, logger))

	services := Services{
		Auth:          authservice.NewAuthService(db, jwtMaker, cacheRedis, logger),
		Content:       contentservice.NewContentService(db, cacheRedis, logger),
		Subscriptions: subscriptionservice.NewSubscriptionService(db, db, provider, cacheRedis, registry, cfg.Plans, logger),
		Policy:        access.NewPolicy(logger),
		Health:        db,
	}

	if cfg.WebhookSecret == "" {
		logger.Warn("payment webhook secret is empty, webhook requests will be rejected")
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, services, RouteOptions{
		WebhookSecret: cfg.WebhookSecret,
		RateLimit:     cfg.RateLimit,
		RateBurst:     cfg.RateBurst,
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
		cache:  cacheRedis,
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
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
