// Package scheduler собирает приложение планировщика уведомлений и истечения подписок.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/content-platform/internal/cache"
	"github.com/magabrotheeeer/content-platform/internal/config"
	"github.com/magabrotheeeer/content-platform/internal/hooks"
	"github.com/magabrotheeeer/content-platform/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/content-platform/internal/lib/sl"
	"github.com/magabrotheeeer/content-platform/internal/models"
	notificationservice "github.com/magabrotheeeer/content-platform/internal/services/notification"
	schedulerservice "github.com/magabrotheeeer/content-platform/internal/services/scheduler"
	subscriptionservice "github.com/magabrotheeeer/content-platform/internal/services/subscription"
	"github.com/magabrotheeeer/content-platform/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	cron   *cron.Cron
	conn   *amqp.Connection
	ch     *amqp.Channel
	db     *repository.Storage
	cache  *cache.Cache
	logger *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for range 10 {
		if err := db.CheckDatabaseReady(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.scheduler.New"

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect RabbitMQ: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("%s: failed to setup RabbitMQ channel: %w", op, err)
	}

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("%s: failed to connect storage: %w", op, err)
	}

	if err = waitForDB(ctx, db); err != nil {
		_ = db.Close()
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("%s: cache not initialized: %w", op, err)
	}

	publisher := rabbitmq.NewPublisher(ch, rabbitmq.NotificationsExchange)
	notifications := notificationservice.NewNotificationService(db, publisher, cfg.ReminderTolerance, logger)
	schedulerService := schedulerservice.NewSchedulerService(notifications, logger)

	// Истечение подписок не обращается к платёжному провайдеру
	registry := hooks.NewRegistry[models.Subscription]()
	registry.Register(subscriptionservice.NewEntitlementDowngrade(db, db, logger))
	subscriptions := subscriptionservice.NewSubscriptionService(db, db, nil, cacheRedis, registry, cfg.Plans, logger)

	c := schedulerservice.NewCron(logger)
	specs := schedulerservice.Specs{
		Reminder: cfg.ReminderSpec,
		Feedback: cfg.FeedbackSpec,
		Expiry:   cfg.ExpirySpec,
	}
	if err = schedulerService.Register(ctx, c, specs, subscriptions); err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &App{
		cron:   c,
		conn:   conn,
		ch:     ch,
		db:     db,
		cache:  cacheRedis,
		logger: logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run запускает cron и ждёт отмены контекста.
func (a *App) Run(ctx context.Context) error {
	a.cron.Start()
	a.logger.Info("scheduler started")

	<-ctx.Done()

	a.logger.Info("shutting down scheduler service")
	// Дожидаемся завершения запущенных задач
	<-a.cron.Stop().Done()

	closeResources(a.ch, a.conn, a.logger)
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	return nil
}
