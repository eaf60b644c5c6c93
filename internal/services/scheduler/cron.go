package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/magabrotheeeer/content-platform/internal/lib/sl"
)

// Sweeper удаляет подписки с истёкшим периодом.
type Sweeper interface {
	ExpireSubscriptions(ctx context.Context) (int, error)
}

// Specs — cron-выражения задач планировщика.
type Specs struct {
	Reminder string
	Feedback string
	Expiry   string
}

// cronLogger адаптирует slog к интерфейсу cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

// NewCronLogger возвращает cron.Logger поверх slog.
func NewCronLogger(log *slog.Logger) cron.Logger {
	return cronLogger{log: log.With(slog.String("component", "cron"))}
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append([]any{sl.Err(err)}, keysAndValues...)...)
}

// NewCron создает cron в UTC с восстановлением после паники
// и пропуском запуска, пока предыдущий не завершился.
func NewCron(log *slog.Logger) *cron.Cron {
	l := NewCronLogger(log)
	return cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)
}

// Register добавляет задачи планировщика в cron. sweeper может быть nil.
func (s *SchedulerService) Register(ctx context.Context, c *cron.Cron, specs Specs, sweeper Sweeper) error {
	const op = "scheduler.Register"

	if _, err := c.AddFunc(specs.Reminder, func() { s.RunReminderTick(ctx) }); err != nil {
		return fmt.Errorf("%s: reminder spec %q: %w", op, specs.Reminder, err)
	}
	if _, err := c.AddFunc(specs.Feedback, func() { s.RunFeedbackTick(ctx) }); err != nil {
		return fmt.Errorf("%s: feedback spec %q: %w", op, specs.Feedback, err)
	}
	if sweeper == nil {
		return nil
	}
	if _, err := c.AddFunc(specs.Expiry, func() { s.RunExpirySweep(ctx, sweeper) }); err != nil {
		return fmt.Errorf("%s: expiry spec %q: %w", op, specs.Expiry, err)
	}
	return nil
}

// RunExpirySweep запускает удаление истёкших подписок изолированно от остальных задач.
func (s *SchedulerService) RunExpirySweep(ctx context.Context, sweeper Sweeper) DispatchResult {
	return s.isolate(JobExpiry, "", s.now(), func() error {
		n, err := sweeper.ExpireSubscriptions(ctx)
		if err != nil {
			return err
		}
		s.log.Info("expired subscriptions removed", slog.Int("count", n))
		return nil
	})
}
