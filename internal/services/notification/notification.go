// Package services публикует уведомления о событиях в очередь рассылки.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/content-platform/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/content-platform/internal/lib/sl"
	"github.com/magabrotheeeer/content-platform/internal/models"
)

// EventRepository — выборка событий для рассылки.
type EventRepository interface {
	FindEventsStartingBetween(ctx context.Context, from, to time.Time) ([]*models.Content, error)
	FindEventsEndedBefore(ctx context.Context, target time.Time) ([]*models.Content, error)
	MarkFeedbackRequested(ctx context.Context, eventID int, at time.Time) error
}

// Publisher публикует сообщение с ключом маршрутизации.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// NotificationService реализует отправку напоминаний и запросов обратной связи через брокер.
type NotificationService struct {
	repo      EventRepository
	publisher Publisher
	tolerance time.Duration
	log       *slog.Logger
	now       func() time.Time
}

// NewNotificationService создает новый экземпляр NotificationService.
// tolerance — ширина окна выборки, равная интервалу тиков.
func NewNotificationService(repo EventRepository, publisher Publisher, tolerance time.Duration, log *slog.Logger) *NotificationService {
	if tolerance <= 0 {
		tolerance = time.Hour
	}
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
		tolerance: tolerance,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SendReminders публикует напоминание о каждом событии, начинающемся
// в полуинтервале [target, target+tolerance). Ошибки публикации
// по отдельным событиям объединяются.
func (s *NotificationService) SendReminders(ctx context.Context, label models.OffsetLabel, target time.Time) error {
	const op = "notification.SendReminders"
	log := s.log.With(slog.String("op", op), slog.String("label", string(label)))

	events, err := s.repo.FindEventsStartingBetween(ctx, target, target.Add(s.tolerance))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(events) == 0 {
		log.Debug("no events in reminder window", slog.Time("target", target))
		return nil
	}

	var errs []error
	for _, e := range events {
		if e.StartsAt == nil {
			continue
		}
		msg := models.ReminderMessage{
			EventID:     e.ID,
			Title:       e.Title,
			Slug:        e.Slug,
			StartsAt:    *e.StartsAt,
			OffsetLabel: label,
		}
		if err := s.publisher.Publish(ctx, rabbitmq.ReminderRoutingKey, msg); err != nil {
			log.Error("failed to publish reminder", slog.Int("event_id", e.ID), sl.Err(err))
			errs = append(errs, fmt.Errorf("event %d: %w", e.ID, err))
		}
	}
	log.Info("reminders published", slog.Int("count", len(events)-len(errs)))

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SendFeedbackRequests публикует запрос обратной связи по событиям,
// завершившимся не позже target, и помечает их как обработанные.
func (s *NotificationService) SendFeedbackRequests(ctx context.Context, target time.Time) error {
	const op = "notification.SendFeedbackRequests"
	log := s.log.With(slog.String("op", op))

	events, err := s.repo.FindEventsEndedBefore(ctx, target)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var errs []error
	for _, e := range events {
		if e.EndsAt == nil {
			continue
		}
		msg := models.FeedbackMessage{
			EventID: e.ID,
			Title:   e.Title,
			Slug:    e.Slug,
			EndsAt:  *e.EndsAt,
		}
		if err := s.publisher.Publish(ctx, rabbitmq.FeedbackRoutingKey, msg); err != nil {
			log.Error("failed to publish feedback request", slog.Int("event_id", e.ID), sl.Err(err))
			errs = append(errs, fmt.Errorf("event %d: %w", e.ID, err))
			continue
		}
		if err := s.repo.MarkFeedbackRequested(ctx, e.ID, s.now()); err != nil {
			log.Error("failed to mark feedback requested", slog.Int("event_id", e.ID), sl.Err(err))
			errs = append(errs, fmt.Errorf("event %d: %w", e.ID, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
