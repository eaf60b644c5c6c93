// Package services рассылает участникам событий напоминания и запросы обратной связи.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/content-platform/internal/lib/metrics"
	"github.com/magabrotheeeer/content-platform/internal/lib/sl"
	"github.com/magabrotheeeer/content-platform/internal/lib/smtp"
	"github.com/magabrotheeeer/content-platform/internal/models"
)

// DedupTTL — сколько хранится отметка об отправке.
const DedupTTL = 7 * 24 * time.Hour

// Claimer атомарно занимает ключ дедупликации.
type Claimer interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// AttendeeRepository возвращает участников события.
type AttendeeRepository interface {
	ListAttendees(ctx context.Context, eventID int) ([]models.Attendee, error)
}

// SenderService обрабатывает сообщения очередей уведомлений.
type SenderService struct {
	mailer    smtp.Dialer
	claims    Claimer
	attendees AttendeeRepository
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(mailer smtp.Dialer, claims Claimer, attendees AttendeeRepository, log *slog.Logger) *SenderService {
	return &SenderService{
		mailer:    mailer,
		claims:    claims,
		attendees: attendees,
		log:       log,
	}
}

// HandleReminder рассылает напоминание о событии один раз на пару (событие, метка смещения).
func (s *SenderService) HandleReminder(ctx context.Context, body []byte) error {
	var msg models.ReminderMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		s.log.Error("failed to unmarshal reminder message, dropping", sl.Err(err))
		return nil
	}

	subject := fmt.Sprintf("Напоминание: %s", msg.Title)
	startsAt := msg.StartsAt.UTC().Format("02.01.2006 15:04")
	mailBody := func(username string) string {
		return fmt.Sprintf("Здравствуйте, %s!\n\nСобытие «%s» начнётся %s (UTC).\n\nПодробности: /events/%s",
			username, msg.Title, startsAt, msg.Slug)
	}

	return s.deliver(ctx, "reminder", msg.DedupKey(), msg.EventID, subject, mailBody)
}

// HandleFeedback рассылает запрос обратной связи по завершившемуся событию.
func (s *SenderService) HandleFeedback(ctx context.Context, body []byte) error {
	var msg models.FeedbackMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		s.log.Error("failed to unmarshal feedback message, dropping", sl.Err(err))
		return nil
	}

	subject := fmt.Sprintf("Как прошло событие «%s»?", msg.Title)
	mailBody := func(username string) string {
		return fmt.Sprintf("Здравствуйте, %s!\n\nСпасибо за участие в «%s». Поделитесь впечатлениями: /events/%s/feedback",
			username, msg.Title, msg.Slug)
	}

	return s.deliver(ctx, "feedback", msg.DedupKey(), msg.EventID, subject, mailBody)
}

// deliver занимает ключ дедупликации и отправляет письмо каждому участнику.
// При ошибке ключ освобождается, чтобы повторная доставка могла его занять.
// body строит текст письма для имени получателя.
func (s *SenderService) deliver(ctx context.Context, kind, key string, eventID int, subject string, body func(username string) string) (err error) {
	const op = "sender.deliver"
	log := s.log.With(slog.String("op", op), slog.String("kind", kind), slog.Int("event_id", eventID))

	claimed, err := s.claims.Claim(ctx, key, DedupTTL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !claimed {
		log.Info("notification already sent, skipping", slog.String("key", key))
		metrics.NotificationsSent.WithLabelValues(kind, "duplicate").Inc()
		return nil
	}
	defer func() {
		if err == nil {
			return
		}
		if relErr := s.claims.Release(context.WithoutCancel(ctx), key); relErr != nil {
			log.Error("failed to release dedup key", sl.Err(relErr))
		}
	}()

	attendees, err := s.attendees.ListAttendees(ctx, eventID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var errs []error
	for _, a := range attendees {
		sendErr := smtp.Send(ctx, s.mailer, smtp.Message{
			To:      []string{a.Email},
			Subject: subject,
			Body:    body(a.Username),
		})
		if sendErr != nil {
			metrics.NotificationsSent.WithLabelValues(kind, "error").Inc()
			log.Error("failed to send email", slog.String("to", a.Email), sl.Err(sendErr))
			errs = append(errs, sendErr)
			continue
		}
		metrics.NotificationsSent.WithLabelValues(kind, "ok").Inc()
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("notifications sent", slog.Int("recipients", len(attendees)))
	return nil
}
