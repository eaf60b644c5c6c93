package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/content-platform/internal/models"
)

func (s *Storage) queryContents(ctx context.Context, op, query string, args ...any) ([]*models.Content, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Content
	for rows.Next() {
		c, err := s.scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindEventsStartingBetween возвращает события с началом в полуинтервале [from, to).
func (s *Storage) FindEventsStartingBetween(ctx context.Context, from, to time.Time) ([]*models.Content, error) {
	const op = "storage.FindEventsStartingBetween"
	query := `SELECT ` + contentColumns + ` FROM contents
			  WHERE kind = 'event' AND starts_at >= $1 AND starts_at < $2
			  ORDER BY starts_at, id`
	return s.queryContents(ctx, op, query, from, to)
}

// FindEventsEndedBefore возвращает завершившиеся не позже target события,
// по которым ещё не запрашивалась обратная связь.
func (s *Storage) FindEventsEndedBefore(ctx context.Context, target time.Time) ([]*models.Content, error) {
	const op = "storage.FindEventsEndedBefore"
	query := `SELECT ` + contentColumns + ` FROM contents
			  WHERE kind = 'event' AND ends_at <= $1 AND feedback_requested_at IS NULL
			  ORDER BY ends_at, id`
	return s.queryContents(ctx, op, query, target)
}

// MarkFeedbackRequested отмечает, что запрос обратной связи по событию отправлен.
func (s *Storage) MarkFeedbackRequested(ctx context.Context, eventID int, at time.Time) error {
	const op = "storage.MarkFeedbackRequested"
	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE contents SET feedback_requested_at = $1 WHERE id = $2 AND kind = 'event'`, at, eventID)
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}

// RegisterAttendee регистрирует пользователя на событие. Повторная регистрация не ошибка.
func (s *Storage) RegisterAttendee(ctx context.Context, eventID int, userUID string) error {
	const op = "storage.RegisterAttendee"
	_, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO event_registrations (event_id, user_uid) VALUES ($1, $2)
		 ON CONFLICT (event_id, user_uid) DO NOTHING`, eventID, userUID)
	if err != nil {
		return mapError(op, err)
	}
	return nil
}

// ListAttendees возвращает участников события с адресами почты.
func (s *Storage) ListAttendees(ctx context.Context, eventID int) ([]models.Attendee, error) {
	const op = "storage.ListAttendees"
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT u.uid, u.email, u.username
		 FROM event_registrations r
		 JOIN users u ON u.uid = r.user_uid
		 WHERE r.event_id = $1
		 ORDER BY r.created_at`, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Attendee
	for rows.Next() {
		var a models.Attendee
		if err := rows.Scan(&a.UserUID, &a.Email, &a.Username); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
