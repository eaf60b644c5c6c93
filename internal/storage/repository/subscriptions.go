package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/content-platform/internal/models"
)

const subscriptionColumns = `id, user_uid, tier, status, COALESCE(payment_id, ''), amount, currency,
	current_period_end, created_at`

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	var (
		sub          models.Subscription
		tier, status string
		periodEnd    sql.NullTime
	)
	if err := row.Scan(&sub.ID, &sub.UserUID, &tier, &status, &sub.PaymentID,
		&sub.Amount, &sub.Currency, &periodEnd, &sub.CreatedAt); err != nil {
		return nil, err
	}
	sub.Tier = models.Tier(tier)
	sub.Status = models.SubscriptionStatus(status)
	sub.CurrentPeriodEnd = nullTime(periodEnd)
	return &sub, nil
}

// CreateSubscription сохраняет подписку в статусе pending.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.CreateSubscription"

	status := sub.Status
	if status == "" {
		status = models.SubscriptionPending
	}
	_, err := s.conn(ctx).ExecContext(ctx,
		`INSERT INTO subscriptions (id, user_uid, tier, status, amount, currency)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		sub.ID, sub.UserUID, sub.Tier.String(), string(status), sub.Amount, sub.Currency)
	if err != nil {
		return mapError(op, err)
	}
	return nil
}

// GetSubscription возвращает подписку по ID.
func (s *Storage) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"

	sub, err := scanSubscription(s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(op, err)
	}
	return sub, nil
}

// SetSubscriptionPayment привязывает к подписке платёж провайдера.
func (s *Storage) SetSubscriptionPayment(ctx context.Context, id, paymentID string) error {
	const op = "storage.SetSubscriptionPayment"

	res, err := s.conn(ctx).ExecContext(ctx, `UPDATE subscriptions SET payment_id = $1 WHERE id = $2`, paymentID, id)
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}

// ActivateSubscription переводит подписку в active и продлевает период.
func (s *Storage) ActivateSubscription(ctx context.Context, id, paymentID string, periodEnd time.Time) error {
	const op = "storage.ActivateSubscription"

	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE subscriptions
		 SET status = 'active', payment_id = $1, current_period_end = $2
		 WHERE id = $3`, paymentID, periodEnd, id)
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}

// CancelSubscription переводит подписку в canceled.
func (s *Storage) CancelSubscription(ctx context.Context, id string) error {
	const op = "storage.CancelSubscription"

	res, err := s.conn(ctx).ExecContext(ctx, `UPDATE subscriptions SET status = 'canceled' WHERE id = $1`, id)
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}

// DeleteSubscription удаляет подписку.
func (s *Storage) DeleteSubscription(ctx context.Context, id string) error {
	const op = "storage.DeleteSubscription"

	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return mapError(op, err)
	}
	return checkAffected(op, res)
}

func (s *Storage) querySubscriptions(ctx context.Context, op, query string, args ...any) ([]*models.Subscription, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListSubscriptionsByUser возвращает подписки пользователя, новые первыми.
func (s *Storage) ListSubscriptionsByUser(ctx context.Context, userUID string) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptionsByUser"
	return s.querySubscriptions(ctx, op,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_uid = $1 ORDER BY created_at DESC`, userUID)
}

// FindExpiredSubscriptions возвращает активные подписки с истёкшим периодом.
func (s *Storage) FindExpiredSubscriptions(ctx context.Context, now time.Time) ([]*models.Subscription, error) {
	const op = "storage.FindExpiredSubscriptions"
	return s.querySubscriptions(ctx, op,
		`SELECT `+subscriptionColumns+` FROM subscriptions
		 WHERE status = 'active' AND current_period_end < $1
		 ORDER BY current_period_end`, now)
}

// HighestActiveTier возвращает старший уровень среди активных подписок
// пользователя, кроме exceptID. Без активных подписок возвращает FREE.
func (s *Storage) HighestActiveTier(ctx context.Context, userUID, exceptID string) (models.Tier, error) {
	const op = "storage.HighestActiveTier"

	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT DISTINCT tier FROM subscriptions
		 WHERE user_uid = $1 AND status = 'active' AND id::text <> $2`,
		userUID, exceptID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var tiers []models.Tier
	for rows.Next() {
		var tier string
		if err := rows.Scan(&tier); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		tiers = append(tiers, models.Tier(tier))
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return models.HighestTier(tiers), nil
}
