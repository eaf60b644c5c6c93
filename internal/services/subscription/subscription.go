// Package services реализует жизненный цикл платной подписки: оформление,
// обработку уведомлений провайдера, удаление и истечение периода.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/content-platform/internal/access"
	"github.com/magabrotheeeer/content-platform/internal/cache"
	"github.com/magabrotheeeer/content-platform/internal/hooks"
	"github.com/magabrotheeeer/content-platform/internal/lib/month"
	"github.com/magabrotheeeer/content-platform/internal/lib/sl"
	"github.com/magabrotheeeer/content-platform/internal/models"
	"github.com/magabrotheeeer/content-platform/internal/paymentprovider"
	"github.com/magabrotheeeer/content-platform/internal/storage/repository"
)

var (
	// ErrPlanNotFound — для уровня нет платного тарифа.
	ErrPlanNotFound = errors.New("no paid plan for tier")
	// ErrSubscriptionNotFound — подписка не найдена.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrForbidden — подписка принадлежит другому пользователю.
	ErrForbidden = errors.New("subscription belongs to another user")
	// ErrAmountMismatch — сумма платежа не совпадает с суммой подписки.
	ErrAmountMismatch = errors.New("payment amount does not match subscription")
)

// SubscriptionRepository — хранилище подписок.
type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, sub models.Subscription) error
	GetSubscription(ctx context.Context, id string) (*models.Subscription, error)
	SetSubscriptionPayment(ctx context.Context, id, paymentID string) error
	ActivateSubscription(ctx context.Context, id, paymentID string, periodEnd time.Time) error
	CancelSubscription(ctx context.Context, id string) error
	DeleteSubscription(ctx context.Context, id string) error
	ListSubscriptionsByUser(ctx context.Context, userUID string) ([]*models.Subscription, error)
	FindExpiredSubscriptions(ctx context.Context, now time.Time) ([]*models.Subscription, error)
	HighestActiveTier(ctx context.Context, userUID, exceptID string) (models.Tier, error)
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository меняет уровень пользователя.
type UserRepository interface {
	UpdateUserTier(ctx context.Context, userUID string, tier models.Tier) error
}

// PaymentProvider создаёт платежи.
type PaymentProvider interface {
	CreatePayment(ctx context.Context, req paymentprovider.CreatePaymentRequest) (*paymentprovider.CreatePaymentResponse, error)
}

// Cache сбрасывает закешированные значения.
type Cache interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// CheckoutResult — данные для перехода пользователя к оплате.
type CheckoutResult struct {
	SubscriptionID  string `json:"subscription_id"`
	PaymentID       string `json:"payment_id"`
	ConfirmationURL string `json:"confirmation_url"`
}

// SubscriptionService реализует бизнес-логику подписок.
type SubscriptionService struct {
	repo     SubscriptionRepository
	users    UserRepository
	provider PaymentProvider
	cache    Cache
	hooks    *hooks.Registry[models.Subscription]
	plans    map[models.Tier]models.Plan
	log      *slog.Logger
	now      func() time.Time
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(
	repo SubscriptionRepository,
	users UserRepository,
	provider PaymentProvider,
	cache Cache,
	registry *hooks.Registry[models.Subscription],
	plans []models.Plan,
	log *slog.Logger,
) *SubscriptionService {
	byTier := make(map[models.Tier]models.Plan, len(plans))
	for _, p := range plans {
		byTier[p.Tier] = p
	}
	return &SubscriptionService{
		repo:     repo,
		users:    users,
		provider: provider,
		cache:    cache,
		hooks:    registry,
		plans:    byTier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Checkout создаёт подписку в статусе pending и платёж у провайдера.
func (s *SubscriptionService) Checkout(ctx context.Context, p models.Principal, tier models.Tier, returnURL string) (*CheckoutResult, error) {
	const op = "services.subscription.Checkout"

	plan, ok := s.plans[tier]
	if !ok || !tier.IsPaid() {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrPlanNotFound, tier)
	}

	sub := models.Subscription{
		ID:       uuid.NewString(),
		UserUID:  p.UserUID,
		Tier:     tier,
		Status:   models.SubscriptionPending,
		Amount:   plan.Price,
		Currency: plan.Currency,
	}
	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	payment, err := s.provider.CreatePayment(ctx, paymentprovider.CreatePaymentRequest{
		Amount:       paymentprovider.Amount{Value: plan.Price, Currency: plan.Currency},
		Capture:      true,
		Confirmation: paymentprovider.Confirmation{Type: "redirect", ReturnURL: returnURL},
		Description:  fmt.Sprintf("Подписка %s", tier),
		Metadata: map[string]string{
			paymentprovider.MetaSubscriptionID: sub.ID,
			paymentprovider.MetaUserUID:        p.UserUID,
			paymentprovider.MetaTier:           tier.String(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.SetSubscriptionPayment(ctx, sub.ID, payment.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("checkout started",
		slog.String("subscription_id", sub.ID),
		slog.String("user_uid", p.UserUID),
		slog.String("tier", tier.String()))

	return &CheckoutResult{
		SubscriptionID:  sub.ID,
		PaymentID:       payment.ID,
		ConfirmationURL: payment.Confirmation.ConfirmationURL,
	}, nil
}

// ProcessWebhookEvent применяет уведомление провайдера к подписке.
// Неизвестные события и уведомления без subscription_id игнорируются.
func (s *SubscriptionService) ProcessWebhookEvent(ctx context.Context, payload *paymentprovider.WebhookPayload) error {
	const op = "services.subscription.ProcessWebhookEvent"
	log := s.log.With(slog.String("op", op), slog.String("event", payload.Event))

	subID := payload.Object.Metadata[paymentprovider.MetaSubscriptionID]
	if subID == "" {
		log.Warn("webhook without subscription_id ignored", slog.String("object_id", payload.Object.ID))
		return nil
	}

	sub, err := s.get(ctx, subID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch strings.ToLower(payload.Event) {
	case paymentprovider.EventPaymentSucceeded:
		err = s.activate(ctx, sub, payload)
	case paymentprovider.EventPaymentCanceled:
		if sub.Status == models.SubscriptionActive {
			log.Warn("cancel for active subscription ignored", slog.String("subscription_id", sub.ID))
			return nil
		}
		err = s.repo.CancelSubscription(ctx, sub.ID)
	case paymentprovider.EventPaymentRefunded, paymentprovider.EventRefundSucceeded:
		err = s.deleteWithHooks(ctx, sub)
	default:
		log.Info("ignored webhook event")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("webhook applied", slog.String("subscription_id", sub.ID))
	return nil
}

func (s *SubscriptionService) activate(ctx context.Context, sub *models.Subscription, payload *paymentprovider.WebhookPayload) error {
	if sub.Status == models.SubscriptionActive && sub.PaymentID == payload.Object.ID {
		return nil
	}
	if payload.Object.Amount.Value != "" && payload.Object.Amount.Value != sub.Amount {
		return fmt.Errorf("%w: got %s, want %s", ErrAmountMismatch, payload.Object.Amount.Value, sub.Amount)
	}

	periodEnd := month.PeriodEnd(s.now(), sub.CurrentPeriodEnd, 1)
	err := s.repo.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.ActivateSubscription(ctx, sub.ID, payload.Object.ID, periodEnd); err != nil {
			return err
		}
		tier, err := s.repo.HighestActiveTier(ctx, sub.UserUID, "")
		if err != nil {
			return err
		}
		return s.users.UpdateUserTier(ctx, sub.UserUID, tier)
	})
	if err != nil {
		return err
	}
	s.invalidatePrincipal(ctx, sub.UserUID)
	return nil
}

// Delete удаляет подписку по запросу владельца или привилегированного принципала.
func (s *SubscriptionService) Delete(ctx context.Context, p models.Principal, id string) error {
	const op = "services.subscription.Delete"

	sub, err := s.get(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if sub.UserUID != p.UserUID && !access.IsPrivileged(&p) {
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}
	if err := s.deleteWithHooks(ctx, sub); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListMine возвращает подписки принципала.
func (s *SubscriptionService) ListMine(ctx context.Context, p models.Principal) ([]*models.Subscription, error) {
	const op = "services.subscription.ListMine"
	subs, err := s.repo.ListSubscriptionsByUser(ctx, p.UserUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// ExpireSubscriptions удаляет активные подписки с истёкшим периодом
// через ту же цепочку обработчиков, что и ручное удаление.
func (s *SubscriptionService) ExpireSubscriptions(ctx context.Context) (int, error) {
	const op = "services.subscription.ExpireSubscriptions"

	expired, err := s.repo.FindExpiredSubscriptions(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var (
		removed int
		errs    []error
	)
	for _, sub := range expired {
		if err := s.deleteWithHooks(ctx, sub); err != nil {
			s.log.Error("failed to expire subscription", slog.String("subscription_id", sub.ID), sl.Err(err))
			errs = append(errs, fmt.Errorf("subscription %s: %w", sub.ID, err))
			continue
		}
		removed++
	}
	if err := errors.Join(errs...); err != nil {
		return removed, fmt.Errorf("%s: %w", op, err)
	}
	return removed, nil
}

// deleteWithHooks выполняет обработчики и удаление в одной транзакции:
// при ошибке удаления изменения обработчиков откатываются.
func (s *SubscriptionService) deleteWithHooks(ctx context.Context, sub *models.Subscription) error {
	err := s.repo.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.hooks.RunBeforeDelete(ctx, *sub); err != nil {
			return err
		}
		return s.repo.DeleteSubscription(ctx, sub.ID)
	})
	if err != nil {
		return err
	}
	if sub.Status == models.SubscriptionActive {
		s.invalidatePrincipal(ctx, sub.UserUID)
	}
	s.log.Info("subscription deleted", slog.String("subscription_id", sub.ID), slog.String("user_uid", sub.UserUID))
	return nil
}

func (s *SubscriptionService) get(ctx context.Context, id string) (*models.Subscription, error) {
	sub, err := s.repo.GetSubscription(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSubscriptionNotFound
	}
	return sub, err
}

func (s *SubscriptionService) invalidatePrincipal(ctx context.Context, userUID string) {
	if err := s.cache.Invalidate(ctx, cache.PrincipalKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate principal cache", slog.String("user_uid", userUID), sl.Err(err))
	}
}
