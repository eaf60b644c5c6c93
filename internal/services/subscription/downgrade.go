package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/content-platform/internal/models"
)

// TierResolver вычисляет уровень пользователя по его активным подпискам.
type TierResolver interface {
	HighestActiveTier(ctx context.Context, userUID, exceptID string) (models.Tier, error)
}

// EntitlementDowngrade перед удалением активной подписки пересчитывает
// уровень пользователя по оставшимся активным подпискам.
type EntitlementDowngrade struct {
	users UserRepository
	tiers TierResolver
	log   *slog.Logger
}

// NewEntitlementDowngrade создает обработчик понижения уровня.
func NewEntitlementDowngrade(users UserRepository, tiers TierResolver, log *slog.Logger) *EntitlementDowngrade {
	return &EntitlementDowngrade{users: users, tiers: tiers, log: log}
}

// Name возвращает имя обработчика.
func (h *EntitlementDowngrade) Name() string { return "entitlement_downgrade" }

// OnBeforeDelete выставляет пользователю старший уровень среди остальных
// активных подписок или FREE, если их нет.
func (h *EntitlementDowngrade) OnBeforeDelete(ctx context.Context, sub models.Subscription) error {
	const op = "services.subscription.EntitlementDowngrade"
	if sub.Status != models.SubscriptionActive {
		return nil
	}

	tier, err := h.tiers.HighestActiveTier(ctx, sub.UserUID, sub.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := h.users.UpdateUserTier(ctx, sub.UserUID, tier); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	h.log.Info("entitlement recomputed", slog.String("user_uid", sub.UserUID), slog.String("tier", tier.String()))
	return nil
}
