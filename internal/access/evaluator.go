// Package access реализует правила видимости контента по уровню подписки
// и проверку привилегированных ролей.
//
// Фильтр списка (EvaluateListAccess) и проверка одного элемента
// (EvaluateItemAccess) намеренно различаются: роль наставника учитывается
// только при проверке элемента.
package access

import (
	"slices"
	"strings"

	"github.com/magabrotheeeer/content-platform/internal/lib/metrics"
	"github.com/magabrotheeeer/content-platform/internal/models"
)

const mentorRole = "mentor"

// EvaluateListAccess дополняет фильтр вызывающей стороны предикатом видимости
// для уровня принципала. Не возвращает ошибок: отсутствие подходящих
// элементов даёт пустой список.
func EvaluateListAccess(p models.Principal, base models.ContentFilter) models.ContentFilter {
	tier := p.Tier
	if tier == "" {
		tier = models.TierFree
	}
	base.Visibility = &models.TierVisibility{Tier: tier}
	return base
}

// EvaluateItemAccess решает, может ли принципал видеть загруженный элемент.
// Отсутствующий элемент здесь не различается: это забота вызывающей стороны.
func EvaluateItemAccess(p models.Principal, item models.Content) models.AccessDecision {
	decision := evaluate(p, item)
	metrics.AccessDecisions.WithLabelValues(string(decision.Reason)).Inc()
	return decision
}

func evaluate(p models.Principal, item models.Content) models.AccessDecision {
	if IsPublic(item) {
		return models.AccessDecision{Granted: true, Reason: models.ReasonPublic}
	}
	if slices.Contains(item.AllowedTiers, p.Tier) {
		return models.AccessDecision{Granted: true, Reason: models.ReasonTierMatch}
	}
	if IsMentor(p) {
		return models.AccessDecision{Granted: true, Reason: models.ReasonMentorOverride}
	}
	return models.AccessDecision{
		Granted:       false,
		Reason:        models.ReasonTierRestricted,
		RequiredTiers: slices.Clone(item.AllowedTiers),
	}
}

// IsPublic сообщает, открыт ли элемент всем: уровни не заданы, пусты или включают FREE.
func IsPublic(item models.Content) bool {
	return len(item.AllowedTiers) == 0 || slices.Contains(item.AllowedTiers, models.TierFree)
}

// IsMentor сообщает, имеет ли принципал роль наставника по имени или типу
// без учёта регистра.
func IsMentor(p models.Principal) bool {
	return strings.EqualFold(p.Role.Name, mentorRole) || strings.EqualFold(p.Role.Type, mentorRole)
}
