// Package models содержит доменные структуры платформы: уровни подписки,
// роли и принципалов, контент с ограничением доступа, события, подписки
// и сообщения очередей уведомлений.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// Tier — уровень подписки, определяющий видимость контента.
type Tier string

const (
	// TierFree — бесплатный уровень, доступен всем, включая анонимов.
	TierFree Tier = "FREE"
	// TierBasic — базовый платный уровень.
	TierBasic Tier = "BASIC"
	// TierPremium — премиальный платный уровень.
	TierPremium Tier = "PREMIUM"
)

// ErrUnknownTier возвращается при разборе неизвестного идентификатора уровня.
var ErrUnknownTier = errors.New("unknown tier")

var knownTiers = map[Tier]struct{}{
	TierFree:    {},
	TierBasic:   {},
	TierPremium: {},
}

// ParseTier нормализует регистр и проверяет, что уровень известен.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := knownTiers[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
	}
	return t, nil
}

// ParseTiers разбирает список уровней, удаляя дубликаты с сохранением порядка.
// Пустой вход возвращает nil: контент без ограничений.
func ParseTiers(values []string) ([]Tier, error) {
	if len(values) == 0 {
		return nil, nil
	}
	seen := make(map[Tier]struct{}, len(values))
	out := make([]Tier, 0, len(values))
	for _, v := range values {
		t, err := ParseTier(v)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

// IsPaid сообщает, является ли уровень платным.
func (t Tier) IsPaid() bool {
	return t == TierBasic || t == TierPremium
}

// Rank возвращает порядок уровня: FREE < BASIC < PREMIUM.
func (t Tier) Rank() int {
	switch t {
	case TierBasic:
		return 1
	case TierPremium:
		return 2
	default:
		return 0
	}
}

// HighestTier возвращает старший из уровней или FREE для пустого списка.
func HighestTier(tiers []Tier) Tier {
	best := TierFree
	for _, t := range tiers {
		if t.Rank() > best.Rank() {
			best = t
		}
	}
	return best
}

func (t Tier) String() string {
	return string(t)
}

// TierStrings переводит уровни в строки для хранения в text[].
func TierStrings(tiers []Tier) []string {
	if len(tiers) == 0 {
		return nil
	}
	out := make([]string, len(tiers))
	for i, t := range tiers {
		out[i] = string(t)
	}
	return out
}
