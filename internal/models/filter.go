package models

import "slices"

// ContentFilter — параметры выборки списка контента, передаваемые в слой доступа к данным.
type ContentFilter struct {
	Kind       ContentKind     // Тип контента (пусто — любой)
	Locale     string          // Локаль (пусто — любая)
	Limit      int             // Размер страницы
	Offset     int             // Смещение
	Visibility *TierVisibility // Предикат видимости по уровню (nil — без ограничения)
}

// TierVisibility — предикат видимости элемента для уровня Tier:
// allowed_tiers IS NULL OR Tier ∈ allowed_tiers OR FREE ∈ allowed_tiers.
type TierVisibility struct {
	Tier Tier
}

// Matches вычисляет предикат для уже загруженного элемента.
// Пустое множество уровней трактуется так же, как NULL.
func (v TierVisibility) Matches(item Content) bool {
	if len(item.AllowedTiers) == 0 {
		return true
	}
	return slices.Contains(item.AllowedTiers, v.Tier) || slices.Contains(item.AllowedTiers, TierFree)
}
