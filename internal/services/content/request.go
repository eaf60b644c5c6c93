package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/content-platform/internal/models"
)

// ErrInvalidContent — запрос не удалось преобразовать в элемент контента.
var ErrInvalidContent = errors.New("invalid content")

// FromRequest преобразует проверенный запрос в Content. Уровни проходят
// через ParseTier, даты принимаются в RFC 3339.
func FromRequest(req models.DummyContent) (models.Content, error) {
	const op = "services.content.FromRequest"

	tiers, err := models.ParseTiers(req.AllowedTiers)
	if err != nil {
		return models.Content{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidContent, err)
	}

	c := models.Content{
		Kind:         models.ContentKind(req.Kind),
		Slug:         req.Slug,
		Title:        req.Title,
		Body:         req.Body,
		Locale:       strings.ToLower(req.Locale),
		AllowedTiers: tiers,
	}
	if !c.Kind.Valid() {
		return models.Content{}, fmt.Errorf("%s: %w: unknown kind %q", op, ErrInvalidContent, req.Kind)
	}

	for _, f := range []struct {
		name string
		raw  string
		dst  **time.Time
	}{
		{"published_at", req.PublishedAt, &c.PublishedAt},
		{"starts_at", req.StartsAt, &c.StartsAt},
		{"ends_at", req.EndsAt, &c.EndsAt},
	} {
		if f.raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, f.raw)
		if err != nil {
			return models.Content{}, fmt.Errorf("%s: %w: field %s: %w", op, ErrInvalidContent, f.name, err)
		}
		t = t.UTC()
		*f.dst = &t
	}

	if c.Kind == models.KindEvent && c.StartsAt == nil {
		return models.Content{}, fmt.Errorf("%s: %w: event requires starts_at", op, ErrInvalidContent)
	}
	if c.StartsAt != nil && c.EndsAt != nil && c.EndsAt.Before(*c.StartsAt) {
		return models.Content{}, fmt.Errorf("%s: %w: ends_at is before starts_at", op, ErrInvalidContent)
	}
	return c, nil
}
