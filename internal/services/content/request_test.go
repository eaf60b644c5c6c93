package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/content-platform/internal/models"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     models.DummyContent
		wantErr bool
		check   func(t *testing.T, c models.Content)
	}{
		{
			name: "event with tiers",
			req: models.DummyContent{
				Kind: "event", Slug: "meetup", Title: "Meetup", Locale: "EN",
				AllowedTiers: []string{"basic", "Premium", "BASIC"},
				StartsAt:     "2024-01-04T18:00:00+03:00",
				EndsAt:       "2024-01-04T20:00:00+03:00",
			},
			check: func(t *testing.T, c models.Content) {
				assert.Equal(t, "en", c.Locale)
				assert.Equal(t, []models.Tier{models.TierBasic, models.TierPremium}, c.AllowedTiers)
				require.NotNil(t, c.StartsAt)
				assert.Equal(t, time.Date(2024, 1, 4, 15, 0, 0, 0, time.UTC), *c.StartsAt)
			},
		},
		{
			name: "public post",
			req:  models.DummyContent{Kind: "blog_post", Slug: "hello", Title: "Hello", Locale: "en", AllowedTiers: []string{}},
			check: func(t *testing.T, c models.Content) {
				assert.Nil(t, c.AllowedTiers)
				assert.Nil(t, c.StartsAt)
			},
		},
		{
			name:    "unknown tier",
			req:     models.DummyContent{Kind: "blog_post", Slug: "x", Title: "x", Locale: "en", AllowedTiers: []string{"GOLD"}},
			wantErr: true,
		},
		{
			name:    "event without start",
			req:     models.DummyContent{Kind: "event", Slug: "x", Title: "x", Locale: "en"},
			wantErr: true,
		},
		{
			name: "ends before starts",
			req: models.DummyContent{Kind: "event", Slug: "x", Title: "x", Locale: "en",
				StartsAt: "2024-01-04T18:00:00Z", EndsAt: "2024-01-04T17:00:00Z"},
			wantErr: true,
		},
		{
			name:    "bad date",
			req:     models.DummyContent{Kind: "resource", Slug: "x", Title: "x", Locale: "en", PublishedAt: "04.01.2024"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := FromRequest(tt.req)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidContent)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}
