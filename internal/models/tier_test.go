package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Tier
		wantErr bool
	}{
		{name: "upper case", in: "PREMIUM", want: TierPremium},
		{name: "lower case", in: "basic", want: TierBasic},
		{name: "mixed case with spaces", in: "  Free ", want: TierFree},
		{name: "unknown", in: "gold", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTier(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownTier)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTiers(t *testing.T) {
	got, err := ParseTiers([]string{"basic", "PREMIUM", "Basic"})
	require.NoError(t, err)
	assert.Equal(t, []Tier{TierBasic, TierPremium}, got)

	got, err = ParseTiers(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseTiers([]string{"basic", "platinum"})
	assert.ErrorIs(t, err, ErrUnknownTier)
}

func TestNewRole_Normalizes(t *testing.T) {
	r := NewRole(" Mentor ", "MENTOR")
	assert.Equal(t, Role{Name: "mentor", Type: "mentor"}, r)
	assert.True(t, Role{}.IsZero())
	assert.False(t, r.IsZero())
}

func TestTierVisibility_Matches(t *testing.T) {
	v := TierVisibility{Tier: TierBasic}

	assert.True(t, v.Matches(Content{}))
	assert.True(t, v.Matches(Content{AllowedTiers: []Tier{}}))
	assert.True(t, v.Matches(Content{AllowedTiers: []Tier{TierBasic}}))
	assert.True(t, v.Matches(Content{AllowedTiers: []Tier{TierPremium, TierFree}}))
	assert.False(t, v.Matches(Content{AllowedTiers: []Tier{TierPremium}}))
}

func TestUser_Principal(t *testing.T) {
	u := User{UUID: "u-1", Username: "anna", RoleName: "Mentor", RoleType: "Mentor"}
	p := u.Principal()

	assert.Equal(t, TierFree, p.Tier)
	assert.True(t, p.Authenticated)
	assert.Equal(t, RoleMentor, p.Role)
}

func TestHighestTier(t *testing.T) {
	assert.Equal(t, TierFree, HighestTier(nil))
	assert.Equal(t, TierBasic, HighestTier([]Tier{TierFree, TierBasic}))
	assert.Equal(t, TierPremium, HighestTier([]Tier{TierBasic, TierPremium, TierBasic}))
}
