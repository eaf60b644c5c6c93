package response

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/content-platform/internal/models"
)

func TestStatusOKWithData(t *testing.T) {
	data := map[string]string{"key": "value"}
	resp := StatusOKWithData(data)

	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, data, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("something went wrong")

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "something went wrong", resp.Error)
}

func TestTierRestricted(t *testing.T) {
	resp := TierRestricted(models.AccessDecision{
		Reason:        models.ReasonTierRestricted,
		RequiredTiers: []models.Tier{models.TierBasic, models.TierPremium},
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"status": "Error",
		"error": "content requires a higher tier",
		"code": "TIER_RESTRICTED",
		"requiredTiers": ["BASIC", "PREMIUM"]
	}`, string(raw))
}

func TestTierRestricted_EmptyTiersRenderAsArray(t *testing.T) {
	raw, err := json.Marshal(TierRestricted(models.AccessDecision{}))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"requiredTiers":[]`)
}

func TestValidationError(t *testing.T) {
	type TestStruct struct {
		Name  string `validate:"required,alphanum"`
		Age   string `validate:"numeric"`
		Kind  string `validate:"oneof=a b"`
		Email string `validate:"email"`
		Short string `validate:"min=3"`
	}

	err := validator.New().Struct(TestStruct{
		Name:  "!!!",
		Age:   "twenty",
		Kind:  "c",
		Email: "nope",
		Short: "x",
	})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Name can contain only numbers and letters")
	assert.Contains(t, resp.Error, "field Age can contain only numbers")
	assert.Contains(t, resp.Error, "field Kind must be one of [a b]")
	assert.Contains(t, resp.Error, "field Email must be a valid email")
	assert.Contains(t, resp.Error, "field Short must be at least 3 characters")
}

func TestValidationErrorRequired(t *testing.T) {
	type TestStruct struct {
		Name string `validate:"required"`
	}

	err := validator.New().Struct(TestStruct{})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, "field Name is a required field", resp.Error)
}
