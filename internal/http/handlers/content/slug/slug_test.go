package slug

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/content-platform/internal/models"
	contentservice "github.com/magabrotheeeer/content-platform/internal/services/content"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) GetBySlug(ctx context.Context, p models.Principal, slug, locale string) (*models.Content, models.AccessDecision, error) {
	args := m.Called(ctx, p, slug, locale)
	item, _ := args.Get(0).(*models.Content)
	return item, args.Get(1).(models.AccessDecision), args.Error(2)
}

func serve(t *testing.T, svc *MockService, url string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/content/slug/{slug}", New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

func TestSlugHandler_Localized(t *testing.T) {
	svc := new(MockService)
	svc.On("GetBySlug", mock.Anything, models.Anonymous(), "about", "ru").Return(
		&models.Content{ID: 3, Slug: "about", Locale: "ru", Title: "О нас"},
		models.AccessDecision{Granted: true, Reason: models.ReasonPublic}, nil)

	rec := serve(t, svc, "/content/slug/about?locale=ru")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"locale":"ru"`)
	assert.Contains(t, rec.Body.String(), `"reason_code":"PUBLIC"`)
	svc.AssertExpectations(t)
}

func TestSlugHandler_Denied(t *testing.T) {
	svc := new(MockService)
	svc.On("GetBySlug", mock.Anything, mock.Anything, "pricing-deep-dive", "").Return(nil, models.AccessDecision{
		Reason:        models.ReasonTierRestricted,
		RequiredTiers: []models.Tier{models.TierBasic},
	}, nil)

	rec := serve(t, svc, "/content/slug/pricing-deep-dive")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"requiredTiers":["BASIC"]`)
}

func TestSlugHandler_NotFound(t *testing.T) {
	svc := new(MockService)
	svc.On("GetBySlug", mock.Anything, mock.Anything, "missing", "en").
		Return(nil, models.AccessDecision{}, contentservice.ErrContentNotFound)

	rec := serve(t, svc, "/content/slug/missing?locale=en")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
