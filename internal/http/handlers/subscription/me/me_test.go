package me

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/content-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-platform/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ListMine(ctx context.Context, p models.Principal) ([]*models.Subscription, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func serve(svc *MockService, p models.Principal) *httptest.ResponseRecorder {
	handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	req := httptest.NewRequest(http.MethodGet, "/subscriptions/me", nil)
	req = req.WithContext(middlewarectx.WithPrincipal(req.Context(), p))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestMeHandler(t *testing.T) {
	p := models.Principal{UserUID: "u-1", Tier: models.TierBasic, Authenticated: true}

	t.Run("lists subscriptions", func(t *testing.T) {
		svc := new(MockService)
		svc.On("ListMine", mock.Anything, p).Return([]*models.Subscription{
			{ID: "s-1", Tier: models.TierBasic, Status: models.SubscriptionActive},
		}, nil)

		rec := serve(svc, p)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"tier":"BASIC"`)
		assert.Contains(t, rec.Body.String(), `"status":"active"`)
	})

	t.Run("empty list renders array", func(t *testing.T) {
		svc := new(MockService)
		svc.On("ListMine", mock.Anything, p).Return(nil, nil)

		rec := serve(svc, p)
		assert.Contains(t, rec.Body.String(), `"subscriptions":[]`)
	})

	t.Run("service error", func(t *testing.T) {
		svc := new(MockService)
		svc.On("ListMine", mock.Anything, p).Return(nil, errors.New("db"))

		rec := serve(svc, p)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
