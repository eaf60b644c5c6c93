package remove

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	contentservice "github.com/magabrotheeeer/content-platform/internal/services/content"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func TestRemoveHandler(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		setupMock    func(*MockService)
		wantStatus   int
		wantContains string
	}{
		{
			name:         "deleted",
			url:          "/content/3",
			setupMock:    func(m *MockService) { m.On("Delete", mock.Anything, 3).Return(nil) },
			wantStatus:   http.StatusOK,
			wantContains: `"deleted_id":3`,
		},
		{
			name:         "not found",
			url:          "/content/4",
			setupMock:    func(m *MockService) { m.On("Delete", mock.Anything, 4).Return(contentservice.ErrContentNotFound) },
			wantStatus:   http.StatusNotFound,
			wantContains: "content not found",
		},
		{
			name:         "bad id",
			url:          "/content/abc",
			setupMock:    func(_ *MockService) {},
			wantStatus:   http.StatusBadRequest,
			wantContains: "failed to decode id from url",
		},
		{
			name:         "service error",
			url:          "/content/5",
			setupMock:    func(m *MockService) { m.On("Delete", mock.Anything, 5).Return(errors.New("db")) },
			wantStatus:   http.StatusInternalServerError,
			wantContains: "could not delete content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			r := chi.NewRouter()
			r.Method(http.MethodDelete, "/content/{id}", New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, tt.url, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantContains)
			svc.AssertExpectations(t)
		})
	}
}
