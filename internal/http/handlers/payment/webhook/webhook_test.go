package webhook

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/content-platform/internal/paymentprovider"
	subscriptionservice "github.com/magabrotheeeer/content-platform/internal/services/subscription"
)

const secret = "whsec"

type MockService struct {
	mock.Mock
}

func (m *MockService) ProcessWebhookEvent(ctx context.Context, payload *paymentprovider.WebhookPayload) error {
	return m.Called(ctx, payload).Error(0)
}

func TestWebhookHandler(t *testing.T) {
	body := []byte(`{"event":"payment.succeeded","object":{"id":"pay-1","status":"succeeded",` +
		`"amount":{"value":"490.00","currency":"RUB"},"metadata":{"subscription_id":"sub-1"}}}`)

	tests := []struct {
		name       string
		body       []byte
		signature  string
		serviceErr error
		callsSvc   bool
		wantStatus int
	}{
		{name: "valid", body: body, signature: Sign(secret, body), callsSvc: true, wantStatus: http.StatusOK},
		{name: "missing signature", body: body, wantStatus: http.StatusUnauthorized},
		{name: "wrong signature", body: body, signature: Sign("other", body), wantStatus: http.StatusUnauthorized},
		{name: "malformed json", body: []byte("{"), signature: Sign(secret, []byte("{")), wantStatus: http.StatusBadRequest},
		{name: "unknown subscription acknowledged", body: body, signature: Sign(secret, body),
			serviceErr: subscriptionservice.ErrSubscriptionNotFound, callsSvc: true, wantStatus: http.StatusOK},
		{name: "processing error", body: body, signature: Sign(secret, body),
			serviceErr: errors.New("db"), callsSvc: true, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.callsSvc {
				svc.On("ProcessWebhookEvent", mock.Anything, mock.MatchedBy(func(p *paymentprovider.WebhookPayload) bool {
					return p.Event == paymentprovider.EventPaymentSucceeded &&
						p.Object.ID == "pay-1" &&
						p.Object.Metadata[paymentprovider.MetaSubscriptionID] == "sub-1"
				})).Return(tt.serviceErr)
			}
			handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, secret)

			req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(tt.body))
			if tt.signature != "" {
				req.Header.Set(SignatureHeader, tt.signature)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestWebhookHandler_EmptySecretRejectsAll(t *testing.T) {
	body := []byte(`{"event":"payment.succeeded","object":{"id":"pay-1","metadata":{"subscription_id":"sub-1"}}}`)
	svc := new(MockService)
	handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, "")

	for _, signature := range []string{"", Sign("", body)} {
		req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(body))
		if signature != "" {
			req.Header.Set(SignatureHeader, signature)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	}
	svc.AssertNotCalled(t, "ProcessWebhookEvent", mock.Anything, mock.Anything)
}
