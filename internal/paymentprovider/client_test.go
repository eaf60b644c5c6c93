package paymentprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreatePayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payments", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "shop", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "sub-1", r.Header.Get("Idempotence-Key"))

		var req CreatePaymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "490.00", req.Amount.Value)
		assert.Equal(t, "redirect", req.Confirmation.Type)
		assert.Equal(t, "sub-1", req.Metadata[MetaSubscriptionID])

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"pay-1","status":"pending","confirmation":{"type":"redirect","confirmation_url":"https://pay.example/confirm"}}`))
	}))
	defer srv.Close()

	c := NewClient("shop", "secret", srv.URL)
	resp, err := c.CreatePayment(context.Background(), CreatePaymentRequest{
		Amount:       Amount{Value: "490.00", Currency: "RUB"},
		Capture:      true,
		Confirmation: Confirmation{Type: "redirect", ReturnURL: "https://app.example/return"},
		Metadata:     map[string]string{MetaSubscriptionID: "sub-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pay-1", resp.ID)
	assert.Equal(t, "https://pay.example/confirm", resp.Confirmation.ConfirmationURL)
}

func TestClient_CreatePayment_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","code":"invalid_request"}`))
	}))
	defer srv.Close()

	c := NewClient("shop", "secret", srv.URL)
	resp, err := c.CreatePayment(context.Background(), CreatePaymentRequest{})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "invalid_request")
}

func TestClient_CreatePayment_GeneratedIdempotenceKey(t *testing.T) {
	keys := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys <- r.Header.Get("Idempotence-Key")
		_, _ = w.Write([]byte(`{"id":"pay-1","status":"pending"}`))
	}))
	defer srv.Close()

	c := NewClient("shop", "secret", srv.URL)
	for range 2 {
		_, err := c.CreatePayment(context.Background(), CreatePaymentRequest{Amount: Amount{Value: "1.00", Currency: "RUB"}})
		require.NoError(t, err)
	}

	first, second := <-keys, <-keys
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestClient_CreatePayment_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient("shop", "secret", srv.URL)
	_, err := c.CreatePayment(context.Background(), CreatePaymentRequest{})
	require.ErrorIs(t, err, ErrUnavailable)
}
