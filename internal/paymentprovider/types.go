package paymentprovider

import "time"

// События уведомлений провайдера.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentCanceled  = "payment.canceled"
	EventPaymentRefunded  = "payment.refunded"
	EventRefundSucceeded  = "refund.succeeded"
)

// Ключи метаданных платежа.
const (
	MetaSubscriptionID = "subscription_id"
	MetaUserUID        = "user_uid"
	MetaTier           = "tier"
)

// Amount представляет денежную сумму.
type Amount struct {
	Value    string `json:"value"`    // сумма, например "490.00"
	Currency string `json:"currency"` // валюта, например "RUB"
}

// Confirmation описывает способ подтверждения платежа пользователем.
type Confirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

// CreatePaymentRequest представляет запрос на создание платежа.
type CreatePaymentRequest struct {
	Amount       Amount            `json:"amount"`
	Capture      bool              `json:"capture"`
	Confirmation Confirmation      `json:"confirmation"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// CreatePaymentResponse представляет ответ на создание платежа.
type CreatePaymentResponse struct {
	ID           string       `json:"id"`
	Status       string       `json:"status"`
	Amount       Amount       `json:"amount"`
	Confirmation Confirmation `json:"confirmation"`
	CreatedAt    time.Time    `json:"created_at"`
}

// WebhookPayload — уведомление провайдера о смене статуса платежа или возврата.
type WebhookPayload struct {
	Event  string `json:"event"`
	Object struct {
		ID        string            `json:"id"`
		PaymentID string            `json:"payment_id,omitempty"` // заполнен у возвратов
		Status    string            `json:"status"`
		Amount    Amount            `json:"amount"`
		Metadata  map[string]string `json:"metadata"`
	} `json:"object"`
}
