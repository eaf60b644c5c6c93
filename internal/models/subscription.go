package models

import "time"

// SubscriptionStatus — состояние подписки пользователя на платный уровень.
type SubscriptionStatus string

const (
	SubscriptionPending  SubscriptionStatus = "pending"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Subscription — подписка пользователя на платный уровень.
type Subscription struct {
	ID               string             `json:"id"`
	UserUID          string             `json:"user_uid"`
	Tier             Tier               `json:"tier"`
	Status           SubscriptionStatus `json:"status"`
	PaymentID        string             `json:"payment_id,omitempty"`
	Amount           string             `json:"amount"`
	Currency         string             `json:"currency"`
	CurrentPeriodEnd *time.Time         `json:"current_period_end,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

// Plan — тарифный план платного уровня.
type Plan struct {
	Tier     Tier   `yaml:"tier"`
	Price    string `yaml:"price"`
	Currency string `yaml:"currency"`
}
