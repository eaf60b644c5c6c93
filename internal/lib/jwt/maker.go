// Package jwt выпускает и проверяет HS256-токены доступа платформы.
package jwt

import (
	"time"
)

// Issuer — значение claim iss в токенах платформы.
const Issuer = "content-platform"

// leeway допускает расхождение часов между экземплярами API.
const leeway = 30 * time.Second

// Maker выпускает и проверяет токены доступа.
type Maker interface {
	GenerateToken(username, role, userUID string) (string, error)
	ParseToken(tokenStr string) (*Claims, error)
}

// HMACMaker подписывает токены общим секретом.
type HMACMaker struct {
	secretKey []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewJWTMaker создаёт HMACMaker с секретом и временем жизни токена.
func NewJWTMaker(secretKey string, ttl time.Duration) *HMACMaker {
	return &HMACMaker{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
}
