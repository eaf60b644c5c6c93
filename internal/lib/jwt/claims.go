package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired — срок действия токена истёк.
	ErrExpired = errors.New("token expired")
	// ErrInvalid — подпись, формат или обязательные поля токена неверны.
	ErrInvalid = errors.New("token invalid")
)

// Claims — данные пользователя в токене доступа.
// Уровень подписки в токен не кладётся: он меняется после оплаты
// и читается из хранилища при каждом запросе.
type Claims struct {
	Username string `json:"username"`
	UserUID  string `json:"user_uid"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken выпускает токен для пользователя.
func (m *HMACMaker) GenerateToken(username, role, userUID string) (string, error) {
	const op = "jwt.GenerateToken"
	now := m.now()
	claims := Claims{
		Username: username,
		UserUID:  userUID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   userUID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken проверяет подпись, издателя и срок действия токена.
func (m *HMACMaker) ParseToken(tokenStr string) (*Claims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return m.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(m.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, fmt.Errorf("%s: %w", op, ErrExpired)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrInvalid, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserUID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalid)
	}
	return claims, nil
}
