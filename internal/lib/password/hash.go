// Package password хеширует и проверяет пароли пользователей через bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength — предел bcrypt: байты сверх 72 не участвуют в хеше.
const MaxLength = 72

var (
	// ErrMismatch — пароль не соответствует хешу.
	ErrMismatch = errors.New("password does not match")
	// ErrTooLong — пароль длиннее MaxLength байт.
	ErrTooLong = errors.New("password is too long")
)

// Hash возвращает bcrypt-хеш пароля для хранения в базе.
func Hash(raw string) (string, error) {
	const op = "password.Hash"
	if len(raw) > MaxLength {
		return "", fmt.Errorf("%s: %w", op, ErrTooLong)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Verify сравнивает сохранённый хеш с введённым паролем.
// Несовпадение возвращается как ErrMismatch, повреждённый хеш как прочая ошибка.
func Verify(hash, raw string) error {
	const op = "password.Verify"
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return fmt.Errorf("%s: %w", op, ErrMismatch)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
