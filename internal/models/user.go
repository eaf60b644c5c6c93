package models

import "time"

// User представляет зарегистрированного пользователя платформы.
type User struct {
	UUID         string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта
	Username     string    // Имя пользователя (уникальное)
	PasswordHash string    // Хэш пароля пользователя
	RoleName     string    // Имя роли, например "Mentor"
	RoleType     string    // Тип роли, например "mentor"
	Tier         Tier      // Текущий уровень подписки
	CreatedAt    time.Time // Дата регистрации
}

// Principal строит принципала из учётной записи пользователя.
func (u User) Principal() Principal {
	tier := u.Tier
	if tier == "" {
		tier = TierFree
	}
	return Principal{
		UserUID:       u.UUID,
		Username:      u.Username,
		Tier:          tier,
		Role:          NewRole(u.RoleName, u.RoleType),
		Authenticated: true,
	}
}
