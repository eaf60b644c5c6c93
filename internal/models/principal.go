package models

import "strings"

// Role описывает роль пользователя. Имя и тип хранятся в нижнем регистре,
// нормализация выполняется один раз в NewRole.
type Role struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// NewRole создает роль с нормализованными именем и типом.
func NewRole(name, roleType string) Role {
	return Role{
		Name: strings.ToLower(strings.TrimSpace(name)),
		Type: strings.ToLower(strings.TrimSpace(roleType)),
	}
}

// IsZero сообщает об отсутствии роли (анонимный запрос).
func (r Role) IsZero() bool {
	return r.Name == "" && r.Type == ""
}

// Стандартные роли платформы.
var (
	RoleAuthenticated = NewRole("Authenticated", "authenticated")
	RoleMentor        = NewRole("Mentor", "mentor")
	RoleAdmin         = NewRole("Admin", "admin")
	RoleEventManager  = NewRole("Event Manager", "event_manager")
)

// Principal — субъект запроса.
type Principal struct {
	UserUID       string `json:"user_uid,omitempty"`
	Username      string `json:"username,omitempty"`
	Tier          Tier   `json:"tier"`
	Role          Role   `json:"role"`
	Authenticated bool   `json:"authenticated"`
}

// Anonymous возвращает принципала для запроса без идентификации.
func Anonymous() Principal {
	return Principal{Tier: TierFree}
}
