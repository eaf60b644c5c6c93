package access

import (
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/content-platform/internal/lib/metrics"
	"github.com/magabrotheeeer/content-platform/internal/models"
)

var privilegedRoles = map[string]struct{}{
	"admin":         {},
	"super_admin":   {},
	"superadmin":    {},
	"event_manager": {},
	"eventmanager":  {},
}

// IsPrivileged сообщает, может ли принципал выполнять административные изменения.
// Отсутствие принципала всегда даёт false.
func IsPrivileged(p *models.Principal) bool {
	if p == nil {
		return false
	}
	if _, ok := privilegedRoles[strings.ToLower(p.Role.Type)]; ok {
		return true
	}
	_, ok := privilegedRoles[strings.ToLower(p.Role.Name)]
	return ok
}

// Policy проверяет привилегии и пишет запись аудита при отказе.
type Policy struct {
	log *slog.Logger
}

// NewPolicy создает Policy с логгером аудита.
func NewPolicy(log *slog.Logger) *Policy {
	return &Policy{log: log}
}

// Authorize возвращает результат IsPrivileged; op — имя защищаемой операции для аудита.
func (p *Policy) Authorize(principal *models.Principal, op string) bool {
	if IsPrivileged(principal) {
		return true
	}
	metrics.PolicyDenials.Inc()

	attrs := []any{slog.String("op", op)}
	if principal != nil {
		attrs = append(attrs,
			slog.String("user_uid", principal.UserUID),
			slog.String("role_name", principal.Role.Name),
			slog.String("role_type", principal.Role.Type),
		)
	} else {
		attrs = append(attrs, slog.String("user_uid", ""))
	}
	p.log.Warn("privileged operation denied", attrs...)
	return false
}
