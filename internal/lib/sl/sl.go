// Package sl содержит вспомогательные функции для работы с логгером slog.
// Основная цель — упростить формирование структурированных полей лога,
// например, для передачи информации об ошибках.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
// Удобно использовать в логировании для единообразного вывода ошибок.
//
// Пример:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Principal возвращает группу полей субъекта запроса для журнала доступа.
func Principal(userUID, roleType, tier string) slog.Attr {
	return slog.Group("principal",
		slog.String("user_uid", userUID),
		slog.String("role_type", roleType),
		slog.String("tier", tier),
	)
}
