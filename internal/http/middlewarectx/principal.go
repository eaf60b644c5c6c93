// Package middlewarectx содержит HTTP middleware для определения субъекта запроса
// и проверки его прав.
//
// PrincipalMiddleware читает JWT из заголовка Authorization и кладёт в контекст
// принципала с актуальными уровнем и ролью. Запрос без заголовка обслуживается
// от имени анонимного принципала, неверный токен даёт 401, сбой хранилища 500.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/content-platform/internal/http/response"
	"github.com/magabrotheeeer/content-platform/internal/lib/sl"
	"github.com/magabrotheeeer/content-platform/internal/models"
	authservice "github.com/magabrotheeeer/content-platform/internal/services/auth"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// PrincipalKey — ключ принципала в контексте.
const PrincipalKey Key = "principal"

// Resolver разрешает принципала по JWT.
type Resolver interface {
	ResolvePrincipal(ctx context.Context, token string) (models.Principal, error)
}

// WithPrincipal возвращает контекст с принципалом.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFromContext возвращает принципала запроса или анонимного, если его нет.
func PrincipalFromContext(ctx context.Context) models.Principal {
	p, ok := ctx.Value(PrincipalKey).(models.Principal)
	if !ok {
		return models.Anonymous()
	}
	return p
}

// PrincipalMiddleware возвращает middleware, определяющий принципала запроса.
func PrincipalMiddleware(resolver Resolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.PrincipalMiddleware"

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), models.Anonymous())))
				return
			}

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenStr == "" {
				log.Warn("malformed authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}

			p, err := resolver.ResolvePrincipal(r.Context(), tokenStr)
			if err != nil && !errors.Is(err, authservice.ErrInvalidToken) {
				log.Error("failed to resolve principal", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
				return
			}
			if err != nil {
				log.Warn("invalid or expired token", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
