// Package slug реализует HTTP-обработчик получения локализованной страницы по slug.
package slug

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/content-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-platform/internal/http/response"
	"github.com/magabrotheeeer/content-platform/internal/lib/sl"
	"github.com/magabrotheeeer/content-platform/internal/models"
	contentservice "github.com/magabrotheeeer/content-platform/internal/services/content"
)

// Handler обрабатывает запросы на получение элемента по slug.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики поиска по slug.
type Service interface {
	GetBySlug(ctx context.Context, p models.Principal, slug, locale string) (*models.Content, models.AccessDecision, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Элемент контента по slug
// @Description Возвращает локализованный элемент по slug. Без locale берётся любая локаль.
// @Tags Content
// @Produce  json
// @Param slug path string true "Slug"
// @Param locale query string false "Локаль"
// @Success 200 {object} response.Response "Элемент и решение о доступе"
// @Failure 403 {object} response.TierRestrictedResponse "Требуется другой уровень"
// @Failure 404 {object} response.ErrorResponse "Элемент не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /content/slug/{slug} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.slug"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	slug := chi.URLParam(r, "slug")
	locale := r.URL.Query().Get("locale")

	p := middlewarectx.PrincipalFromContext(r.Context())
	item, decision, err := h.service.GetBySlug(r.Context(), p, slug, locale)
	if err != nil {
		if errors.Is(err, contentservice.ErrContentNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("content not found"))
			return
		}
		log.Error("failed to read content by slug", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read content"))
		return
	}

	if !decision.Granted {
		log.Info("content access denied", slog.String("slug", slug), slog.String("tier", p.Tier.String()))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.TierRestricted(decision))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"entry":    item,
		"decision": decision,
	}))
}
