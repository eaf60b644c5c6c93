// Package list реализует HTTP-обработчик выдачи ленты контента,
// отфильтрованной по уровню подписки вызывающего.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/content-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-platform/internal/http/response"
	"github.com/magabrotheeeer/content-platform/internal/lib/sl"
	"github.com/magabrotheeeer/content-platform/internal/models"
)

// Handler обрабатывает запросы на получение списка контента.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики получения списка.
type Service interface {
	List(ctx context.Context, p models.Principal, base models.ContentFilter) ([]*models.Content, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Лента контента
// @Description Возвращает элементы, видимые уровню подписки вызывающего.
// @Tags Content
// @Produce  json
// @Param kind query string false "Тип контента" Enums(blog_post, event, case_study, resource)
// @Param locale query string false "Локаль"
// @Param limit query int false "Размер страницы (по умолчанию 20, максимум 100)"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response "Список элементов"
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /content [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	filter, err := parseFilter(r)
	if err != nil {
		log.Error("failed to parse query", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	p := middlewarectx.PrincipalFromContext(r.Context())
	items, err := h.service.List(r.Context(), p, filter)
	if err != nil {
		log.Error("failed to list content", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list content"))
		return
	}

	log.Info("content listed", slog.Int("count", len(items)), slog.String("tier", p.Tier.String()))
	if items == nil {
		items = []*models.Content{}
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"items": items,
	}))
}

type queryError string

func (e queryError) Error() string { return string(e) }

func parseFilter(r *http.Request) (models.ContentFilter, error) {
	q := r.URL.Query()
	f := models.ContentFilter{
		Kind:   models.ContentKind(q.Get("kind")),
		Locale: q.Get("locale"),
	}
	if f.Kind != "" && !f.Kind.Valid() {
		return f, queryError("invalid kind")
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, queryError("invalid limit")
		}
		f.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, queryError("invalid offset")
		}
		f.Offset = n
	}
	return f, nil
}
