// Package read реализует HTTP-обработчик получения элемента контента по ID.
//
// Отсутствующий элемент даёт 404, элемент недоступного уровня даёт 403
// с кодом TIER_RESTRICTED и списком уровней, открывающих доступ.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/content-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-platform/internal/http/response"
	"github.com/magabrotheeeer/content-platform/internal/lib/sl"
	"github.com/magabrotheeeer/content-platform/internal/models"
	contentservice "github.com/magabrotheeeer/content-platform/internal/services/content"
)

// Handler обрабатывает запросы на получение элемента контента.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения элемента.
type Service interface {
	Get(ctx context.Context, p models.Principal, id int) (*models.Content, models.AccessDecision, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Элемент контента
// @Description Возвращает элемент, если уровень подписки вызывающего его открывает.
// @Tags Content
// @Produce  json
// @Param id path int true "ID элемента"
// @Success 200 {object} response.Response "Элемент и решение о доступе"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 403 {object} response.TierRestrictedResponse "Требуется другой уровень"
// @Failure 404 {object} response.ErrorResponse "Элемент не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /content/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	p := middlewarectx.PrincipalFromContext(r.Context())
	item, decision, err := h.service.Get(r.Context(), p, id)
	if err != nil {
		if errors.Is(err, contentservice.ErrContentNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("content not found"))
			return
		}
		log.Error("failed to read content", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read content"))
		return
	}

	if !decision.Granted {
		log.Info("content access denied", slog.Int("id", id), slog.String("tier", p.Tier.String()))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.TierRestricted(decision))
		return
	}

	log.Info("content read", slog.Int("id", id), slog.String("reason", string(decision.Reason)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"entry":    item,
		"decision": decision,
	}))
}
