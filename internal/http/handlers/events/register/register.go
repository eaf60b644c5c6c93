// Package register реализует HTTP-обработчик регистрации на событие.
//
// Перед записью участника проверяется доступ к событию по уровню подписки:
// закрытое событие даёт 403 с кодом TIER_RESTRICTED.
package register

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

// Handler обрабатывает регистрацию участников событий.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	RegisterForEvent(ctx context.Context, p models.Principal, eventID int) (models.AccessDecision, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Регистрация на событие
// @Description Записывает пользователя в участники события. Участники получают напоминания.
// @Tags Events
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID события"
// @Success 200 {object} response.Response "Пользователь зарегистрирован"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или элемент не событие"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.TierRestrictedResponse "Требуется другой уровень"
// @Failure 404 {object} response.ErrorResponse "Событие не найдено"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /events/{id}/registrations [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.events.register"
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
	decision, err := h.service.RegisterForEvent(r.Context(), p, id)
	switch {
	case errors.Is(err, contentservice.ErrContentNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("event not found"))
		return
	case errors.Is(err, contentservice.ErrNotAnEvent):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("content is not an event"))
		return
	case err != nil:
		log.Error("failed to register attendee", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not register for event"))
		return
	}

	if !decision.Granted {
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.TierRestricted(decision))
		return
	}

	log.Info("attendee registered", slog.Int("event_id", id), slog.String("user_uid", p.UserUID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"event_id": id,
		"user_uid": p.UserUID,
	}))
}
