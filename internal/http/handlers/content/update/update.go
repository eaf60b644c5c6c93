// Package update реализует HTTP-обработчик полной замены элемента контента.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/content-platform/internal/http/response"
	"github.com/magabrotheeeer/content-platform/internal/lib/sl"
	"github.com/magabrotheeeer/content-platform/internal/models"
	contentservice "github.com/magabrotheeeer/content-platform/internal/services/content"
)

// Handler обрабатывает запросы на изменение элемента контента.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики изменения элемента.
type Service interface {
	Update(ctx context.Context, id int, c models.Content) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Изменить элемент контента
// @Description Полностью заменяет элемент. Кеш элемента сбрасывается.
// @Tags Content
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID элемента"
// @Param request body models.DummyContent true "Новые данные элемента"
// @Success 200 {object} response.Response "Элемент изменён"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Элемент не найден"
// @Failure 409 {object} response.ErrorResponse "Slug уже занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /content/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.update"
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

	var req models.DummyContent
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	item, err := contentservice.FromRequest(req)
	if err != nil {
		log.Error("invalid content", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("invalid content: check tiers, dates and kind"))
		return
	}

	switch err := h.service.Update(r.Context(), id, item); {
	case errors.Is(err, contentservice.ErrContentNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("content not found"))
		return
	case errors.Is(err, contentservice.ErrSlugTaken):
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("slug already exists for locale"))
		return
	case err != nil:
		log.Error("failed to update content", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update content"))
		return
	}

	log.Info("content updated", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"updated_id": id,
	}))
}
