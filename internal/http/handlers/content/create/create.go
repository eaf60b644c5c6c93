// Package create реализует HTTP-обработчик создания элемента контента.
//
// Доступен только привилегированным ролям (см. middlewarectx.RequirePrivileged).
// Уровни доступа проходят проверку ParseTier, даты принимаются в RFC 3339.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/content-platform/internal/http/response"
	"github.com/magabrotheeeer/content-platform/internal/lib/sl"
	"github.com/magabrotheeeer/content-platform/internal/models"
	contentservice "github.com/magabrotheeeer/content-platform/internal/services/content"
)

// Handler управляет HTTP-запросами на создание элементов контента.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики контента
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания элемента.
type Service interface {
	Create(ctx context.Context, c models.Content) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать элемент контента
// @Description Создает пост, событие, кейс или ресурс. Пустой allowed_tiers делает элемент публичным.
// @Tags Content
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyContent true "Данные элемента"
// @Success 200 {object} response.Response "ID созданного элемента"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 409 {object} response.ErrorResponse "Slug уже занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /content [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	id, err := h.service.Create(r.Context(), item)
	if err != nil {
		if errors.Is(err, contentservice.ErrSlugTaken) {
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("slug already exists for locale"))
			return
		}
		log.Error("failed to create content", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create content"))
		return
	}

	log.Info("content created", slog.Int("id", id), slog.String("kind", string(item.Kind)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"last_added_id": id,
	}))
}
