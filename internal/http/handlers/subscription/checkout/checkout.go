// Package checkout реализует HTTP-обработчик оформления платной подписки.
//
// Обработчик создаёт подписку в статусе pending и платёж у провайдера,
// возвращая адрес страницы подтверждения оплаты.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/content-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-platform/internal/http/response"
	"github.com/magabrotheeeer/content-platform/internal/lib/sl"
	"github.com/magabrotheeeer/content-platform/internal/models"
	subscriptionservice "github.com/magabrotheeeer/content-platform/internal/services/subscription"
)

// Request — запрос на оформление подписки.
type Request struct {
	Tier      string `json:"tier" validate:"required"`
	ReturnURL string `json:"return_url" validate:"required,url"`
}

// Service описывает интерфейс бизнес-логики оформления.
type Service interface {
	Checkout(ctx context.Context, p models.Principal, tier models.Tier, returnURL string) (*subscriptionservice.CheckoutResult, error)
}

// Handler обрабатывает запросы на оформление подписки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
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
// @Summary Оформить подписку
// @Description Создает подписку на платный уровень и платёж. Возвращает confirmation_url.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Уровень и адрес возврата"
// @Success 200 {object} response.Response "Платёж создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Неизвестный или бесплатный уровень"
// @Failure 502 {object} response.ErrorResponse "Ошибка платёжного провайдера"
// @Router /subscriptions/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.checkout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
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

	tier, err := models.ParseTier(req.Tier)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("unknown tier"))
		return
	}

	p := middlewarectx.PrincipalFromContext(r.Context())
	res, err := h.service.Checkout(r.Context(), p, tier, req.ReturnURL)
	if err != nil {
		if errors.Is(err, subscriptionservice.ErrPlanNotFound) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("no paid plan for tier"))
			return
		}
		log.Error("checkout failed", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("could not create payment"))
		return
	}

	log.Info("checkout created", slog.String("subscription_id", res.SubscriptionID))
	render.JSON(w, r, response.StatusOKWithData(res))
}
