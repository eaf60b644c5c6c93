// Package webhook реализует HTTP-обработчик уведомлений платёжного провайдера.
//
// Тело запроса подписывается HMAC-SHA256, подпись в base64 передаётся в заголовке
// X-Api-Signature. Неизвестные события подтверждаются и игнорируются.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/content-platform/internal/lib/sl"
	"github.com/magabrotheeeer/content-platform/internal/paymentprovider"
	subscriptionservice "github.com/magabrotheeeer/content-platform/internal/services/subscription"
)

// SignatureHeader — заголовок с подписью тела уведомления.
const SignatureHeader = "X-Api-Signature"

const maxBodySize = 1 << 20

// Service описывает обработку уведомления провайдера.
type Service interface {
	ProcessWebhookEvent(ctx context.Context, payload *paymentprovider.WebhookPayload) error
}

// Handler принимает уведомления провайдера.
type Handler struct {
	log           *slog.Logger // Логгер для записи информации и ошибок
	service       Service
	webhookSecret string // Секрет для проверки подписи
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: secret,
	}
}

// Sign возвращает подпись тела для заголовка X-Api-Signature.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// verifySignature отклоняет любую подпись, пока секрет не настроен.
func (h *Handler) verifySignature(body []byte, signature string) bool {
	if h.webhookSecret == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(h.webhookSecret, body)), []byte(signature))
}

// ServeHTTP godoc
// @Summary Уведомление платёжного провайдера
// @Description Активирует, отменяет или удаляет подписку по событию платежа.
// @Tags Payments
// @Accept  json
// @Param X-Api-Signature header string true "HMAC-SHA256 тела в base64"
// @Success 200 "Уведомление принято"
// @Failure 400 "Некорректное тело"
// @Failure 401 "Неверная подпись"
// @Failure 500 "Ошибка обработки"
// @Failure 503 "Секрет подписи не настроен"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if h.webhookSecret == "" {
		log.Error("webhook secret is not configured, rejecting request")
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get(SignatureHeader)
	if signature == "" || !h.verifySignature(body, signature) {
		log.Error("invalid or missing webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var payload paymentprovider.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.service.ProcessWebhookEvent(r.Context(), &payload); err != nil {
		if errors.Is(err, subscriptionservice.ErrSubscriptionNotFound) {
			log.Warn("webhook for unknown subscription", slog.String("object_id", payload.Object.ID))
			w.WriteHeader(http.StatusOK)
			return
		}
		log.Error("failed to process webhook event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Info("webhook processed successfully", slog.String("event", payload.Event), slog.String("object_id", payload.Object.ID))
	w.WriteHeader(http.StatusOK)
}
