// Package stripewebhook реализует HTTP-обработчик входящих событий платёжного
// провайдера Stripe.
//
// Запросы аутентифицируются bearer-токеном в заголовке Authorization.
// Семантика ответов совпадает с обработчиком Asaas: 200 на успех и
// намеренный no-op, 401 на ошибку аутентификации, 400 на кривой payload,
// 500 на внутренний сбой.
package stripewebhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/oficinacloud/oficina-backend/internal/http/response"
	"github.com/oficinacloud/oficina-backend/internal/lib/sl"
	"github.com/oficinacloud/oficina-backend/internal/services/billing"
)

// Service описывает интерфейс обработки платёжного события.
type Service interface {
	ProcessEvent(ctx context.Context, evt billing.ProviderEvent) (billing.Outcome, error)
}

// Handler обрабатывает webhook-запросы Stripe.
type Handler struct {
	log     *slog.Logger
	service Service
	token   string
}

// New создает новый Handler с переданным логгером, сервисом и токеном.
func New(log *slog.Logger, service Service, token string) *Handler {
	return &Handler{
		log:     log,
		service: service,
		token:   token,
	}
}

// Payload — формат webhook-события Stripe.
type Payload struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID            string            `json:"id"`
			AmountTotal   int64             `json:"amount_total"` // сумма в центах
			CustomerEmail string            `json:"customer_email"`
			Metadata      map[string]string `json:"metadata"` // user_uid, plan_type
		} `json:"object"`
	} `json:"data"`
}

// ServeHTTP godoc
// @Summary Webhook событий Stripe
// @Description Принимает платёжное событие Stripe и обновляет состояние подписки пользователя.
// @Tags Webhook
// @Accept  json
// @Produce  json
// @Param Authorization header string true "Bearer токен"
// @Success 200 {object} map[string]any "Событие обработано или проигнорировано"
// @Failure 400 {object} response.ErrorResponse "Некорректный payload"
// @Failure 401 {object} response.ErrorResponse "Неверный токен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /webhooks/stripe [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.stripewebhook"
	log := h.log.With(slog.String("op", op))

	authHeader := r.Header.Get("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if !strings.HasPrefix(authHeader, "Bearer ") ||
		subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) != 1 {
		log.Error("invalid or missing bearer token")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid token"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read request body"))
		return
	}
	defer func() {
		_ = r.Body.Close()
	}()

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid payload"))
		return
	}
	if payload.Type == "" {
		log.Error("webhook payload missing event type")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("type is required"))
		return
	}

	outcome, err := h.service.ProcessEvent(r.Context(), billing.ProviderEvent{
		Provider:        "stripe",
		Event:           payload.Type,
		Email:           payload.Data.Object.CustomerEmail,
		MetadataUserUID: payload.Data.Object.Metadata["user_uid"],
		PlanType:        payload.Data.Object.Metadata["plan_type"],
		Amount:          float64(payload.Data.Object.AmountTotal) / 100,
		TransactionID:   payload.Data.Object.ID,
		Payload:         body,
	})
	if err != nil {
		log.Error("failed to process webhook event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to process event"))
		return
	}

	if !outcome.Handled {
		log.Info("webhook event ignored", slog.String("type", payload.Type))
		render.JSON(w, r, map[string]any{"success": true, "ignored": true})
		return
	}

	log.Info("webhook processed successfully",
		slog.String("type", payload.Type),
		slog.String("user_uid", outcome.UserUID),
		slog.String("status", outcome.Status))
	render.JSON(w, r, map[string]any{"success": true})
}
