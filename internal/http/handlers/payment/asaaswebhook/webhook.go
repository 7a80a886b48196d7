// Package asaaswebhook реализует HTTP-обработчик входящих событий платёжного
// провайдера Asaas.
//
// Запросы аутентифицируются общим секретом в заголовке asaas-access-token.
// Провайдер всегда получает 200, кроме ошибок аутентификации (401), разбора
// payload (400) и внутренних сбоев (500), иначе он устраивает шторм повторов.
package asaaswebhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/oficinacloud/oficina-backend/internal/http/response"
	"github.com/oficinacloud/oficina-backend/internal/lib/sl"
	"github.com/oficinacloud/oficina-backend/internal/services/billing"
)

// AccessTokenHeader — заголовок с общим секретом Asaas.
const AccessTokenHeader = "asaas-access-token"

// Service описывает интерфейс обработки платёжного события.
type Service interface {
	ProcessEvent(ctx context.Context, evt billing.ProviderEvent) (billing.Outcome, error)
}

// Handler обрабатывает webhook-запросы Asaas.
type Handler struct {
	log         *slog.Logger
	service     Service
	accessToken string
}

// New создает новый Handler с переданным логгером, сервисом и секретом.
func New(log *slog.Logger, service Service, accessToken string) *Handler {
	return &Handler{
		log:         log,
		service:     service,
		accessToken: accessToken,
	}
}

// Payload — формат webhook-события Asaas.
type Payload struct {
	Event   string `json:"event"`
	Payment struct {
		ID                string  `json:"id"`
		Value             float64 `json:"value"`
		ExternalReference string  `json:"externalReference"`
		CustomerEmail     string  `json:"customerEmail"`
		Description       string  `json:"description"` // составная строка тарифа, например "premium_mensal"
	} `json:"payment"`
}

// ServeHTTP godoc
// @Summary Webhook событий Asaas
// @Description Принимает платёжное событие Asaas и обновляет состояние подписки пользователя.
// @Tags Webhook
// @Accept  json
// @Produce  json
// @Param asaas-access-token header string true "Общий секрет провайдера"
// @Success 200 {object} map[string]any "Событие обработано или проигнорировано"
// @Failure 400 {object} response.ErrorResponse "Некорректный payload"
// @Failure 401 {object} response.ErrorResponse "Неверный секрет"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /webhooks/asaas [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.asaaswebhook"
	log := h.log.With(slog.String("op", op))

	token := r.Header.Get(AccessTokenHeader)
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.accessToken)) != 1 {
		log.Error("invalid or missing access token")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid access token"))
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
	if payload.Event == "" {
		log.Error("webhook payload missing event name")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("event is required"))
		return
	}

	outcome, err := h.service.ProcessEvent(r.Context(), billing.ProviderEvent{
		Provider:          "asaas",
		Event:             payload.Event,
		Email:             payload.Payment.CustomerEmail,
		ExternalReference: payload.Payment.ExternalReference,
		PlanType:          payload.Payment.Description,
		Amount:            payload.Payment.Value,
		TransactionID:     payload.Payment.ID,
		Payload:           body,
	})
	if err != nil {
		log.Error("failed to process webhook event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to process event"))
		return
	}

	if !outcome.Handled {
		log.Info("webhook event ignored", slog.String("event", payload.Event))
		render.JSON(w, r, map[string]any{"success": true, "ignored": true})
		return
	}

	log.Info("webhook processed successfully",
		slog.String("event", payload.Event),
		slog.String("user_uid", outcome.UserUID),
		slog.String("status", outcome.Status))
	render.JSON(w, r, map[string]any{"success": true})
}
