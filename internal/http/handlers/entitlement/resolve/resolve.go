// Package resolve реализует HTTP-обработчик получения статуса доступа
// текущего пользователя.
//
// UID берётся из контекста, заполненного JWT middleware. Обработчик никогда
// не возвращает ошибку вычисления: сервис деградирует до ограниченного
// доступа, и клиент всегда получает валидный статус.
package resolve

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/oficinacloud/oficina-backend/internal/http/middlewarectx"
	"github.com/oficinacloud/oficina-backend/internal/http/response"
	"github.com/oficinacloud/oficina-backend/internal/models"
)

// Service описывает интерфейс вычисления статуса доступа.
type Service interface {
	Resolve(ctx context.Context, userUID string) *models.EntitlementStatus
}

// Handler обрабатывает запросы статуса доступа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статус доступа текущего пользователя
// @Description Возвращает вычисленный статус доступа: активность, тариф, разрешения и остаток дней.
// @Tags Entitlement
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Статус доступа"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Router /entitlement [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlement.resolve"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	status := h.service.Resolve(r.Context(), userUID)

	log.Info("entitlement resolved",
		slog.String("user_uid", userUID),
		slog.String("source", status.Source),
		slog.Bool("is_active", status.IsActive))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"entitlement": status,
	}))
}
