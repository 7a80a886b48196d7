// Package feature реализует HTTP-обработчик проверки одного токена
// возможности для текущего пользователя.
package feature

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/oficinacloud/oficina-backend/internal/http/middlewarectx"
	"github.com/oficinacloud/oficina-backend/internal/http/response"
)

// Service описывает интерфейс проверки возможности.
type Service interface {
	HasFeature(ctx context.Context, userUID, token string) bool
}

// Handler обрабатывает запросы проверки возможности.
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
// @Summary Проверка токена возможности
// @Description Сообщает, доступна ли пользователю возможность с указанным токеном.
// @Tags Entitlement
// @Produce  json
// @Security BearerAuth
// @Param feature path string true "Токен возможности, например inventory"
// @Success 200 {object} response.Response "Результат проверки"
// @Failure 400 {object} response.ErrorResponse "Не указан токен возможности"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Router /entitlement/features/{feature} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlement.feature"

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

	token := chi.URLParam(r, "feature")
	if token == "" {
		log.Error("feature token missing in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("feature token is required"))
		return
	}

	allowed := h.service.HasFeature(r.Context(), userUID, token)

	log.Info("feature check completed",
		slog.String("user_uid", userUID),
		slog.String("feature", token),
		slog.Bool("allowed", allowed))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"feature": token,
		"allowed": allowed,
	}))
}
