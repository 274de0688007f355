// Package logout реализует HTTP-обработчик выхода пользователя:
// refresh-токен помещается в чёрный список до момента своего истечения.
package logout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/online-class-book/internal/http/response"
	"github.com/magabrotheeeer/online-class-book/internal/lib/sl"
	"github.com/magabrotheeeer/online-class-book/internal/models"
)

// Request — структура входных данных для выхода.
type Request struct {
	Refresh string `json:"refresh"`
}

// Handler обрабатывает запросы на выход пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики отзыва refresh-токена.
type Service interface {
	Logout(ctx context.Context, refreshToken string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP обрабатывает HTTP-запрос на выход.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Err(http.StatusBadRequest, "invalid request body"))
		return
	}
	if req.Refresh == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Err(http.StatusBadRequest, "Refresh token is required"))
		return
	}

	if err := h.service.Logout(r.Context(), req.Refresh); err != nil {
		if errors.Is(err, models.ErrInvalidRefreshToken) {
			log.Info("logout rejected")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Err(http.StatusBadRequest, "Invalid or expired refresh token"))
			return
		}
		log.Error("logout failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Err(http.StatusInternalServerError, "internal error"))
		return
	}

	log.Info("logout success")
	render.JSON(w, r, response.OK("Logout successful", nil))
}
