// Package refresh реализует HTTP-обработчик обновления access-токена
// по действующему refresh-токену.
package refresh

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

// Request — структура входных данных для обновления токена.
type Request struct {
	Refresh string `json:"refresh"`
}

// Handler обрабатывает запросы на обновление access-токена.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики обновления токена.
type Service interface {
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP обрабатывает HTTP-запрос на обновление access-токена.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

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

	access, err := h.service.Refresh(r.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, models.ErrInvalidRefreshToken) {
			log.Info("refresh rejected")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Err(http.StatusBadRequest, "Invalid or expired refresh token"))
			return
		}
		log.Error("refresh failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Err(http.StatusInternalServerError, "internal error"))
		return
	}

	render.JSON(w, r, response.OK("Token refreshed successfully", map[string]any{
		"access": access,
	}))
}
