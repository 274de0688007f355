// Package browse реализует HTTP-обработчик выдачи будущих слотов всех
// преподавателей студентам с фильтрами по предмету и дате.
package browse

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/online-class-book/internal/http/response"
	"github.com/magabrotheeeer/online-class-book/internal/lib/pagination"
	"github.com/magabrotheeeer/online-class-book/internal/lib/sl"
	"github.com/magabrotheeeer/online-class-book/internal/models"
)

// Handler обрабатывает запросы студентов на список доступных слотов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выборки доступных слотов.
type Service interface {
	Browse(ctx context.Context, subject *string, date *time.Time, limit, offset int) ([]models.AvailableSlotView, int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Доступные слоты преподавателей
// @Description Возвращает будущие слоты всех преподавателей с данными владельца. Фильтр по предмету — подстрока без учёта регистра.
// @Tags Slots
// @Produce  json
// @Security BearerAuth
// @Param subject query string false "Фильтр по предмету"
// @Param date query string false "Фильтр по дате в формате YYYY-MM-DD"
// @Param page query int false "Номер страницы"
// @Success 200 {object} response.Response "Страница слотов"
// @Failure 400 {object} response.Response "Невалидная дата"
// @Router /teacher-available-slot [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.slot.browse"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var subject *string
	if raw := r.URL.Query().Get("subject"); raw != "" {
		subject = &raw
	}

	var date *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			log.Info("invalid date param", slog.String("date", raw))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Err(http.StatusBadRequest,
				"Please Pass Valid Date Params in 'YYYY-MM-DD' format"))
			return
		}
		date = &parsed
	}

	page := pagination.ParsePage(r)
	limit := pagination.DefaultPageSize
	offset := pagination.Offset(page, limit)

	slots, count, err := h.service.Browse(r.Context(), subject, date, limit, offset)
	if err != nil {
		log.Error("failed to browse slots", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Err(http.StatusInternalServerError, "could not list slots"))
		return
	}

	log.Info("slots listed", slog.Int("count", len(slots)))
	render.JSON(w, r, response.OK("Success",
		pagination.New(r, count, page, limit, slots)))
}
