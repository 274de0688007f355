// Package create реализует HTTP-обработчик записи студента на слот
// преподавателя.
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

	"github.com/magabrotheeeer/online-class-book/internal/http/middlewarectx"
	"github.com/magabrotheeeer/online-class-book/internal/http/response"
	"github.com/magabrotheeeer/online-class-book/internal/lib/sl"
	"github.com/magabrotheeeer/online-class-book/internal/models"
)

// Request — структура входных данных для записи на слот.
type Request struct {
	SlotID int64 `json:"slot_id" validate:"required,gt=0"`
}

// Handler управляет HTTP-запросами на запись студента.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики записи на слот.
type Service interface {
	Create(ctx context.Context, studentUID, studentEmail string, slotID int64) (*models.BookingView, error)
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
// @Summary Записаться на слот
// @Description Записывает аутентифицированного студента на слот по идентификатору. Запрещены повторная запись к тому же преподавателю на ту же дату и запись на пересекающееся время.
// @Tags Bookings
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Идентификатор слота"
// @Success 201 {object} response.Response "Запись создана"
// @Failure 400 {object} response.Response "Конфликт записи"
// @Failure 404 {object} response.Response "Слот не найден"
// @Router /book-class-slot [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	studentUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || studentUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Err(http.StatusUnauthorized, "Invalid Access key."))
		return
	}
	studentEmail, _ := r.Context().Value(middlewarectx.Email).(string)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Err(http.StatusBadRequest, "invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		fieldErrs := models.FieldErrors{}
		fieldErrs.Add("slot_id", "This field is required.")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.FieldErrors(fieldErrs))
		return
	}

	booking, err := h.service.Create(r.Context(), studentUID, studentEmail, req.SlotID)
	if err != nil {
		status, msg := mapError(err)
		if status == http.StatusInternalServerError {
			log.Error("failed to book slot", sl.Err(err))
		} else {
			log.Info("booking rejected", sl.Err(err))
		}
		w.WriteHeader(status)
		render.JSON(w, r, response.Err(status, msg))
		return
	}

	log.Info("slot booked", slog.Int64("booking_id", booking.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.Created("Slot booked successfully!", booking))
}

// mapError переводит доменные ошибки в HTTP-код и сообщение ответа.
func mapError(err error) (int, any) {
	switch {
	case errors.Is(err, models.ErrSlotNotFound):
		return http.StatusNotFound, "The slot does not exist."
	case errors.Is(err, models.ErrBookingSameTeacherDay):
		return http.StatusBadRequest, "You have already booked a slot with this teacher for the same date."
	case errors.Is(err, models.ErrBookingTimeConflict):
		return http.StatusBadRequest, "You have already booked a slot for this time range."
	default:
		return http.StatusInternalServerError, "could not book slot"
	}
}
