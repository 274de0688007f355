// Package create реализует HTTP-обработчик создания слота доступности
// преподавателя.
//
// Handler принимает JSON-запрос с границами окна, валидирует их, извлекает
// идентификатор преподавателя из контекста (а не из тела запроса), вызывает
// бизнес-логику создания слота и возвращает созданный слот.
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

// Handler управляет HTTP-запросами на создание слотов.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики создания слотов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания слота.
type Service interface {
	Create(ctx context.Context, teacherUID string, req models.DummySlot) (*models.SlotView, error)
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
// @Summary Создать слот доступности
// @Description Создает окно доступности преподавателя. Время должно быть кратно часу, дата строго в будущем, пересечения с существующими слотами запрещены.
// @Tags Slots
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummySlot true "Границы окна в формате 2006-01-02 15:04"
// @Success 201 {object} response.Response "Слот создан"
// @Failure 400 {object} response.Response "Ошибка валидации"
// @Failure 401 {object} response.Response "Пользователь не авторизован"
// @Failure 403 {object} response.Response "Недостаточно прав"
// @Router /teacher-slots [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.slot.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	teacherUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || teacherUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Err(http.StatusUnauthorized, "Invalid Access key."))
		return
	}

	var req models.DummySlot
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
		for _, verr := range err.(validator.ValidationErrors) {
			fieldErrs.Add(verr.Field(), "This field is required.")
		}
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.FieldErrors(fieldErrs))
		return
	}

	slot, err := h.service.Create(r.Context(), teacherUID, req)
	if err != nil {
		status, msg := mapError(err)
		if status == http.StatusInternalServerError {
			log.Error("failed to create slot", sl.Err(err))
		} else {
			log.Info("slot rejected", sl.Err(err))
		}
		w.WriteHeader(status)
		render.JSON(w, r, response.Err(status, msg))
		return
	}

	log.Info("slot created", slog.Int64("id", slot.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.Created("Your slot created successfully!", slot))
}

// mapError переводит доменные ошибки в HTTP-код и сообщение ответа.
func mapError(err error) (int, any) {
	var fieldErrs models.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		return http.StatusBadRequest, fieldErrs
	case errors.Is(err, models.ErrSlotInvalidRange):
		return http.StatusBadRequest, "Start time must be earlier than end time."
	case errors.Is(err, models.ErrSlotInvalidGranularity):
		return http.StatusBadRequest, "Time must be on the hour (e.g., 5:00, 10:00)."
	case errors.Is(err, models.ErrSlotNotFuture):
		return http.StatusBadRequest, "Slots must be scheduled for future dates."
	case errors.Is(err, models.ErrSlotOverlap):
		return http.StatusBadRequest, "This time slot overlaps with an existing slot."
	default:
		return http.StatusInternalServerError, "could not create slot"
	}
}
