// Package register реализует HTTP-обработчик регистрации пользователей.
//
// Handler принимает JSON-запрос с данными пользователя, валидирует их,
// вызывает бизнес-логику регистрации и возвращает результат в едином
// конверте ответа. Пароль никогда не попадает в ответ.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/online-class-book/internal/http/response"
	"github.com/magabrotheeeer/online-class-book/internal/lib/sl"
	"github.com/magabrotheeeer/online-class-book/internal/models"
)

// Handler обрабатывает HTTP-запросы на регистрацию.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис бизнес-логики регистрации
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, req models.DummyUser) error
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
// @Summary Зарегистрировать пользователя
// @Description Создает пользователя с ролью Student или Teacher. Для преподавателя обязателен предмет.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.DummyUser true "Данные нового пользователя"
// @Success 201 {object} response.Response "Пользователь создан"
// @Failure 400 {object} response.Response "Некорректный JSON или ошибки полей"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyUser
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Err(http.StatusBadRequest, "invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("email", req.Email), slog.String("role", req.Role))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		fieldErrs := models.FieldErrors{}
		for _, verr := range err.(validator.ValidationErrors) {
			fieldErrs.Add(verr.Field(), "This field is not valid.")
		}
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.FieldErrors(fieldErrs))
		return
	}

	if err := h.service.Register(r.Context(), req); err != nil {
		var fieldErrs models.FieldErrors
		if errors.As(err, &fieldErrs) {
			log.Info("registration rejected", sl.Err(fieldErrs))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.FieldErrors(fieldErrs))
			return
		}
		log.Error("registration failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Err(http.StatusInternalServerError, "failed to register user"))
		return
	}

	log.Info("user registered", slog.String("email", req.Email))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.Created("User registered successfully!", nil))
}
