// Package classbook предоставляет маршруты для основного приложения.
package classbook

import (
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/online-class-book/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/online-class-book/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/online-class-book/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/online-class-book/internal/http/handlers/auth/register"
	bookingcreate "github.com/magabrotheeeer/online-class-book/internal/http/handlers/booking/create"
	bookinglist "github.com/magabrotheeeer/online-class-book/internal/http/handlers/booking/list"
	"github.com/magabrotheeeer/online-class-book/internal/http/handlers/health"
	"github.com/magabrotheeeer/online-class-book/internal/http/handlers/slot/browse"
	slotcreate "github.com/magabrotheeeer/online-class-book/internal/http/handlers/slot/create"
	slotlist "github.com/magabrotheeeer/online-class-book/internal/http/handlers/slot/list"
	"github.com/magabrotheeeer/online-class-book/internal/http/middlewarectx"
	"github.com/magabrotheeeer/online-class-book/internal/models"
	authservice "github.com/magabrotheeeer/online-class-book/internal/services/auth"
	bookingservice "github.com/magabrotheeeer/online-class-book/internal/services/booking"
	slotservice "github.com/magabrotheeeer/online-class-book/internal/services/slot"

	"log/slog"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, auth *authservice.AuthService, slots *slotservice.SlotService, bookings *bookingservice.BookingService, tokenParser middlewarectx.TokenParser) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, auth).ServeHTTP)
		r.Post("/login", login.New(logger, auth).ServeHTTP)
		r.Post("/refresh", refresh.New(logger, auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(tokenParser, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/logout", logout.New(logger, auth).ServeHTTP)

			r.With(middlewarectx.RequireRole(logger, models.RoleTeacher,
				"You do not have permission to this endpoint.")).
				Get("/teacher-slots", slotlist.New(logger, slots).ServeHTTP)
			r.With(middlewarectx.RequireRole(logger, models.RoleTeacher,
				"You do not have permission to add slots.")).
				Post("/teacher-slots", slotcreate.New(logger, slots).ServeHTTP)

			r.With(middlewarectx.RequireRole(logger, models.RoleStudent,
				"You do not have permission to requested endpoint.")).
				Get("/teacher-available-slot", browse.New(logger, slots).ServeHTTP)

			r.With(middlewarectx.RequireRole(logger, models.RoleStudent,
				"You do not have permission to this endpoint.")).
				Get("/book-class-slot", bookinglist.New(logger, bookings).ServeHTTP)
			r.With(middlewarectx.RequireRole(logger, models.RoleStudent,
				"You do not have permission to book a slot.")).
				Post("/book-class-slot", bookingcreate.New(logger, bookings).ServeHTTP)
		})
	})

	r.Get("/health", health.New())
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
