package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/online-class-book/internal/http/response"
)

// RequireRole возвращает middleware, пропускающий только пользователей
// с ролью role. Несовпадение роли даёт 403 с сообщением msg конечной точки.
// Роль — закрытое перечисление, проверка выполняется сравнением на равенство.
func RequireRole(log *slog.Logger, role, msg string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			callerRole, ok := r.Context().Value(Role).(string)
			if !ok || callerRole != role {
				log.Info("role check failed",
					slog.String("required", role),
					slog.String("actual", callerRole))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Err(http.StatusForbidden, msg))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
