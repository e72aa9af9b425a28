package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sergiomanvel/HiveAutomation/internal/auth"
)

// RequestLogger — middleware для логирования HTTP-запросов.
func RequestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Оборачиваем ResponseWriter, чтобы знать статус
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration_ms", duration.Milliseconds(),
			)
		})
	}
}

// responseWriter нужен, чтобы перехватывать код ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type ctxKey string

const claimsKey ctxKey = "userClaims"

// ClaimsFromContext возвращает claims аутентифицированного пользователя,
// положенные в контекст middleware Authenticator.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// Authenticator — middleware аутентификации по bearer-токену.
// Проверка выполняется до любого обращения к БД или кэшу
func Authenticator(tokens *auth.TokenManager, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respondWithMessage(w, http.StatusForbidden, "Acceso denegado", logger)
				return
			}

			// Отрезаем префикс 'Bearer '
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[1] == "" {
				respondWithMessage(w, http.StatusForbidden, "Acceso denegado, token no proporcionado", logger)
				return
			}

			claims, err := tokens.Verify(parts[1])
			if err != nil {
				logger.Warn("token verification failed", "error", err)
				respondWithMessage(w, http.StatusUnauthorized, "Token inválido", logger)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
