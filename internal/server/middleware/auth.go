package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/thoughtbook/internal/server/handlers"
)

// PaymentAuth создает middleware, которое требует токен оплаты в
// заголовке Authorization и кладет id оплаты и email в контекст
func PaymentAuth(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				logger.Warn("missing or malformed Authorization header", "path", r.URL.Path)
				writeError(w, "payment token required", http.StatusUnauthorized)
				return
			}

			claims, err := handlers.ValidatePaymentToken(jwtConfig, token)
			if err != nil {
				logger.Warn("invalid payment token", "error", err)
				writeError(w, "invalid payment token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), handlers.PaymentIDKey, claims.ID)
			ctx = context.WithValue(ctx, handlers.EmailKey, claims.Email)

			logger.Debug("payment token accepted", "payment_id", claims.ID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken извлекает токен из "Authorization: Bearer <token>"
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
