package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	pkgAuth "github.com/stockroomhq/stockroom-backend/pkg/auth"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

type ctxKey string

const ctxEmail ctxKey = "email"

// Auth validates a bearer token and seeds the request context with the
// authenticated admin's email.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxEmail, claims.Email)
			if logg != nil {
				ctx = logg.WithField(ctx, "admin", claims.Email)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EmailFromContext returns the authenticated admin's email, if any.
func EmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(ctxEmail).(string)
	return email
}
