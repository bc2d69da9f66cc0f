package middleware

import (
	"net/http"

	"suitup-be/internal/auth"
	"suitup-be/internal/logger"
	"suitup-be/internal/utils"

	"go.uber.org/zap"
)

type TokenParser interface {
	Parse(token string) (*auth.Identity, error)
}

// Auth resolves the session token, if any, into the request context.
// Requests with a missing or invalid token continue anonymously and the
// handlers decide whether identity is required.
func Auth(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := parser.Parse(tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Debug("ignoring invalid session token",
					zap.String("layer", "middleware"),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			ctx := utils.SetUserContext(r.Context(), id.UserID, id.Email, id.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
