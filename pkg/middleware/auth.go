package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/reflaxess123/obedi/pkg/auth"
	"github.com/reflaxess123/obedi/pkg/logger"
	"github.com/reflaxess123/obedi/pkg/response"
)

type userIDKey struct{}

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, id uint) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserIDFromCtx returns the id set by Auth.
func UserIDFromCtx(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDKey{}).(uint)
	return id, ok && id != 0
}

// Auth requires a valid "Authorization: Bearer <access token>" header and
// exposes the caller through UserIDFromCtx. The request logger is tagged
// with user_id.
func Auth(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r)
			if !ok {
				response.Unauthorized(w)
				return
			}

			claims, err := tokens.Validate(raw, auth.TypeAccess)
			if err != nil {
				response.Unauthorized(w)
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				response.Unauthorized(w)
				return
			}

			ctx := WithUserID(r.Context(), userID)
			ctx = logger.InjectLogger(ctx, logger.WithCtx(ctx).With("user_id", userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
