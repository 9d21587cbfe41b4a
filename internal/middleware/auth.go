package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hongminglow/taskboard-be/internal/auth"
	"github.com/hongminglow/taskboard-be/internal/http/respond"
)

// TokenParser resolves a bearer token to the user id it was issued for.
type TokenParser interface {
	Parse(token string) (uuid.UUID, error)
}

type contextKey struct{ name string }

var userIDKey = &contextKey{"user-id"}

// Authenticate rejects requests without a valid bearer token and stores the
// caller's id in the request context.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respond.Error(w, http.StatusUnauthorized, respond.KindUnauthenticated, "authorization header required")
				return
			}
			scheme, token, ok := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				respond.Error(w, http.StatusUnauthorized, respond.KindUnauthenticated, "invalid authorization format")
				return
			}

			userID, err := tokens.Parse(token)
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, auth.ErrExpiredToken) {
					msg = "token expired"
				}
				respond.Error(w, http.StatusUnauthorized, respond.KindUnauthenticated, msg)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserID returns the authenticated user id stored by Authenticate.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
