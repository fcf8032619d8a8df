package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/brickvest/brickvest-be/internal/auth"
	"github.com/brickvest/brickvest-be/internal/http/respond"
	"github.com/brickvest/brickvest-be/internal/models"
	"github.com/brickvest/brickvest-be/internal/storage"
)

type contextKey string

const userContextKey contextKey = "authenticated-user"

// Authenticator guards routes behind bearer-token authentication. The user
// row is loaded on every request so deactivated accounts lose access as soon
// as the flag lands, not when their token expires.
type Authenticator struct {
	tokens *auth.TokenManager
	users  storage.UserStore
	logger *logrus.Logger
}

// NewAuthenticator constructs the middleware.
func NewAuthenticator(tokens *auth.TokenManager, users storage.UserStore, logger *logrus.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, logger: logger}
}

// Protect rejects requests without a valid bearer token and stores the
// authenticated user in the request context.
func (a *Authenticator) Protect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			respond.Error(w, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}

		claims, err := a.tokens.Parse(strings.TrimSpace(tokenString))
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		user, err := a.users.GetUser(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				respond.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			a.logger.WithError(err).Error("load authenticated user")
			respond.Error(w, http.StatusInternalServerError, "failed to authenticate request")
			return
		}
		if !user.IsActive {
			respond.Error(w, http.StatusForbidden, "account is deactivated")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// RequireRole wraps Protect and additionally rejects users without the role.
func (a *Authenticator) RequireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return a.Protect(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r.Context())
		if !ok || user.Role != role {
			respond.Error(w, http.StatusForbidden, "insufficient permissions")
			return
		}
		next(w, r)
	})
}

// RequireAdmin restricts the route to admin users.
func (a *Authenticator) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return a.RequireRole(models.RoleAdmin, next)
}

// UserFrom extracts the authenticated user placed by Protect.
func UserFrom(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey).(models.User)
	return user, ok
}
