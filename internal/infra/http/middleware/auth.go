package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/xavierca1/leadflow/internal/entity"
)

// UserHeader carries the caller's user id. Token issuance happens upstream.
const UserHeader = "X-User-ID"

type userKey struct{}

func WithUser(ctx context.Context, u *entity.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

func UserFromContext(ctx context.Context) (*entity.User, bool) {
	u, ok := ctx.Value(userKey{}).(*entity.User)
	return u, ok && u != nil
}

// Authenticate resolves the caller from UserHeader and rejects unknown ids.
func Authenticate(users entity.UserRepositoryInterface, logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(UserHeader)
			if id == "" {
				writeError(w, http.StatusUnauthorized, "missing "+UserHeader+" header")
				return
			}

			u, err := users.FindByID(r.Context(), id)
			if errors.Is(err, entity.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "unknown user")
				return
			}
			if err != nil {
				logger.WithError(err).WithField("user_id", id).Error("user lookup failed")
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// RequireRole must run after Authenticate.
func RequireRole(roles ...entity.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			for _, role := range roles {
				if u.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "insufficient role")
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
