package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/umar/nexttalk-dash/internal/models"
)

type contextKey string

const ViewerKey contextKey = "viewer"

// IdentityMiddleware resolves the viewer of every request. A bearer token,
// when present, must be valid; requests without one act as the fallback
// viewer.
func IdentityMiddleware(jwtSecret string, fallback models.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewer := fallback

			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
					writeError(w, http.StatusUnauthorized, "invalid authorization header")
					return
				}

				claims, err := ValidateToken(parts[1], jwtSecret)
				if err != nil {
					writeError(w, http.StatusUnauthorized, "invalid or expired token")
					return
				}
				viewer = models.User{ID: claims.UserID, Username: claims.Username}
			}

			ctx := context.WithValue(r.Context(), ViewerKey, viewer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ViewerFromContext(ctx context.Context) (models.User, bool) {
	v, ok := ctx.Value(ViewerKey).(models.User)
	return v, ok
}
