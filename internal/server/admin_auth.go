package server

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

const adminUser = "admin"

// adminAuthMiddleware guards admin routes with HTTP basic auth. The
// password is checked against a bcrypt hash; with no hash configured the
// routes are disabled.
func adminAuthMiddleware(logger *slog.Logger, passwordHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if passwordHash == "" {
				writeError(w, http.StatusServiceUnavailable, "admin access is not configured")
				return
			}

			user, pass, ok := r.BasicAuth()
			if !ok || user != adminUser ||
				bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(pass)) != nil {
				logger.Warn("admin authentication failed", "remote", r.RemoteAddr)
				w.Header().Set("WWW-Authenticate", `Basic realm="quizarena admin"`)
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
