package middleware

import (
	"net/http"
	"strings"

	"github.com/Dan9191/task-service/internal/auth"
	"github.com/Dan9191/task-service/internal/models"
	"github.com/sirupsen/logrus"
)

// TokenVerifier is satisfied by service.Service
type TokenVerifier interface {
	VerifyToken(token string) (models.Identity, bool)
}

// AuthMiddleware reads an optional "Authorization: Bearer <token>" header and
// attaches the verified identity to the request context. Missing or invalid
// tokens leave the request unauthenticated; the service decides what that means.
func AuthMiddleware(verifier TokenVerifier, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			id, valid := verifier.VerifyToken(token)
			if !valid {
				log.WithField("path", r.URL.Path).Warn("Ignoring invalid bearer token")
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
