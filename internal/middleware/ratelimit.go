package middleware

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Limiter is satisfied by ratelimit.Limiter
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// RateLimit rejects clients that exceed their bucket with 429. Limiter
// errors let the request through.
func RateLimit(limiter Limiter, proxies TrustedProxies, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := proxies.ClientIP(r)
			key := r.URL.Path + ":" + ip
			allowed, wait, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.WithError(err).Warn("Rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				log.WithFields(logrus.Fields{"path": r.URL.Path, "client_ip": ip}).Warn("Rate limit exceeded")
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"message": "Too Many Requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
