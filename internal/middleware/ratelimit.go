package middleware

import (
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/sakif/gaia-lore/internal/ratelimit"
)

// RateLimitConfig sets the per-client allowance for one window.
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

const rateLimitWindow = time.Minute

// RateLimit rejects clients that exceed RequestsPerMinute+Burst requests in
// a one-minute window with 429. Counter errors let the request through.
func RateLimit(counter ratelimit.Counter, cfg RateLimitConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	limit := cfg.RequestsPerMinute
	ceiling := int64(limit + cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			count, err := counter.IncrWithExpire(r.Context(), ClientFingerprint(r), rateLimitWindow)
			if err != nil {
				logger.Warn("rate limiter unavailable, allowing request", slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			remaining := max(int64(limit)-count, 0)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > ceiling {
				rateLimitedTotal.Inc()
				w.Header().Set("Retry-After", strconv.Itoa(int(rateLimitWindow.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":   "rate_limited",
					"message": "too many requests, try again later",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientFingerprint identifies a client by IP and user agent without
// storing either: the key is a truncated BLAKE2b-256 of both.
// RemoteAddr is expected to have been rewritten by chi's RealIP.
func ClientFingerprint(r *http.Request) string {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	sum := blake2b.Sum256([]byte(ip + "|" + r.UserAgent()))
	return hex.EncodeToString(sum[:12])
}
