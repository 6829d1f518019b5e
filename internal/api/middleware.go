package api

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"sync"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const judgeKey contextKey = "judge"

// maxJudgeIDLength bounds the identity string; it doubles as the
// rate-limiter key, so unbounded values are rejected up front.
const maxJudgeIDLength = 128

// JudgeIdentity requires an X-Judge-ID header and attaches it to the
// request context for handlers to read via JudgeFrom. Rankings are
// only as meaningful as the judges behind them, so anonymous requests
// are rejected.
func JudgeIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		judge := r.Header.Get("X-Judge-ID")
		if judge == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "X-Judge-ID header required"})
			return
		}
		if len(judge) > maxJudgeIDLength {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "X-Judge-ID too long"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), judgeKey, judge)))
	})
}

// JudgeFrom returns the judge identity attached by JudgeIdentity, or
// the empty string outside its scope.
func JudgeFrom(ctx context.Context) string {
	judge, _ := ctx.Value(judgeKey).(string)
	return judge
}

// AdminAuthMiddleware guards a route group with a bearer token. An
// empty configured token disables the guard.
func AdminAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			if subtle.ConstantTimeCompare([]byte(auth), []byte("Bearer "+token)) != 1 {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger emits one line per request with the response status
// and the judge identity when the request carried one.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"judge", r.Header.Get("X-Judge-ID"),
			)
		})
	}
}

// rateWindow is one judge's fixed-window counter.
type rateWindow struct {
	start time.Time
	count int
}

// RateLimitMiddleware caps requests per judge within a fixed
// one-minute window. Requests without a judge identity are keyed by
// remote address instead.
func RateLimitMiddleware(requestsPerMinute int) func(http.Handler) http.Handler {
	var (
		mu      sync.Mutex
		windows = make(map[string]*rateWindow)
	)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-Judge-ID")
			if key == "" {
				key = r.RemoteAddr
			}

			now := time.Now()
			mu.Lock()
			if len(windows) > 10000 {
				for k, win := range windows {
					if now.Sub(win.start) >= time.Minute {
						delete(windows, k)
					}
				}
			}
			win := windows[key]
			if win == nil || now.Sub(win.start) >= time.Minute {
				win = &rateWindow{start: now}
				windows[key] = win
			}
			win.count++
			over := win.count > requestsPerMinute
			mu.Unlock()

			if over {
				w.Header().Set("Retry-After", "60")
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
