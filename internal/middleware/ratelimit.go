package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

type window struct {
	hits   int
	resets time.Time
}

// RateLimit applies a fixed-window per-client limit keyed by client IP.
// Only the submission endpoints are limited; polling and downloads are
// cheap cache reads and stay unthrottled.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	var mu sync.Mutex
	windows := make(map[string]*window)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			now := time.Now()

			mu.Lock()
			win, ok := windows[ip]
			if !ok || now.After(win.resets) {
				if len(windows) > 4096 {
					// Drop stale windows instead of growing without bound.
					for k, v := range windows {
						if now.After(v.resets) {
							delete(windows, k)
						}
					}
				}
				win = &window{resets: now.Add(per)}
				windows[ip] = win
			}
			win.hits++
			over := win.hits > limit
			retryIn := time.Until(win.resets)
			mu.Unlock()

			if over {
				w.Header().Set("Retry-After", strconv.Itoa(int(retryIn.Seconds())+1))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
