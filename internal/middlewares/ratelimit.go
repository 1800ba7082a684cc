package middlewares

import (
	"net"
	"net/http"
	"sync"
	"time"
)

type limiterEntry struct {
	tokens     float64
	lastAccess time.Time
}

// RateLimitPerIP is a token bucket per client address, refilled at
// requestsPerMinute. Entries idle for longer than a minute are swept.
func RateLimitPerIP(requestsPerMinute int) func(http.Handler) http.Handler {
	var (
		mu        sync.Mutex
		store     = make(map[string]*limiterEntry)
		lastSweep = time.Now()
		capacity  = float64(requestsPerMinute)
	)

	allow := func(key string, now time.Time) bool {
		mu.Lock()
		defer mu.Unlock()

		if now.Sub(lastSweep) > time.Minute {
			for k, e := range store {
				if now.Sub(e.lastAccess) > time.Minute {
					delete(store, k)
				}
			}
			lastSweep = now
		}

		entry, exists := store[key]
		if !exists {
			store[key] = &limiterEntry{tokens: capacity - 1, lastAccess: now}
			return true
		}
		entry.tokens += now.Sub(entry.lastAccess).Minutes() * capacity
		if entry.tokens > capacity {
			entry.tokens = capacity
		}
		entry.lastAccess = now
		if entry.tokens < 1 {
			return false
		}
		entry.tokens--
		return true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allow(clientIP(r), time.Now()) {
				writeAuthError(w, http.StatusTooManyRequests, "Too many requests, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
