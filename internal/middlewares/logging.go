package middlewares

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/siddeshwardm/chat-application/pkg/log"
)

// RequestLogger attaches a request-scoped zerolog logger to the context and
// logs one line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := log.Logger.With().
			Str("request_id", uuid.NewString()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(logger.WithContext(r.Context())))

		logger.Debug().Int("status", rec.status).Dur("took", time.Since(start)).Msg("request")
	})
}
