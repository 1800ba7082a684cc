package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/siddeshwardm/chat-application/pkg/log"
)

type HandlerOptions struct {
	// Secret verifies the jwt cookie. Empty disables cookie verification.
	Secret string
	// AllowedOrigins limits browser origins; empty allows any.
	AllowedOrigins []string
	SendBuffer     int
	PingPeriod     time.Duration
}

// Handler authenticates the handshake, upgrades HTTP → WS and hands the
// connection to the Hub. Rejected handshakes never reach the upgrade.
func Handler(hub *Hub, opts HandlerOptions) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: originChecker(opts.AllowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := ResolveIdentity(HandshakeFromRequest(r), opts.Secret)
		if err != nil {
			handshakes.WithLabelValues("rejected").Inc()
			log.Logger.Warn().Str("remote", r.RemoteAddr).Msg("ws handshake rejected: no identity")
			http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
			return
		}

		id, err := NewConnID()
		if err != nil {
			log.Logger.Error().Err(err).Msg("could not generate connection id")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			handshakes.WithLabelValues("upgrade_failed").Inc()
			log.Logger.Warn().Err(err).Msg("ws upgrade failed")
			return
		}
		handshakes.WithLabelValues("accepted").Inc()

		NewConn(id, userID, ws, hub, opts.SendBuffer, opts.PingPeriod) // goroutines start inside NewConn
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
