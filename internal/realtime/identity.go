package realtime

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/siddeshwardm/chat-application/internal/auth"
	"github.com/siddeshwardm/chat-application/pkg/log"
)

// ErrUnauthorized rejects a handshake that resolved no identity.
var ErrUnauthorized = errors.New("Unauthorized")

// AuthUserHeader carries the client-asserted identity for clients that can set
// handshake headers.
const AuthUserHeader = "X-Auth-User-Id"

// Handshake is what the transport exposes about an incoming connection.
type Handshake struct {
	Cookie      string
	AuthUserID  string
	QueryUserID string
}

func HandshakeFromRequest(r *http.Request) Handshake {
	return Handshake{
		Cookie:      r.Header.Get("Cookie"),
		AuthUserID:  strings.TrimSpace(r.Header.Get(AuthUserHeader)),
		QueryUserID: strings.TrimSpace(r.URL.Query().Get("userId")),
	}
}

// ParseCookies splits a raw Cookie header into name/value pairs. Values are
// URL-decoded; a value that fails to decode is kept as sent.
func ParseCookies(header string) map[string]string {
	cookies := make(map[string]string)
	if header == "" {
		return cookies
	}

	for _, part := range strings.Split(header, ";") {
		key, val, _ := strings.Cut(strings.TrimSpace(part), "=")
		if key == "" {
			continue
		}
		if decoded, err := url.PathUnescape(val); err == nil {
			val = decoded
		}
		cookies[key] = val
	}
	return cookies
}

// ResolveIdentity picks the connection's user id. A verified jwt cookie wins;
// the client-asserted id is only consulted when verification produced nothing.
func ResolveIdentity(hs Handshake, secret string) (string, error) {
	var userID string

	if token := ParseCookies(hs.Cookie)[auth.CookieName]; token != "" && secret != "" {
		claims, err := auth.ParseUserToken(token, secret)
		if err != nil {
			log.Logger.Debug().Err(err).Msg("ws handshake: jwt cookie rejected, trying fallback identity")
		} else {
			userID = claims.UserID
		}
	}

	if userID == "" {
		userID = hs.AuthUserID
	}
	if userID == "" {
		userID = hs.QueryUserID
	}
	if userID == "" {
		return "", ErrUnauthorized
	}
	return userID, nil
}
