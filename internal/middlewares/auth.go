package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/siddeshwardm/chat-application/internal/auth"
	"github.com/siddeshwardm/chat-application/internal/contextkeys"
	"github.com/siddeshwardm/chat-application/internal/models"
	"github.com/siddeshwardm/chat-application/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// writeAuthError writes JSON-formatted error responses for auth failures
func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// RequireUserAuth verifies the session token from the jwt cookie (or an
// Authorization: Bearer header) and loads the account it names.
func RequireUserAuth(secret string, users *repository.UserRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := extractToken(r)
			if tokenStr == "" {
				writeAuthError(w, http.StatusUnauthorized, "Unauthorized - No Token Provided")
				return
			}
			claims, err := auth.ParseUserToken(tokenStr, secret)
			if err != nil {
				log.Ctx(r.Context()).Debug().Err(err).Msg("session token rejected")
				writeAuthError(w, http.StatusUnauthorized, "Unauthorized - Invalid Token")
				return
			}
			id, err := uuid.Parse(claims.UserID)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Unauthorized - Invalid Token")
				return
			}
			user, err := users.FindByID(r.Context(), id)
			if errors.Is(err, repository.ErrUserNotFound) {
				writeAuthError(w, http.StatusUnauthorized, "User not found")
				return
			}
			if err != nil {
				log.Ctx(r.Context()).Error().Err(err).Msg("auth user lookup failed")
				writeAuthError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), contextkeys.UserClaimsKey, claims)
			ctx = context.WithValue(ctx, contextkeys.UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser returns the account loaded by RequireUserAuth.
func CurrentUser(ctx context.Context) *models.User {
	if u, ok := ctx.Value(contextkeys.UserKey).(*models.User); ok {
		return u
	}
	return nil
}

// GetClaimsFromContext retrieves the UserClaims from the request context.
func GetClaimsFromContext(ctx context.Context) *auth.UserClaims {
	if c, ok := ctx.Value(contextkeys.UserClaimsKey).(*auth.UserClaims); ok {
		return c
	}
	return nil
}

func extractToken(r *http.Request) string {
	if c, err := r.Cookie(auth.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}
