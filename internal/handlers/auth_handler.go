package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/siddeshwardm/chat-application/config"
	"github.com/siddeshwardm/chat-application/internal/auth"
	"github.com/siddeshwardm/chat-application/internal/middlewares"
	"github.com/siddeshwardm/chat-application/internal/services"

	"github.com/rs/zerolog/log"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	ProfilePic string `json:"profilePic"`
}

const sessionMaxAge = 7 * 24 * time.Hour

func cookieSameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// setSessionCookie stores token in the httpOnly jwt cookie. SameSite=None
// always goes out Secure, browsers drop it otherwise.
func setSessionCookie(w http.ResponseWriter, cfg config.Config, token string, maxAge time.Duration) {
	sameSite := cookieSameSite(cfg.CookieSameSite)
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: sameSite,
		Secure:   cfg.CookieSecure || sameSite == http.SameSiteNoneMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, cfg config.Config) {
	setSessionCookie(w, cfg, "", -time.Second)
}

// ===== USER AUTH HANDLERS =====

// POST /api/auth/signup
func SignupHandler(svc *services.AuthService, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req services.SignupInput
		if !decodeJSON(w, r, &req) {
			return
		}
		user, token, err := svc.Signup(r.Context(), req)
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, services.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			log.Ctx(r.Context()).Error().Err(err).Msg("signup failed")
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		setSessionCookie(w, cfg, token, sessionMaxAge)
		writeJSON(w, http.StatusCreated, user)
	}
}

// POST /api/auth/login
func LoginHandler(svc *services.AuthService, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		user, token, err := svc.Login(r.Context(), req.Email, req.Password)
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			log.Ctx(r.Context()).Error().Err(err).Msg("login failed")
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		setSessionCookie(w, cfg, token, sessionMaxAge)
		writeJSON(w, http.StatusOK, user)
	}
}

// POST /api/auth/logout
func LogoutHandler(cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clearSessionCookie(w, cfg)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
	}
}

// GET /api/auth/check
func CheckAuthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.CurrentUser(r.Context())
		if user == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// PUT /api/auth/update-profile
func UpdateProfileHandler(svc *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me := middlewares.CurrentUser(r.Context())
		if me == nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		var req UpdateProfileRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		user, err := svc.UpdateProfile(r.Context(), me.ID, req.ProfilePic)
		if errors.Is(err, services.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
