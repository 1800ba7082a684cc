package handlers

import (
	"net/http"

	"github.com/siddeshwardm/chat-application/config"
	"github.com/siddeshwardm/chat-application/internal/middlewares"
	"github.com/siddeshwardm/chat-application/internal/repository"
	"github.com/siddeshwardm/chat-application/internal/services"

	"github.com/gorilla/mux"
)

// API groups what the REST routes need.
type API struct {
	Config   config.Config
	Users    *repository.UserRepo
	Auth     *services.AuthService
	Messages *services.MessageService
}

// credentialAttemptsPerMinute bounds signup and login calls per client address.
const credentialAttemptsPerMinute = 20

// RegisterRoutes mounts /api/auth and /api/messages on r.
func RegisterRoutes(r *mux.Router, api API) {
	requireAuth := middlewares.RequireUserAuth(api.Config.JWTSecret, api.Users)
	limit := middlewares.RateLimitPerIP(credentialAttemptsPerMinute)

	authR := r.PathPrefix("/api/auth").Subrouter()
	authR.Handle("/signup", limit(SignupHandler(api.Auth, api.Config))).Methods(http.MethodPost)
	authR.Handle("/login", limit(LoginHandler(api.Auth, api.Config))).Methods(http.MethodPost)
	authR.HandleFunc("/logout", LogoutHandler(api.Config)).Methods(http.MethodPost)
	authR.Handle("/check", requireAuth(CheckAuthHandler())).Methods(http.MethodGet)
	authR.Handle("/update-profile", requireAuth(UpdateProfileHandler(api.Auth))).Methods(http.MethodPut)

	msgs := NewMessageHandler(api.Messages)
	msgR := r.PathPrefix("/api/messages").Subrouter()
	msgR.Use(requireAuth)
	msgR.HandleFunc("/users", msgs.SidebarUsers).Methods(http.MethodGet)
	msgR.HandleFunc("/send/{id}", msgs.Send).Methods(http.MethodPost)
	msgR.HandleFunc("/{id}", msgs.Conversation).Methods(http.MethodGet)
}
