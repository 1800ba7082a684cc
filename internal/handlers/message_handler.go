package handlers

import (
	"errors"
	"net/http"

	"github.com/siddeshwardm/chat-application/internal/middlewares"
	"github.com/siddeshwardm/chat-application/internal/repository"
	"github.com/siddeshwardm/chat-application/internal/services"
	"github.com/siddeshwardm/chat-application/pkg/log"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type MessageHandler struct {
	Service *services.MessageService
}

func NewMessageHandler(svc *services.MessageService) *MessageHandler {
	return &MessageHandler{Service: svc}
}

// GET /api/messages/users
func (h *MessageHandler) SidebarUsers(w http.ResponseWriter, r *http.Request) {
	me := middlewares.CurrentUser(r.Context())
	if me == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	users, err := h.Service.SidebarUsers(r.Context(), me.ID)
	if err != nil {
		log.Logger.Error().Err(err).Msg("sidebar users failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GET /api/messages/{id}
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	me := middlewares.CurrentUser(r.Context())
	if me == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	other, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID format")
		return
	}
	list, err := h.Service.Conversation(r.Context(), me.ID, other)
	if err != nil {
		log.Logger.Error().Err(err).Msg("conversation failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// POST /api/messages/send/{id}
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	me := middlewares.CurrentUser(r.Context())
	if me == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	receiver, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID format")
		return
	}
	var req services.SendInput
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.Service.Send(r.Context(), me.ID, receiver, req)
	switch {
	case errors.Is(err, services.ErrImageUnsupported), errors.Is(err, services.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, repository.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
		return
	case err != nil:
		log.Logger.Error().Err(err).Msg("send message failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}
