package handler

import (
	"net/http"

	"ssemi/internal/api/middleware"
	"ssemi/internal/app/service"
	"ssemi/internal/common"
	"ssemi/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type MessageHandler struct {
	messageService *service.MessageService
	authService    *service.AuthService
}

func NewMessageHandler(messageService *service.MessageService, authService *service.AuthService) *MessageHandler {
	return &MessageHandler{messageService: messageService, authService: authService}
}

func (h *MessageHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.send)
	r.Get("/recibidos", h.inbox)
	r.Get("/enviados", h.sent)
	r.Get("/{id}", h.get)
}

// currentUser loads the full sender record; message rows need the sender's
// display name.
func (h *MessageHandler) currentUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Token inválido")
		return nil, false
	}
	user, err := h.authService.Me(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), "Usuario no encontrado")
		return nil, false
	}
	return user, true
}

func (h *MessageHandler) send(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req service.MessageCreate
	if !decodeAndValidate(w, r, &req) {
		return
	}

	msg, err := h.messageService.Send(r.Context(), user, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) inbox(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	msgs, err := h.messageService.Inbox(r.Context(), user)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, msgs)
}

func (h *MessageHandler) sent(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	msgs, err := h.messageService.Sent(r.Context(), user)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, msgs)
}

func (h *MessageHandler) get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	msg, err := h.messageService.Get(r.Context(), user, id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, msg)
}
