package handler

import (
	"net/http"

	"ssemi/internal/api/middleware"
	"ssemi/internal/app/service"
	"ssemi/internal/common"
	"ssemi/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/notificaciones/pendientes/{id}", h.pending)
	r.Post("/notificaciones/marcar_leida/{id}", h.markRead)
}

// pending lists a user's unread notifications. Non-administrators may only
// read their own.
func (h *NotificationHandler) pending(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	rol, _ := middleware.GetRolFromContext(r.Context())
	if id != userID && rol != model.RolAdministrador {
		common.RespondWithError(w, http.StatusForbidden, "Acceso denegado")
		return
	}

	views, err := h.notificationService.Pending(r.Context(), id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, views)
}

func (h *NotificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.notificationService.MarkRead(r.Context(), id); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Notificación marcada como leída",
	})
}
