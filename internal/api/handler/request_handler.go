package handler

import (
	"net/http"

	"ssemi/internal/api/middleware"
	"ssemi/internal/app/service"
	"ssemi/internal/common"

	"github.com/go-chi/chi/v5"
)

type RequestHandler struct {
	requestService *service.RequestService
}

func NewRequestHandler(requestService *service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Put("/{id}/aprobar", h.approve)
	r.Put("/{id}/rechazar", h.reject)
}

func (h *RequestHandler) create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req service.RequestCreate
	if !decodeAndValidate(w, r, &req) {
		return
	}

	solicitud, err := h.requestService.Create(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, solicitud)
}

func (h *RequestHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	rol, _ := middleware.GetRolFromContext(r.Context())

	solicitudes, err := h.requestService.List(r.Context(), userID, rol)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, solicitudes)
}

func (h *RequestHandler) approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	reviewerID, _ := middleware.GetUserIDFromContext(r.Context())

	solicitud, err := h.requestService.Approve(r.Context(), reviewerID, id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, solicitud)
}

func (h *RequestHandler) reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	reviewerID, _ := middleware.GetUserIDFromContext(r.Context())

	var req struct {
		MotivoRespuesta string `json:"motivo_respuesta" validate:"required,max=500"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	solicitud, err := h.requestService.Reject(r.Context(), reviewerID, id, req.MotivoRespuesta)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, solicitud)
}
