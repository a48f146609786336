package handler

import (
	"net/http"

	"ssemi/internal/app/service"
	"ssemi/internal/common"

	"github.com/go-chi/chi/v5"
)

type CommitteeHandler struct {
	committeeService *service.CommitteeService
}

func NewCommitteeHandler(committeeService *service.CommitteeService) *CommitteeHandler {
	return &CommitteeHandler{committeeService: committeeService}
}

// RegisterRoutes mounts the committee panel. Admin-gated at the router.
func (h *CommitteeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Put("/{id}/activar", h.activate)
	r.Put("/{id}/desactivar", h.deactivate)
}

func (h *CommitteeHandler) list(w http.ResponseWriter, r *http.Request) {
	evaluadores, err := h.committeeService.ListEvaluadores(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, evaluadores)
}

func (h *CommitteeHandler) activate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	evaluador, err := h.committeeService.Activate(r.Context(), id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": evaluador.NombreCompleto() + " activado en Comité Nacional",
	})
}

func (h *CommitteeHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	evaluador, err := h.committeeService.Deactivate(r.Context(), id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": evaluador.NombreCompleto() + " retirado del Comité Nacional",
	})
}
