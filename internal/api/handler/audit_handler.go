package handler

import (
	"net/http"

	"ssemi/internal/app/service"
	"ssemi/internal/common"

	"github.com/go-chi/chi/v5"
)

type AuditHandler struct {
	auditService *service.AuditService
}

func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
}

func (h *AuditHandler) list(w http.ResponseWriter, r *http.Request) {
	entries, err := h.auditService.List(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}
