package handler

import (
	"net/http"

	"ssemi/internal/api/middleware"
	"ssemi/internal/app/service"
	"ssemi/internal/common"

	"github.com/go-chi/chi/v5"
)

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/datos/usuarios", h.userRows)
	r.Get("/datos/solicitudes", h.requestRows)
	r.Get("/{id}", h.get)
	r.Get("/{id}/export", h.export)
}

func (h *ReportHandler) create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req service.ReportCreate
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rpt, err := h.reportService.Create(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, rpt)
}

func (h *ReportHandler) list(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reportService.List(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, reports)
}

func (h *ReportHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rpt, err := h.reportService.Get(r.Context(), id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), "Reporte no encontrado")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, rpt)
}

func (h *ReportHandler) userRows(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reportService.UserRows(r.Context(), r.URL.Query().Get("nombre"), r.URL.Query().Get("regional"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, rows)
}

func (h *ReportHandler) requestRows(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reportService.RequestRows(r.Context(), r.URL.Query().Get("estado"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, rows)
}

func (h *ReportHandler) export(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	formato := r.URL.Query().Get("formato")
	if formato == "" {
		formato = "csv"
	}

	export, err := h.reportService.Export(r.Context(), id, formato)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(export.Data)
}
