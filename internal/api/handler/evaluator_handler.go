package handler

import (
	"net/http"
	"strconv"
	"time"

	"ssemi/internal/api/middleware"
	"ssemi/internal/app/service"
	"ssemi/internal/common"

	"github.com/go-chi/chi/v5"
)

type EvaluatorHandler struct {
	gradeService *service.GradeService
}

func NewEvaluatorHandler(gradeService *service.GradeService) *EvaluatorHandler {
	return &EvaluatorHandler{gradeService: gradeService}
}

func (h *EvaluatorHandler) RegisterRoutes(r chi.Router) {
	r.Get("/data/evidencias", h.pending)
	r.Get("/data/historial", h.history)
	r.Get("/instructores", h.instructores)
	r.Get("/resultados", h.results)
	r.Get("/evidencia/{id}/avance", h.loadPartial)
	r.Post("/evidencia/{id}/parcial", h.savePartial)
	r.Post("/evidencia/{id}", h.grade)
}

func (h *EvaluatorHandler) pending(w http.ResponseWriter, r *http.Request) {
	evidencias, err := h.gradeService.Pending(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, evidencias)
}

func (h *EvaluatorHandler) history(w http.ResponseWriter, r *http.Request) {
	calificaciones, err := h.gradeService.History(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, calificaciones)
}

func (h *EvaluatorHandler) instructores(w http.ResponseWriter, r *http.Request) {
	instructores, err := h.gradeService.Instructores(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, instructores)
}

func (h *EvaluatorHandler) results(w http.ResponseWriter, r *http.Request) {
	rol, _ := middleware.GetRolFromContext(r.Context())

	q := r.URL.Query()
	instructorID, _ := strconv.Atoi(q.Get("instructor_id"))
	desde, ok := parseDateParam(w, q.Get("fecha_desde"))
	if !ok {
		return
	}
	hasta, ok := parseDateParam(w, q.Get("fecha_hasta"))
	if !ok {
		return
	}

	rows, err := h.gradeService.Results(r.Context(), rol, instructorID, desde, hasta)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, rows)
}

func (h *EvaluatorHandler) loadPartial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	partial, err := h.gradeService.LoadPartial(r.Context(), id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, partial)
}

func (h *EvaluatorHandler) savePartial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in service.GradeInput
	if !decodeAndValidate(w, r, &in) {
		return
	}
	if err := h.gradeService.SavePartial(r.Context(), id, in); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Avance guardado"})
}

func (h *EvaluatorHandler) grade(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	evaluadorID, _ := middleware.GetUserIDFromContext(r.Context())

	var in service.GradeInput
	if !decodeAndValidate(w, r, &in) {
		return
	}
	calificacion, err := h.gradeService.Grade(r.Context(), evaluadorID, id, in)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, calificacion)
}

func parseDateParam(w http.ResponseWriter, raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Fecha inválida")
		return nil, false
	}
	return &t, true
}
