package handler

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"

	"ssemi/internal/api/middleware"
	"ssemi/internal/app/service"
	"ssemi/internal/common"
	"ssemi/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

const maxUploadSize = 32 << 20 // 32 MiB per request

type EvidenceHandler struct {
	evidenceService *service.EvidenceService
}

func NewEvidenceHandler(evidenceService *service.EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{evidenceService: evidenceService}
}

func (h *EvidenceHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Post("/multiple", h.createMultiple)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
	r.Get("/", h.list)
	r.Get("/historial", h.historial)
	r.Get("/categorias", h.categorias)
	r.Get("/detalle/{id}", h.detail)
	r.Get("/descargar/{filename}", h.download)
}

func (h *EvidenceHandler) create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	in, files, closeFiles, ok := h.parseForm(w, r, "archivo")
	if !ok {
		return
	}
	defer closeFiles()
	if len(files) == 0 {
		common.RespondWithError(w, http.StatusBadRequest, "Archivo requerido")
		return
	}

	ev, err := h.evidenceService.Create(r.Context(), userID, in, files)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, ev)
}

func (h *EvidenceHandler) createMultiple(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	in, files, closeFiles, ok := h.parseForm(w, r, "archivos")
	if !ok {
		return
	}
	defer closeFiles()
	if len(files) == 0 {
		common.RespondWithError(w, http.StatusBadRequest, "Archivo requerido")
		return
	}

	ev, err := h.evidenceService.Create(r.Context(), userID, in, files)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, ev)
}

func (h *EvidenceHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	in, files, closeFiles, ok := h.parseForm(w, r, "archivos")
	if !ok {
		return
	}
	defer closeFiles()

	ev, err := h.evidenceService.Update(r.Context(), id, userID, in, files)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, ev)
}

func (h *EvidenceHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	if err := h.evidenceService.Delete(r.Context(), id, userID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Evidencia eliminada"})
}

// list returns the caller's evidences; administrators see everyone's.
func (h *EvidenceHandler) list(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	rol, _ := middleware.GetRolFromContext(r.Context())

	owner := userID
	if rol == model.RolAdministrador {
		owner = 0
	}
	items, err := h.evidenceService.List(r.Context(), owner)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, items)
}

func (h *EvidenceHandler) historial(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	entries, err := h.evidenceService.Historial(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}

func (h *EvidenceHandler) categorias(w http.ResponseWriter, r *http.Request) {
	categorias, err := h.evidenceService.Categorias(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, categorias)
}

func (h *EvidenceHandler) detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	detail, err := h.evidenceService.Detail(r.Context(), id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, detail)
}

func (h *EvidenceHandler) download(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	f, err := h.evidenceService.OpenFile(filename)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), "Archivo no encontrado")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		common.RespondWithError(w, http.StatusInternalServerError, "Archivo no disponible")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	http.ServeContent(w, r, filename, info.ModTime(), f)
}

// parseForm decodes the multipart body shared by create and update. The
// returned closer releases every opened file part.
func (h *EvidenceHandler) parseForm(w http.ResponseWriter, r *http.Request, fileField string) (service.EvidenceInput, []service.FileUpload, func(), bool) {
	var in service.EvidenceInput
	noop := func() {}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Formulario multipart inválido")
		return in, nil, noop, false
	}
	in.Titulo = r.FormValue("titulo")
	in.Descripcion = r.FormValue("descripcion")
	in.CategoriaID, _ = strconv.Atoi(r.FormValue("id_categoria"))
	in.Borrador, _ = strconv.ParseBool(r.FormValue("borrador"))
	if raw := r.FormValue("formulario"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Formulario); err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Formulario inválido")
			return in, nil, noop, false
		}
	}
	if err := validate.Struct(&in); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, err.Error())
		return in, nil, noop, false
	}

	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	var files []service.FileUpload
	for _, header := range r.MultipartForm.File[fileField] {
		f, err := header.Open()
		if err != nil {
			closeAll()
			common.RespondWithError(w, http.StatusBadRequest, "Archivo inválido")
			return in, nil, noop, false
		}
		opened = append(opened, f)
		files = append(files, service.FileUpload{Name: header.Filename, Content: f})
	}
	return in, files, closeAll, true
}
