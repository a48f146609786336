package handler

import (
	"net/http"
	"strconv"

	"ssemi/internal/api/middleware"
	"ssemi/internal/app/service"
	"ssemi/internal/common"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes mounts the admin users panel endpoints. The whole group is
// wrapped in AdminOnly at the router.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Put("/", h.update)
		r.Delete("/", h.delete)
		r.Put("/estado", h.setEstado)
	})
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, users)
}

func (h *UserHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user, err := h.userService.Get(r.Context(), id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), "Usuario no encontrado")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	adminID, _ := middleware.GetUserIDFromContext(r.Context())

	var req service.UserUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Update(r.Context(), adminID, id, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) setEstado(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	adminID, _ := middleware.GetUserIDFromContext(r.Context())

	var req struct {
		Estado bool `json:"estado"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.SetEstado(r.Context(), adminID, id, req.Estado)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"id_usuario":   user.ID,
		"estado_nuevo": user.Estado,
		"mensaje":      "El estado del usuario fue actualizado correctamente.",
	})
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	adminID, _ := middleware.GetUserIDFromContext(r.Context())

	if err := h.userService.Delete(r.Context(), adminID, id); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{
		"mensaje": "Usuario " + strconv.Itoa(id) + " eliminado correctamente",
	})
}

// pathID parses the {id} URL parameter, responding 400 itself when invalid.
func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Identificador inválido")
		return 0, false
	}
	return id, true
}
