package handler

import (
	"encoding/json"
	"net/http"

	"ssemi/internal/api/middleware"
	"ssemi/internal/app/service"
	"ssemi/internal/common"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterPublicRoutes mounts the unauthenticated endpoints.
func (h *AuthHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/2fa/verify", h.verify2FA)
	r.Post("/password/forgot", h.forgotPassword)
	r.Post("/password/reset", h.resetPassword)
}

// RegisterProtectedRoutes mounts the session-gated endpoints.
func (h *AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/auth/me", h.me)
	r.Get("/me", h.me)
	r.Put("/me", h.updateProfile)
}

type loginRequest struct {
	Correo     string `json:"correo" validate:"required,email"`
	Contrasena string `json:"contraseña" validate:"required,min=6"`
}

type twoFactorVerifyRequest struct {
	Correo string `json:"correo" validate:"required,email"`
	Codigo string `json:"codigo" validate:"required,len=6"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.authService.Register(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.authService.Authenticate(r.Context(), req.Correo, req.Contrasena)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) verify2FA(w http.ResponseWriter, r *http.Request) {
	var req twoFactorVerifyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.authService.VerifyChallenge(r.Context(), req.Correo, req.Codigo)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	user, err := h.authService.Me(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), "Usuario no encontrado")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Token inválido")
		return
	}

	var req struct {
		NumeroContacto *int64  `json:"numero_contacto"`
		Direccion      *string `json:"direccion" validate:"omitempty,max=150"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.authService.UpdateOwnProfile(r.Context(), userID, req.NumeroContacto, req.Direccion)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Correo string `json:"correo" validate:"required,email"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Correo); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Se ha enviado un enlace de recuperación a tu correo",
	})
}

func (h *AuthHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token           string `json:"token" validate:"required"`
		NuevaContrasena string `json:"nueva_contraseña" validate:"required,min=6"`
	}
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.NuevaContrasena); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Contraseña restablecida correctamente",
	})
}

// decodeAndValidate parses the JSON body into dst and runs struct
// validation, writing the error response itself on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Cuerpo de la petición inválido")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
