package middleware

import (
	"context"
	"net/http"
	"strings"

	"ssemi/internal/common"
	"ssemi/internal/common/security"
	"ssemi/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	UserIDCtxKey contextKey = "userID"
	CorreoCtxKey contextKey = "correo"
	RolCtxKey    contextKey = "rol"
)

// Authenticator rejects requests without a valid bearer token before any
// protected handler runs, and copies the token claims into the context.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())

		if err != nil || token == nil {
			if err != nil && strings.Contains(err.Error(), "token not found") {
				common.RespondWithError(w, http.StatusUnauthorized, "Token requerido")
			} else {
				common.RespondWithError(w, http.StatusUnauthorized, "Token inválido")
			}
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Token inválido")
			return
		}
		correo, err := security.GetCorreoFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Token inválido")
			return
		}
		rol, err := security.GetRolFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Token inválido")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDCtxKey, userID)
		ctx = context.WithValue(ctx, CorreoCtxKey, correo)
		ctx = context.WithValue(ctx, RolCtxKey, rol)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rol, ok := r.Context().Value(RolCtxKey).(int)
		if !ok || rol != model.RolAdministrador {
			common.RespondWithError(w, http.StatusForbidden, "Acceso restringido a administradores")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RolesOnly allows only the listed roles through.
func RolesOnly(roles ...int) func(http.Handler) http.Handler {
	allowed := make(map[int]struct{}, len(roles))
	for _, rol := range roles {
		allowed[rol] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rol, ok := r.Context().Value(RolCtxKey).(int)
			if !ok {
				common.RespondWithError(w, http.StatusForbidden, "No autorizado")
				return
			}
			if _, ok := allowed[rol]; !ok {
				common.RespondWithError(w, http.StatusForbidden, "No autorizado")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetUserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(int)
	return userID, ok
}

func GetRolFromContext(ctx context.Context) (int, bool) {
	rol, ok := ctx.Value(RolCtxKey).(int)
	return rol, ok
}
