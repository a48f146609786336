package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"ssemi/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *SessionStore) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	session := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	return New(server.URL, session), session
}

func authServer(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var body struct {
			Correo     string `json:"correo"`
			Contrasena string `json:"contraseña"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch {
		case body.Correo == "2fa@ssemi.com":
			json.NewEncoder(w).Encode(map[string]string{
				"mensaje": "Código de verificación enviado correctamente",
			})
		case body.Contrasena == "123456":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "tok-admin",
				"token_type":   "bearer",
				"user_id":      1,
				"rol":          model.RolAdministrador,
			})
		default:
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Contraseña incorrecta"})
		}
	})
	mux.HandleFunc("POST /2fa/verify", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var body struct {
			Codigo string `json:"codigo"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Codigo != "654321" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Código inválido"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-eva",
			"token_type":   "bearer",
			"user_id":      3,
			"rol":          model.RolEvaluador,
		})
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer tok-admin" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Token inválido"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id_usuario": 1,
			"correo":     "admin@ssemi.com",
			"rol_fk":     model.RolAdministrador,
		})
	})
	return mux
}

func TestLoginIssuesTokenAndRoutesByRole(t *testing.T) {
	api, session := newTestClient(t, authServer(t))

	result, err := api.Login(context.Background(), "admin@ssemi.com", "123456")
	require.NoError(t, err)
	assert.False(t, result.ChallengePending)
	assert.Equal(t, "/admin", result.Landing)

	assert.Equal(t, "tok-admin", session.Token())
	assert.Equal(t, model.RolAdministrador, session.Rol())
	assert.Equal(t, 1, session.UserID())
}

func TestLoginWrongPassword(t *testing.T) {
	api, session := newTestClient(t, authServer(t))

	result, err := api.Login(context.Background(), "admin@ssemi.com", "wrongpass")
	require.Error(t, err)
	assert.EqualError(t, err, "Contraseña incorrecta")
	assert.Nil(t, result)
	assert.Empty(t, session.Token())
}

func TestLoginChallengePending(t *testing.T) {
	api, session := newTestClient(t, authServer(t))

	result, err := api.Login(context.Background(), "2fa@ssemi.com", "123456")
	require.NoError(t, err)
	assert.True(t, result.ChallengePending)
	assert.Equal(t, "Código de verificación enviado correctamente", result.Mensaje)
	assert.Empty(t, session.Token())

	verified, err := api.Verify2FA(context.Background(), "2fa@ssemi.com", "654321")
	require.NoError(t, err)
	assert.Equal(t, "/evaluador", verified.Landing)
	assert.Equal(t, "tok-eva", session.Token())
}

func TestVerify2FAWrongCode(t *testing.T) {
	api, session := newTestClient(t, authServer(t))

	_, err := api.Verify2FA(context.Background(), "2fa@ssemi.com", "000000")
	require.Error(t, err)
	assert.EqualError(t, err, "Código inválido")
	assert.Empty(t, session.Token())
}

func TestMeWithValidSession(t *testing.T) {
	api, session := newTestClient(t, authServer(t))
	require.NoError(t, session.Save("tok-admin", model.RolAdministrador, 1))

	user, err := api.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.Equal(t, "admin@ssemi.com", user.Correo)
}

func TestRejectedTokenClearsSession(t *testing.T) {
	api, session := newTestClient(t, authServer(t))
	require.NoError(t, session.Save("tok-stale", model.RolAdministrador, 1))

	_, err := api.Me(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Empty(t, session.Token())
}

func TestLogoutClearsSession(t *testing.T) {
	api, session := newTestClient(t, authServer(t))
	require.NoError(t, session.Save("tok-admin", model.RolAdministrador, 1))

	require.NoError(t, api.Logout())
	assert.Empty(t, session.Token())
}

func TestParseErrorShapes(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"detail string", 400, `{"detail": "Campo inválido"}`, "Campo inválido"},
		{"detail list", 422, `{"detail": [{"msg": "correo requerido"}, {"msg": "otro"}]}`, "correo requerido"},
		{"message", 400, `{"message": "algo falló"}`, "algo falló"},
		{"server error", 500, `boom`, "Error del servidor. Intente de nuevo más tarde."},
		{"unparseable 4xx", 404, `<html>`, "La solicitud no pudo ser procesada."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseError(tc.status, []byte(tc.body)))
		})
	}
}
