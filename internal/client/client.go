package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ssemi/internal/domain/model"

	"github.com/go-resty/resty/v2"
)

// ErrSessionExpired signals that the server rejected the stored token. The
// session has already been cleared when this is returned; the caller should
// send the user back to the login page.
var ErrSessionExpired = errors.New("Sesión expirada. Inicie sesión nuevamente.")

// Client wraps the HTTP API. Every request carries the stored bearer token
// when one exists; a 401 on an authenticated call clears the session.
type Client struct {
	http    *resty.Client
	session *SessionStore
}

func New(baseURL string, session *SessionStore) *Client {
	c := &Client{session: session}
	c.http = resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json")
	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if token := session.Token(); token != "" {
			req.SetAuthToken(token)
		}
		return nil
	})
	return c
}

// authResponse is the wire shape of /login and /2fa/verify. A missing
// access_token means a second factor is still pending.
type authResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int    `json:"user_id"`
	Correo      string `json:"correo"`
	Rol         int    `json:"rol"`
	Mensaje     string `json:"mensaje"`
}

// LoginResult is what the UI acts on after an auth call.
type LoginResult struct {
	ChallengePending bool
	Landing          string
	Mensaje          string
}

func (c *Client) Login(ctx context.Context, correo, contrasena string) (*LoginResult, error) {
	body := map[string]string{"correo": correo, "contraseña": contrasena}
	return c.authenticate(ctx, "/login", body)
}

func (c *Client) Verify2FA(ctx context.Context, correo, codigo string) (*LoginResult, error) {
	body := map[string]string{"correo": correo, "codigo": codigo}
	return c.authenticate(ctx, "/2fa/verify", body)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*LoginResult, error) {
	var out authResponse
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return &LoginResult{ChallengePending: true, Mensaje: out.Mensaje}, nil
	}
	if err := c.session.Save(out.AccessToken, out.Rol, out.UserID); err != nil {
		return nil, fmt.Errorf("no se pudo guardar la sesión: %w", err)
	}
	return &LoginResult{Landing: LandingPath(out.Rol)}, nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout clears the local session. The token itself simply expires; there is
// no server-side revocation.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// Get fetches a collection or resource into out. Used by the list panels.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	hadToken := c.session.Token() != ""

	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("error de conexión con el servidor: %w", err)
	}
	if resp.IsError() {
		if resp.StatusCode() == http.StatusUnauthorized && hadToken {
			c.session.Clear()
			return ErrSessionExpired
		}
		return errors.New(parseError(resp.StatusCode(), resp.Body()))
	}
	return nil
}

// parseError normalizes the error-body shapes the API produces, either
// {"detail": "..."} or {"detail": [{"msg": ...}, ...]} or {"message": "..."},
// into a single display string.
func parseError(status int, body []byte) string {
	var probe struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &probe); err == nil {
		if len(probe.Detail) > 0 {
			var s string
			if json.Unmarshal(probe.Detail, &s) == nil && s != "" {
				return s
			}
			var items []struct {
				Msg string `json:"msg"`
			}
			if json.Unmarshal(probe.Detail, &items) == nil && len(items) > 0 && items[0].Msg != "" {
				return items[0].Msg
			}
		}
		if probe.Message != "" {
			return probe.Message
		}
	}
	if status >= http.StatusInternalServerError {
		return "Error del servidor. Intente de nuevo más tarde."
	}
	return "La solicitud no pudo ser procesada."
}
