package client

import (
	"encoding/json"
	"errors"
	"os"
	"strconv"

	"ssemi/internal/domain/model"
)

// Storage keys kept stable so a persisted session survives upgrades.
const (
	sessionKeyToken = "ssemi_token"
	sessionKeyRole  = "user_role"
	sessionKeyID    = "user_id"
)

// SessionStore persists the bearer token and the signed-in user's identity
// as a flat key/value file. Values are stored as strings, role and id
// included, and re-read on every access so concurrent processes sharing the
// file observe each other's logouts.
type SessionStore struct {
	path string
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

func (s *SessionStore) Save(token string, rol, userID int) error {
	values := map[string]string{
		sessionKeyToken: token,
		sessionKeyRole:  strconv.Itoa(rol),
		sessionKeyID:    strconv.Itoa(userID),
	}
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *SessionStore) Token() string {
	return s.read()[sessionKeyToken]
}

func (s *SessionStore) Rol() int {
	rol, err := strconv.Atoi(s.read()[sessionKeyRole])
	if err != nil {
		return 0
	}
	return rol
}

func (s *SessionStore) UserID() int {
	id, err := strconv.Atoi(s.read()[sessionKeyID])
	if err != nil {
		return 0
	}
	return id
}

// Clear removes the persisted session. A missing file counts as cleared.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *SessionStore) read() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]string{}
	}
	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return map[string]string{}
	}
	return values
}

// LandingPath maps a role to its post-login page. Unknown roles fall back
// to the neutral dashboard.
func LandingPath(rol int) string {
	switch rol {
	case model.RolInstructor:
		return "/instructor"
	case model.RolAdministrador:
		return "/admin"
	case model.RolEvaluador:
		return "/evaluador"
	default:
		return "/dashboard"
	}
}
