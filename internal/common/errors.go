package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound       = errors.New("requested resource not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrForbidden      = errors.New("forbidden access")
	ErrBadRequest     = errors.New("bad request")
	ErrConflict       = errors.New("resource conflict") // e.g., email already registered
	ErrInternalServer = errors.New("internal server error")
	ErrValidation     = errors.New("validation failed")

	// Authentication flow. Messages are pinned by the observed API; the
	// user-not-found / wrong-password distinction is a pending product
	// decision, not something to merge silently.
	ErrUserNotFound         = errors.New("Usuario no encontrado")
	ErrInvalidCredentials   = errors.New("Contraseña incorrecta")
	ErrAccountDisabled      = errors.New("Cuenta Desactivada. Contacte al Administrador.")
	ErrInvalidChallengeCode = errors.New("Código inválido")
	ErrChallengeExpired     = errors.New("Código expirado")
	ErrResetTokenInvalid    = errors.New("Token inválido o ya usado")

	// Evidence and grading flow.
	ErrEvidenceEvaluated    = errors.New("No se puede editar una evidencia evaluada")
	ErrEvaluatorOnly        = errors.New("Acceso restringido a evaluadores")
	ErrNotificationNotFound = errors.New("Notificación no encontrada")
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrNotFound), errors.Is(err, ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAccountDisabled), errors.Is(err, ErrForbidden), errors.Is(err, ErrEvaluatorOnly):
		return http.StatusForbidden
	case errors.Is(err, ErrEvidenceEvaluated),
		errors.Is(err, ErrInvalidChallengeCode),
		errors.Is(err, ErrChallengeExpired),
		errors.Is(err, ErrResetTokenInvalid),
		errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // Unique violation
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
