package security

import (
	"errors"
	"strconv"
	"time"

	"ssemi/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

// GenerateToken issues the session credential. Claims are immutable once
// issued; expiry is the only termination mechanism. The subject is encoded
// as a string, as registered claims require.
func GenerateToken(userID int, correo string, rol int) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    strconv.Itoa(userID),
		"correo": correo,
		"rol":    rol,
		"iat":    now.Unix(),
		"exp":    now.Add(config.AppConfig.JWTExp).Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

func GetUserIDFromClaims(claims map[string]interface{}) (int, error) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, errors.New("sub claim is missing or not a string")
	}
	id, err := strconv.Atoi(sub)
	if err != nil {
		return 0, errors.New("sub claim is not a numeric id")
	}
	return id, nil
}

func GetCorreoFromClaims(claims map[string]interface{}) (string, error) {
	correo, ok := claims["correo"].(string)
	if !ok {
		return "", errors.New("correo claim is missing or not a string")
	}
	return correo, nil
}

// GetRolFromClaims tolerates both the int set at encode time and the
// float64 produced when a token comes back off the wire.
func GetRolFromClaims(claims map[string]interface{}) (int, error) {
	switch rol := claims["rol"].(type) {
	case float64:
		return int(rol), nil
	case int:
		return rol, nil
	case int64:
		return int(rol), nil
	default:
		return 0, errors.New("rol claim is missing or not a number")
	}
}
