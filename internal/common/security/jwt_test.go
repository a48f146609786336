package security

import (
	"testing"
	"time"

	"ssemi/internal/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	config.AppConfig = &config.Config{
		JWTKey: []byte("test-secret"),
		JWTExp: time.Hour,
	}
	InitJWT()
	m.Run()
}

func decodeToken(t *testing.T, tokenString string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(tokenString, func(tok *jwt.Token) (interface{}, error) {
		return config.AppConfig.JWTKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestGenerateTokenClaims(t *testing.T) {
	before := time.Now()
	tokenString, err := GenerateToken(1, "admin@ssemi.com", 2)
	require.NoError(t, err)
	after := time.Now()

	claims := decodeToken(t, tokenString)
	assert.Equal(t, "1", claims["sub"])
	assert.Equal(t, "admin@ssemi.com", claims["correo"])
	assert.Equal(t, float64(2), claims["rol"])

	exp, ok := claims["exp"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, int64(exp), before.Add(time.Hour).Unix())
	assert.LessOrEqual(t, int64(exp), after.Add(time.Hour).Unix())
}

func TestClaimExtraction(t *testing.T) {
	tokenString, err := GenerateToken(42, "eva@ssemi.com", 3)
	require.NoError(t, err)

	claims := map[string]interface{}{}
	for k, v := range decodeToken(t, tokenString) {
		claims[k] = v
	}

	id, err := GetUserIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	correo, err := GetCorreoFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "eva@ssemi.com", correo)

	rol, err := GetRolFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, 3, rol)
}

func TestClaimExtractionMissingClaims(t *testing.T) {
	_, err := GetUserIDFromClaims(map[string]interface{}{})
	assert.Error(t, err)

	_, err = GetCorreoFromClaims(map[string]interface{}{"correo": 7})
	assert.Error(t, err)

	_, err = GetRolFromClaims(map[string]interface{}{"rol": "admin"})
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	orig := config.AppConfig.JWTExp
	config.AppConfig.JWTExp = -time.Minute
	tokenString, err := GenerateToken(1, "admin@ssemi.com", 2)
	config.AppConfig.JWTExp = orig
	require.NoError(t, err)

	_, err = jwt.Parse(tokenString, func(tok *jwt.Token) (interface{}, error) {
		return config.AppConfig.JWTKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
