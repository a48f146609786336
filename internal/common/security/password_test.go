package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hash produced by the previous system for the password "123456". Stored
// credentials must keep verifying after the migration.
const legacyAdminHash = "$2b$10$mmmpafthxmvDMlilwLnTTOfqHay2L6nQT2ifBZgOQ6BY6pGzydib."

func TestCheckPasswordHashLegacyHash(t *testing.T) {
	assert.True(t, CheckPasswordHash("123456", legacyAdminHash))
	assert.False(t, CheckPasswordHash("wrongpass", legacyAdminHash))
	assert.False(t, CheckPasswordHash("", legacyAdminHash))
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("s3cret!", hash))
	assert.False(t, CheckPasswordHash("s3cret!x", hash))
}

func TestHashPasswordTruncatesAt72Bytes(t *testing.T) {
	long := strings.Repeat("a", 80)
	hash, err := HashPassword(long)
	require.NoError(t, err)

	// Only the first 72 bytes participate in the hash.
	assert.True(t, CheckPasswordHash(strings.Repeat("a", 72), hash))
	assert.True(t, CheckPasswordHash(strings.Repeat("a", 100), hash))
	assert.False(t, CheckPasswordHash(strings.Repeat("a", 71), hash))
}
