package security

import "golang.org/x/crypto/bcrypt"

const bcryptCost = 10

// truncate72 enforces bcrypt's 72-byte input limit the same way the stored
// hashes were produced, so long passwords keep verifying.
func truncate72(password string) []byte {
	b := []byte(password)
	if len(b) > 72 {
		b = b[:72]
	}
	return b
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(truncate72(password), bcryptCost)
	return string(hashed), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate72(password)) == nil
}
