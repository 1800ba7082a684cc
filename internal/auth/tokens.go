package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateSecureToken returns 32 random bytes, hex-encoded. Used to mint a
// JWT_SECRET.
func GenerateSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// Without an entropy source no secret can be trusted.
		panic("auth: failed to read random bytes: " + err.Error())
	}
	return hex.EncodeToString(b)
}
