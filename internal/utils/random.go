package utils

import (
	cryptoRand "crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateSecureRandomString generates a cryptographically secure random string
// using crypto/rand. The output uses URL-safe base64 encoding (A-Z, a-z, 0-9, -, _).
// Suitable for tenant tokens and other security-sensitive identifiers.
func GenerateSecureRandomString(length int) string {
	if length <= 0 {
		length = 22 // matches 16 random bytes, the historical token size
	}

	// base64 encoding produces 4 chars per 3 bytes; round up
	bytesNeeded := (length*3 + 3) / 4

	randomBytes := make([]byte, bytesNeeded)
	if _, err := cryptoRand.Read(randomBytes); err != nil {
		// crypto/rand failure indicates a serious system problem.
		// Falling back to math/rand would undermine the security guarantee.
		panic(fmt.Sprintf("crypto/rand.Read failed: %v", err))
	}

	encoded := base64.RawURLEncoding.EncodeToString(randomBytes)
	if len(encoded) > length {
		return encoded[:length]
	}
	return encoded
}
