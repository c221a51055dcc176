package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateToken returns n random bytes as a lowercase hex string. Used
// for newsletter unsubscribe tokens.
func GenerateToken(n int) (string, error) {
	byt := make([]byte, n)

	if _, err := rand.Read(byt); err != nil {
		return "", err
	}

	return hex.EncodeToString(byt), nil
}
