package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Hmac512 generates the hex HMAC-SHA512 hash the gateway uses to sign
// webhook payloads.
func Hmac512(body, key []byte) string {
	hash := hmac.New(sha512.New, key)
	hash.Write(body)
	return hex.EncodeToString(hash.Sum(nil))
}

// VerifySignature checks a webhook body against the x-paystack-signature
// header value using the shared secret.
func VerifySignature(body []byte, key, receivedSignature string) bool {
	expected := Hmac512(body, []byte(key))
	return hmac.Equal([]byte(receivedSignature), []byte(expected))
}

// NewReference builds a unique payment reference. The prefix encodes
// what the reference pays for (don, tkt, ord) so the webhook receiver
// can route settlements without a second lookup.
func NewReference(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, strings.ReplaceAll(uuid.New().String(), "-", ""))
}

// ReferenceKind extracts the routing prefix from a reference, or ""
// when the reference carries none.
func ReferenceKind(reference string) string {
	prefix, _, found := strings.Cut(reference, "_")
	if !found {
		return ""
	}
	return prefix
}
