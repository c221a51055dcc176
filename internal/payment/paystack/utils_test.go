package paystack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"don_abc"}}`)
	key := "sk_test_secret"

	signature := Hmac512(body, []byte(key))

	assert.True(t, VerifySignature(body, key, signature))
	assert.False(t, VerifySignature(body, key, "deadbeef"))
	assert.False(t, VerifySignature(body, "wrong-key", signature))
	assert.False(t, VerifySignature([]byte("tampered"), key, signature))
	assert.False(t, VerifySignature(body, key, ""))
}

func TestNewReference(t *testing.T) {
	ref := NewReference("don")

	assert.True(t, strings.HasPrefix(ref, "don_"))
	assert.NotContains(t, ref, "-")
	assert.NotEqual(t, ref, NewReference("don"))
}

func TestReferenceKind(t *testing.T) {
	assert.Equal(t, "don", ReferenceKind("don_a1b2c3"))
	assert.Equal(t, "tkt", ReferenceKind("tkt_a1b2c3"))
	assert.Equal(t, "ord", ReferenceKind("ord_a1b2c3"))
	assert.Equal(t, "", ReferenceKind("noprefix"))
	assert.Equal(t, "", ReferenceKind("_leading"))
}
