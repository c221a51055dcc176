package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_Success(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{"id": "msg_1"})
	}))
	defer server.Close()

	m := New(&Config{BaseURL: server.URL, APIKey: "re_test_key", From: "no-reply@example.org"})

	err := m.Send(context.Background(), &Message{
		To:      []string{"donor@example.com"},
		Subject: "Thank you for your donation",
		HTML:    "<p>Thanks!</p>",
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer re_test_key", gotAuth)
	assert.Equal(t, "no-reply@example.org", gotBody["from"])
	assert.Equal(t, "Thank you for your donation", gotBody["subject"])
}

func TestSend_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid to address"})
	}))
	defer server.Close()

	m := New(&Config{BaseURL: server.URL, APIKey: "re_test_key", From: "no-reply@example.org"})

	err := m.Send(context.Background(), &Message{To: []string{"bad"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "Invalid to address")
}

func TestSend_DisabledWithoutKey(t *testing.T) {
	m := New(&Config{BaseURL: "http://localhost:0", From: "no-reply@example.org"})

	assert.False(t, m.Enabled())
	// No API key means Send is a silent no-op, not an error.
	assert.NoError(t, m.Send(context.Background(), &Message{To: []string{"x@example.com"}}))
}
