package paystack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"nonprofit-platform/internal/status"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeTransaction_Success(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]any{
				"authorization_url": "https://checkout.example.com/abc123",
				"access_code":       "abc123",
				"reference":         "don_test",
			},
		})
	}))
	defer server.Close()

	client := newClient(&ClientConfig{BaseURL: server.URL, SecretKey: "sk_test_secret"})

	auth, err := client.initializeTransaction(context.Background(), &ChargeRequest{
		Email:     "donor@example.com",
		Amount:    decimal.NewFromFloat(2500.50),
		Reference: "don_test",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/abc123", auth.AuthorizationURL)
	assert.Equal(t, "abc123", auth.AccessCode)
	assert.Equal(t, "don_test", auth.Reference)

	assert.Equal(t, "Bearer sk_test_secret", gotAuth)
	assert.Equal(t, "donor@example.com", gotBody["email"])
	// Amount crosses the wire in kobo.
	assert.Equal(t, float64(250050), gotBody["amount"])
	assert.Equal(t, "don_test", gotBody["reference"])
}

func TestInitializeTransaction_DeclinedByGateway(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"status":  false,
			"message": "Invalid amount",
		})
	}))
	defer server.Close()

	client := newClient(&ClientConfig{BaseURL: server.URL, SecretKey: "sk"})

	_, err := client.initializeTransaction(context.Background(), &ChargeRequest{
		Email:  "donor@example.com",
		Amount: decimal.Zero,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid amount")
}

func TestInitializeTransaction_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newClient(&ClientConfig{BaseURL: server.URL, SecretKey: "sk"})

	_, err := client.initializeTransaction(context.Background(), &ChargeRequest{
		Email:  "donor@example.com",
		Amount: decimal.NewFromInt(100),
	})

	assert.ErrorIs(t, err, status.ErrGatewayUnavailable)
}

func TestVerifyTransaction_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/tkt_abc", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{
			"status":  true,
			"message": "Verification successful",
			"data": map[string]any{
				"id":        1234567,
				"status":    "success",
				"reference": "tkt_abc",
				"amount":    500000,
				"currency":  "NGN",
				"channel":   "card",
				"paid_at":   "2026-08-30T12:00:00Z",
				"customer":  map[string]any{"email": "buyer@example.com"},
			},
		})
	}))
	defer server.Close()

	client := newClient(&ClientConfig{BaseURL: server.URL, SecretKey: "sk"})

	tx, err := client.verifyTransaction(context.Background(), "tkt_abc")

	require.NoError(t, err)
	assert.Equal(t, int64(1234567), tx.ID)
	assert.Equal(t, "tkt_abc", tx.Reference)
	assert.True(t, tx.Succeeded())
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, "buyer@example.com", tx.CustomerEmail)
	assert.Equal(t, 2026, tx.PaidAt.Year())
}

func TestVerifyTransaction_Failed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status":  true,
			"message": "Verification successful",
			"data": map[string]any{
				"id":        7,
				"status":    "failed",
				"reference": "tkt_abc",
				"amount":    500000,
				"customer":  map[string]any{"email": "buyer@example.com"},
			},
		})
	}))
	defer server.Close()

	client := newClient(&ClientConfig{BaseURL: server.URL, SecretKey: "sk"})

	tx, err := client.verifyTransaction(context.Background(), "tkt_abc")

	require.NoError(t, err)
	assert.False(t, tx.Succeeded())
}

func TestVerifyTransaction_UnknownReference(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newClient(&ClientConfig{BaseURL: server.URL, SecretKey: "sk"})

	_, err := client.verifyTransaction(context.Background(), "nope")

	assert.ErrorIs(t, err, status.ErrReferenceNotFound)
}

func TestVerifyTransaction_GatewayDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newClient(&ClientConfig{BaseURL: server.URL, SecretKey: "sk"})

	_, err := client.verifyTransaction(context.Background(), "tkt_abc")

	assert.ErrorIs(t, err, status.ErrGatewayUnavailable)
}

func TestVerifyTransaction_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused

	client := newClient(&ClientConfig{BaseURL: server.URL, SecretKey: "sk"})

	_, err := client.verifyTransaction(context.Background(), "tkt_abc")

	assert.ErrorIs(t, err, status.ErrGatewayUnavailable)
}

func TestToKobo(t *testing.T) {
	assert.Equal(t, int64(100), toKobo(decimal.NewFromInt(1)))
	assert.Equal(t, int64(250050), toKobo(decimal.NewFromFloat(2500.50)))
	assert.Equal(t, int64(0), toKobo(decimal.Zero))
}
