package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"nonprofit-platform/config"
	"nonprofit-platform/internal/payment/paystack"
	"nonprofit-platform/internal/status"

	"github.com/go-redis/redismock/v9"
	"github.com/pocketbase/pocketbase/tools/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settlerFunc func(ctx context.Context, reference string, success bool) error

func (f settlerFunc) ConfirmFromWebhook(ctx context.Context, reference string, success bool) error {
	return f(ctx, reference, success)
}

var noMatchSettler = settlerFunc(func(context.Context, string, bool) error {
	return status.ErrReferenceNotFound
})

func TestWebhookPayload_DedupKey(t *testing.T) {
	withID := &WebhookPayload{Event: "charge.success"}
	withID.Data.ID = 4242
	withID.Data.Reference = "don_abc"

	withoutID := &WebhookPayload{Event: "charge.success"}
	withoutID.Data.Reference = "don_abc"

	assert.Equal(t, "webhook:event:charge.success:4242", withID.DedupKey())
	assert.Equal(t, "webhook:event:charge.success:don_abc", withoutID.DedupKey())

	// Redelivery of the same transaction id maps to the same key even
	// if other payload fields drift.
	redelivered := &WebhookPayload{Event: "charge.success"}
	redelivered.Data.ID = 4242
	redelivered.Data.Status = "success"
	assert.Equal(t, withID.DedupKey(), redelivered.DedupKey())

	failed := &WebhookPayload{Event: "charge.failed"}
	failed.Data.ID = 4242
	assert.NotEqual(t, withID.DedupKey(), failed.DedupKey())
}

func TestWebhookPayload_Unmarshal(t *testing.T) {
	raw := []byte(`{
		"event": "charge.success",
		"data": {
			"id": 302961,
			"reference": "tkt_5f3b2c",
			"status": "success",
			"amount": 500000
		}
	}`)

	var payload WebhookPayload
	require.NoError(t, json.Unmarshal(raw, &payload))

	assert.Equal(t, "charge.success", payload.Event)
	assert.Equal(t, int64(302961), payload.Data.ID)
	assert.Equal(t, "tkt_5f3b2c", payload.Data.Reference)
	assert.Equal(t, "success", payload.Data.Status)
}

func TestHandlePaystack_RetryAfterDispatchFailure(t *testing.T) {
	const secret = "sk_test_webhook"

	db, redisMock := redismock.NewClientMock()

	calls := 0
	h := &WebhookHandler{
		tickets: settlerFunc(func(context.Context, string, bool) error {
			calls++
			if calls == 1 {
				return errors.New("database is locked")
			}
			return nil
		}),
		donations: noMatchSettler,
		orders:    noMatchSettler,
		redis:     db,
		cfg:       &config.Config{WebhookSecret: secret, WebhookDedupTTL: time.Hour},
	}

	body := []byte(`{"event":"charge.success","data":{"id":99,"reference":"tkt_retry1","status":"success"}}`)
	key := "webhook:event:charge.success:99"

	// First delivery: the settlement fails transiently, so the handler
	// must release the dedup key and surface a 500 for redelivery.
	redisMock.ExpectSetNX(key, 1, time.Hour).SetVal(true)
	redisMock.ExpectDel(key).SetVal(1)

	e, _ := newJSONRequestEvent(nil, http.MethodPost, "/api/v1/webhooks/paystack", string(body))
	e.Request.Header.Set("x-paystack-signature", paystack.Hmac512(body, []byte(secret)))

	err := h.HandlePaystack(e)
	require.Error(t, err)
	var apiErr *router.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)

	// Redelivery: the key is free again, so the event is processed
	// instead of being acknowledged as a duplicate.
	redisMock.ExpectSetNX(key, 1, time.Hour).SetVal(true)

	e, rec := newJSONRequestEvent(nil, http.MethodPost, "/api/v1/webhooks/paystack", string(body))
	e.Request.Header.Set("x-paystack-signature", paystack.Hmac512(body, []byte(secret)))

	require.NoError(t, h.HandlePaystack(e))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Processed")

	assert.Equal(t, 2, calls)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandlePaystack_DuplicateAcknowledgedWithoutDispatch(t *testing.T) {
	const secret = "sk_test_webhook"

	db, redisMock := redismock.NewClientMock()

	h := &WebhookHandler{
		tickets: settlerFunc(func(context.Context, string, bool) error {
			t.Fatal("duplicate delivery must not reach the services")
			return nil
		}),
		donations: noMatchSettler,
		orders:    noMatchSettler,
		redis:     db,
		cfg:       &config.Config{WebhookSecret: secret, WebhookDedupTTL: time.Hour},
	}

	body := []byte(`{"event":"charge.success","data":{"id":42,"reference":"tkt_dup","status":"success"}}`)
	redisMock.ExpectSetNX("webhook:event:charge.success:42", 1, time.Hour).SetVal(false)

	e, rec := newJSONRequestEvent(nil, http.MethodPost, "/api/v1/webhooks/paystack", string(body))
	e.Request.Header.Set("x-paystack-signature", paystack.Hmac512(body, []byte(secret)))

	require.NoError(t, h.HandlePaystack(e))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Already processed")
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestDispatch_PrefixMissFallsThroughToProbe(t *testing.T) {
	var settled string
	h := &WebhookHandler{
		donations: noMatchSettler,
		tickets:   noMatchSettler,
		orders: settlerFunc(func(_ context.Context, reference string, _ bool) error {
			settled = reference
			return nil
		}),
	}

	// A client-issued reference wearing the donation prefix but living
	// in the orders collection still settles.
	err := h.dispatch(context.Background(), "don_client123", true)
	require.NoError(t, err)
	assert.Equal(t, "don_client123", settled)
}

func TestDispatch_NoMatchAnywhere(t *testing.T) {
	h := &WebhookHandler{
		donations: noMatchSettler,
		tickets:   noMatchSettler,
		orders:    noMatchSettler,
	}

	err := h.dispatch(context.Background(), "tkt_ghost", true)
	assert.ErrorIs(t, err, status.ErrReferenceNotFound)
}

func TestDispatch_PrefixedServiceErrorStopsProbing(t *testing.T) {
	boom := fmt.Errorf("update ticket_purchases: %w", errors.New("database is locked"))
	h := &WebhookHandler{
		donations: noMatchSettler,
		tickets: settlerFunc(func(context.Context, string, bool) error {
			return boom
		}),
		orders: settlerFunc(func(context.Context, string, bool) error {
			t.Fatal("probing must not continue past a real failure")
			return nil
		}),
	}

	err := h.dispatch(context.Background(), "tkt_abc", true)
	assert.ErrorIs(t, err, boom)
}
