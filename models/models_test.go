package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsletterSubscriber_TokenNeverSerialized(t *testing.T) {
	subscriber := NewsletterSubscriber{
		ID:               "sub-1",
		Email:            "reader@example.com",
		UnsubscribeToken: "a1b2c3d4e5f6",
		Subscribed:       true,
	}

	data, err := json.Marshal(subscriber)
	require.NoError(t, err)

	// The token authorizes unsubscribes; it must never leak through
	// list responses.
	assert.NotContains(t, string(data), "a1b2c3d4e5f6")
	assert.NotContains(t, string(data), "unsubscribe_token")
	assert.Contains(t, string(data), "reader@example.com")
}

func TestEventStatuses(t *testing.T) {
	assert.Contains(t, EventStatuses, "draft")
	assert.Contains(t, EventStatuses, "published")
	assert.Contains(t, EventStatuses, "cancelled")
	assert.NotContains(t, EventStatuses, "deleted")
}

func TestOrderItem_SnapshotFields(t *testing.T) {
	item := OrderItem{
		ProductID:   "p1",
		ProductName: "Tote bag",
		UnitPrice:   2500,
		Quantity:    2,
		Subtotal:    5000,
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var decoded OrderItem
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, item, decoded)
}

func TestPurchaseStatusConstants(t *testing.T) {
	assert.Equal(t, "pending", PurchasePending)
	assert.Equal(t, "confirmed", PurchaseConfirmed)
	assert.Equal(t, "cancelled", PurchaseCancelled)
	assert.Equal(t, "pending", PaymentPending)
	assert.Equal(t, "success", PaymentSuccess)
	assert.Equal(t, "failed", PaymentFailed)
}
