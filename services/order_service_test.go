package services

import (
	"testing"

	"nonprofit-platform/config"
	"nonprofit-platform/models"

	"github.com/stretchr/testify/assert"
)

func testShopConfig() *config.Config {
	return &config.Config{
		ShippingFlatRate:      1500,
		FreeShippingThreshold: 50000,
	}
}

func TestComputeTotals_FlatShipping(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: "p1", Quantity: 2, UnitPrice: 2500, Subtotal: 5000},
		{ProductID: "p2", Quantity: 1, UnitPrice: 1200, Subtotal: 1200},
	}

	subtotal, shipping, total := ComputeTotals(items, testShopConfig())

	assert.Equal(t, 6200.0, subtotal)
	assert.Equal(t, 1500.0, shipping)
	assert.Equal(t, 7700.0, total)
}

func TestComputeTotals_FreeShippingAtThreshold(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: "p1", Quantity: 1, UnitPrice: 50000, Subtotal: 50000},
	}

	subtotal, shipping, total := ComputeTotals(items, testShopConfig())

	assert.Equal(t, 50000.0, subtotal)
	assert.Equal(t, 0.0, shipping)
	assert.Equal(t, 50000.0, total)
}

func TestComputeTotals_JustBelowThreshold(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: "p1", Quantity: 1, UnitPrice: 49999.99, Subtotal: 49999.99},
	}

	subtotal, shipping, total := ComputeTotals(items, testShopConfig())

	assert.Equal(t, 49999.99, subtotal)
	assert.Equal(t, 1500.0, shipping)
	assert.Equal(t, 51499.99, total)
}

func TestComputeTotals_DecimalPrices(t *testing.T) {
	// Three items at 0.10 each must not accumulate float error.
	items := []models.OrderItem{
		{ProductID: "p1", Quantity: 1, UnitPrice: 0.10, Subtotal: 0.10},
		{ProductID: "p2", Quantity: 1, UnitPrice: 0.10, Subtotal: 0.10},
		{ProductID: "p3", Quantity: 1, UnitPrice: 0.10, Subtotal: 0.10},
	}

	subtotal, _, _ := ComputeTotals(items, testShopConfig())

	assert.Equal(t, 0.3, subtotal)
}

func TestComputeTotals_EmptyOrder(t *testing.T) {
	subtotal, shipping, total := ComputeTotals(nil, testShopConfig())

	assert.Equal(t, 0.0, subtotal)
	assert.Equal(t, 1500.0, shipping)
	assert.Equal(t, 1500.0, total)
}
