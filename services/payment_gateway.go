package services

import (
	"context"

	"nonprofit-platform/internal/payment/paystack"
)

// Gateway is the payment provider surface the services depend on.
// *paystack.Paystack is the production implementation; tests substitute
// a mock.
type Gateway interface {
	// Initialize creates a transaction and returns the hosted checkout
	// authorization.
	Initialize(ctx context.Context, req *paystack.ChargeRequest) (*paystack.Authorization, error)

	// Verify fetches the settled state of a transaction by reference.
	Verify(ctx context.Context, reference string) (*paystack.Transaction, error)
}
