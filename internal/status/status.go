package status

import "errors"

var (
	ErrFailedPayment       = errors.New("payment: payment failed")
	ErrReferenceNotFound   = errors.New("payment: reference not found")
	ErrGatewayUnavailable  = errors.New("payment: gateway unavailable")
	ErrInsufficientTickets = errors.New("tickets: not enough tickets available")
	ErrInsufficientStock   = errors.New("shop: not enough stock")
	ErrDuplicateSubscriber = errors.New("newsletter: email already subscribed")
)
