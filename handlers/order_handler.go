package handlers

import (
	"errors"
	"net/http"

	"nonprofit-platform/internal/status"
	"nonprofit-platform/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type OrderHandler struct {
	app          core.App
	orderService *services.OrderService
}

func NewOrderHandler(app core.App, orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		app:          app,
		orderService: orderService,
	}
}

// CreateOrder - Price and reserve an order server-side
func (h *OrderHandler) CreateOrder(e *core.RequestEvent) error {
	var req services.OrderRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.CustomerName == "" || req.CustomerEmail == "" || req.ShippingAddress == "" {
		return apis.NewBadRequestError("Customer name, email and shipping address are required", nil)
	}
	if len(req.Items) == 0 {
		return apis.NewBadRequestError("Order must contain at least one item", nil)
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return apis.NewBadRequestError("Item quantity must be at least 1", nil)
		}
	}

	userID := ""
	if e.Auth != nil {
		userID = e.Auth.Id
	}

	order, err := h.orderService.Create(e.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, status.ErrInsufficientStock) {
			return apis.NewBadRequestError("Not enough stock for one or more items", nil)
		}
		return apis.NewBadRequestError("Failed to create order", err)
	}

	return e.JSON(http.StatusCreated, map[string]any{
		"order_id":          order.Id,
		"payment_reference": order.GetString("payment_reference"),
		"subtotal":          order.GetFloat("subtotal"),
		"shipping":          order.GetFloat("shipping"),
		"total":             order.GetFloat("total"),
	})
}

// VerifyOrder - Settle a pending order by reference
func (h *OrderHandler) VerifyOrder(e *core.RequestEvent) error {
	var req struct {
		PaymentReference string `json:"payment_reference"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.PaymentReference == "" {
		return apis.NewBadRequestError("payment_reference is required", nil)
	}

	order, err := h.orderService.Verify(e.Request.Context(), req.PaymentReference)
	if err != nil {
		switch {
		case errors.Is(err, status.ErrReferenceNotFound):
			return apis.NewNotFoundError("Order not found", nil)
		case errors.Is(err, status.ErrFailedPayment):
			return apis.NewBadRequestError("Payment was not successful", nil)
		case errors.Is(err, status.ErrGatewayUnavailable):
			return apis.NewApiError(http.StatusBadGateway, "Payment gateway unavailable", nil)
		default:
			return apis.NewBadRequestError("Failed to verify order", err)
		}
	}

	return e.JSON(http.StatusOK, map[string]any{
		"payment_reference": order.GetString("payment_reference"),
		"status":            order.GetString("status"),
		"payment_status":    order.GetString("payment_status"),
	})
}

// MyOrders - Authenticated user's order history
func (h *OrderHandler) MyOrders(e *core.RequestEvent) error {
	orders, err := h.app.FindRecordsByFilter(
		"orders",
		"user_id = {:userId} || customer_email = {:email}",
		"-created",
		50,
		0,
		map[string]any{"userId": e.Auth.Id, "email": e.Auth.GetString("email")},
	)
	if err != nil {
		return apis.NewBadRequestError("Failed to get orders", err)
	}
	return e.JSON(http.StatusOK, orders)
}

// ListOrders - Admin: recent orders
func (h *OrderHandler) ListOrders(e *core.RequestEvent) error {
	orders, err := h.app.FindRecordsByFilter(
		"orders",
		"id != ''",
		"-created",
		100,
		0,
	)
	if err != nil {
		return apis.NewBadRequestError("Failed to list orders", err)
	}
	return e.JSON(http.StatusOK, orders)
}

// UpdateOrderStatus - Admin: move an order through fulfilment states
func (h *OrderHandler) UpdateOrderStatus(e *core.RequestEvent) error {
	orderID := e.Request.PathValue("orderId")

	var req struct {
		Status string `json:"status"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	switch req.Status {
	case "pending", "confirmed", "shipped", "delivered", "cancelled":
	default:
		return apis.NewBadRequestError("Invalid status", nil)
	}

	order, err := h.orderService.UpdateStatus(e.Request.Context(), orderID, req.Status)
	if err != nil {
		return apis.NewNotFoundError("Order not found", err)
	}

	return e.JSON(http.StatusOK, order)
}
