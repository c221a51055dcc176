package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"nonprofit-platform/config"
	"nonprofit-platform/internal/payment/paystack"
	"nonprofit-platform/internal/status"
	"nonprofit-platform/models"
	"nonprofit-platform/monitoring"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

type OrderService struct {
	app     core.App
	gateway Gateway
	notify  *NotifyService
	cfg     *config.Config
}

func NewOrderService(app core.App, gateway Gateway, notify *NotifyService, cfg *config.Config) *OrderService {
	return &OrderService{
		app:     app,
		gateway: gateway,
		notify:  notify,
		cfg:     cfg,
	}
}

type OrderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type OrderRequest struct {
	CustomerName    string             `json:"customer_name"`
	CustomerEmail   string             `json:"customer_email"`
	ShippingAddress string             `json:"shipping_address"`
	Items           []OrderItemRequest `json:"items"`
}

// ComputeTotals prices an order from server-side line items. Shipping
// is the configured flat rate, waived above the free-shipping
// threshold. Client-sent totals are never consulted.
func ComputeTotals(items []models.OrderItem, cfg *config.Config) (subtotal, shipping, total float64) {
	sub := decimal.Zero
	for _, item := range items {
		sub = sub.Add(decimal.NewFromFloat(item.Subtotal))
	}

	ship := decimal.NewFromFloat(cfg.ShippingFlatRate)
	if sub.GreaterThanOrEqual(decimal.NewFromFloat(cfg.FreeShippingThreshold)) {
		ship = decimal.Zero
	}

	return sub.InexactFloat64(), ship.InexactFloat64(), sub.Add(ship).InexactFloat64()
}

// Create prices the order from current product rows, reserves stock
// with conditional decrements, and records a pending order. A failed
// reservation mid-order puts already-reserved stock back.
func (s *OrderService) Create(ctx context.Context, userID string, req *OrderRequest) (*core.Record, error) {
	if len(req.Items) == 0 {
		return nil, errors.New("order: no items")
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		product, err := s.app.FindRecordById("products", line.ProductID)
		if err != nil {
			s.releaseStock(ctx, items)
			return nil, fmt.Errorf("order: product %s: %w", line.ProductID, err)
		}

		res, err := s.app.DB().NewQuery(
			"UPDATE products SET stock_quantity = stock_quantity - {:qty} WHERE id = {:id} AND stock_quantity >= {:qty}",
		).Bind(dbx.Params{"qty": line.Quantity, "id": line.ProductID}).WithContext(ctx).Execute()
		if err != nil {
			s.releaseStock(ctx, items)
			return nil, fmt.Errorf("order: reserve stock for %s: %w", line.ProductID, err)
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			s.releaseStock(ctx, items)
			return nil, status.ErrInsufficientStock
		}

		price := decimal.NewFromFloat(product.GetFloat("price"))
		items = append(items, models.OrderItem{
			ProductID:   line.ProductID,
			ProductName: product.GetString("name"),
			UnitPrice:   price.InexactFloat64(),
			Quantity:    line.Quantity,
			Subtotal:    price.Mul(decimal.NewFromInt(int64(line.Quantity))).InexactFloat64(),
		})

		s.syncInStock(ctx, line.ProductID)
	}

	subtotal, shipping, total := ComputeTotals(items, s.cfg)
	reference := paystack.NewReference("ord")

	collection, err := s.app.FindCollectionByNameOrId("orders")
	if err != nil {
		s.releaseStock(ctx, items)
		return nil, fmt.Errorf("order: orders collection: %w", err)
	}

	order := core.NewRecord(collection)
	order.Set("user_id", userID)
	order.Set("customer_name", req.CustomerName)
	order.Set("customer_email", req.CustomerEmail)
	order.Set("shipping_address", req.ShippingAddress)
	order.Set("items", items)
	order.Set("subtotal", subtotal)
	order.Set("shipping", shipping)
	order.Set("total", total)
	order.Set("payment_reference", reference)
	order.Set("status", "pending")
	order.Set("payment_status", models.PaymentPending)

	if err := s.app.SaveWithContext(ctx, order); err != nil {
		s.releaseStock(ctx, items)
		return nil, fmt.Errorf("order: save: %w", err)
	}

	monitoring.TrackPaymentOperation("create", "order", "pending")

	return order, nil
}

// Verify settles a pending order against the gateway, idempotent on
// already-successful references.
func (s *OrderService) Verify(ctx context.Context, reference string) (*core.Record, error) {
	order, err := s.app.FindFirstRecordByFilter(
		"orders",
		"payment_reference = {:ref}",
		dbx.Params{"ref": reference},
	)
	if err != nil {
		return nil, status.ErrReferenceNotFound
	}

	if order.GetString("payment_status") == models.PaymentSuccess {
		return order, nil
	}

	start := time.Now()
	tx, err := s.gateway.Verify(ctx, reference)
	monitoring.TrackVerifyDuration("order", time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, status.ErrGatewayUnavailable) && s.cfg.IsDevelopment() {
			slog.Warn("verify: gateway unavailable, development fallback to success", "reference", reference)
			return s.confirmOrder(ctx, order)
		}
		monitoring.TrackPaymentOperation("verify", "order", "error")
		return nil, fmt.Errorf("verify: gateway: %w", err)
	}

	if !tx.Succeeded() {
		order.Set("payment_status", models.PaymentFailed)
		if err := s.app.SaveWithContext(ctx, order); err != nil {
			return nil, fmt.Errorf("verify: mark failed: %w", err)
		}
		monitoring.TrackPaymentOperation("verify", "order", "failed")
		return order, status.ErrFailedPayment
	}

	return s.confirmOrder(ctx, order)
}

// ConfirmFromWebhook settles an order from a signed gateway webhook.
func (s *OrderService) ConfirmFromWebhook(ctx context.Context, reference string, success bool) error {
	order, err := s.app.FindFirstRecordByFilter(
		"orders",
		"payment_reference = {:ref}",
		dbx.Params{"ref": reference},
	)
	if err != nil {
		return status.ErrReferenceNotFound
	}

	if order.GetString("payment_status") == models.PaymentSuccess {
		return nil
	}

	if !success {
		order.Set("payment_status", models.PaymentFailed)
		monitoring.TrackPaymentOperation("webhook", "order", "failed")
		return s.app.SaveWithContext(ctx, order)
	}

	_, err = s.confirmOrder(ctx, order)
	return err
}

// UpdateStatus moves an order through its fulfilment states. Admin
// only; the handler enforces the role gate.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, orderStatus string) (*core.Record, error) {
	order, err := s.app.FindRecordById("orders", orderID)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", orderID, err)
	}

	order.Set("status", orderStatus)
	if err := s.app.SaveWithContext(ctx, order); err != nil {
		return nil, fmt.Errorf("order %s: update status: %w", orderID, err)
	}

	return order, nil
}

func (s *OrderService) confirmOrder(ctx context.Context, order *core.Record) (*core.Record, error) {
	order.Set("status", "confirmed")
	order.Set("payment_status", models.PaymentSuccess)

	if err := s.app.SaveWithContext(ctx, order); err != nil {
		return nil, fmt.Errorf("verify: confirm order: %w", err)
	}

	monitoring.TrackPaymentOperation("verify", "order", "success")

	s.notify.PaymentSettled("order",
		order.GetString("payment_reference"),
		order.GetString("customer_email"),
		"success",
		order.GetFloat("total"),
	)

	return order, nil
}

func (s *OrderService) releaseStock(ctx context.Context, reserved []models.OrderItem) {
	for _, item := range reserved {
		_, err := s.app.DB().NewQuery(
			"UPDATE products SET stock_quantity = stock_quantity + {:qty} WHERE id = {:id}",
		).Bind(dbx.Params{"qty": item.Quantity, "id": item.ProductID}).WithContext(ctx).Execute()
		if err != nil {
			slog.Error("order: failed to release reserved stock",
				"product_id", item.ProductID,
				"quantity", item.Quantity,
				"error", err,
			)
			continue
		}
		s.syncInStock(ctx, item.ProductID)
	}
}

// syncInStock keeps the denormalized in_stock flag aligned with
// stock_quantity after raw UPDATEs that bypass record hooks.
func (s *OrderService) syncInStock(ctx context.Context, productID string) {
	_, err := s.app.DB().NewQuery(
		"UPDATE products SET in_stock = (stock_quantity > 0) WHERE id = {:id}",
	).Bind(dbx.Params{"id": productID}).WithContext(ctx).Execute()
	if err != nil {
		slog.Error("order: failed to sync in_stock flag", "product_id", productID, "error", err)
	}
}
