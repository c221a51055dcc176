package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"nonprofit-platform/config"
	"nonprofit-platform/internal/mailer"
	"nonprofit-platform/internal/payment/paystack"
	"nonprofit-platform/internal/status"
	"nonprofit-platform/models"
	"nonprofit-platform/monitoring"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

type TicketService struct {
	app     core.App
	gateway Gateway
	notify  *NotifyService
	mailer  *mailer.Mailer
	cfg     *config.Config
}

func NewTicketService(app core.App, gateway Gateway, notify *NotifyService, m *mailer.Mailer, cfg *config.Config) *TicketService {
	return &TicketService{
		app:     app,
		gateway: gateway,
		notify:  notify,
		mailer:  m,
		cfg:     cfg,
	}
}

type PurchaseRequest struct {
	Quantity         int    `json:"quantity"`
	CustomerName     string `json:"customer_name"`
	CustomerEmail    string `json:"customer_email"`
	CustomerPhone    string `json:"customer_phone"`
	PaymentReference string `json:"payment_reference"`
}

// Purchase reserves tickets for a published event and records a pending
// purchase. The decrement is a conditional UPDATE so concurrent buyers
// cannot take the counter below zero; losing requests get
// ErrInsufficientTickets instead of overselling.
func (s *TicketService) Purchase(ctx context.Context, eventID string, req *PurchaseRequest) (*core.Record, error) {
	event, err := s.app.FindRecordById("events", eventID)
	if err != nil {
		return nil, fmt.Errorf("purchase: event %s: %w", eventID, err)
	}
	if event.GetString("status") != "published" {
		return nil, fmt.Errorf("purchase: event %s is not open for sales", eventID)
	}

	res, err := s.app.DB().NewQuery(
		"UPDATE events SET available_tickets = available_tickets - {:qty} WHERE id = {:id} AND available_tickets >= {:qty}",
	).Bind(dbx.Params{"qty": req.Quantity, "id": eventID}).WithContext(ctx).Execute()
	if err != nil {
		return nil, fmt.Errorf("purchase: reserve tickets: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, status.ErrInsufficientTickets
	}

	reference := req.PaymentReference
	if reference == "" {
		reference = paystack.NewReference("tkt")
	}

	amount := decimal.NewFromFloat(event.GetFloat("ticket_price")).
		Mul(decimal.NewFromInt(int64(req.Quantity)))

	collection, err := s.app.FindCollectionByNameOrId("ticket_purchases")
	if err != nil {
		s.releaseTickets(ctx, eventID, req.Quantity)
		return nil, fmt.Errorf("purchase: ticket_purchases collection: %w", err)
	}

	purchase := core.NewRecord(collection)
	purchase.Set("event_id", eventID)
	purchase.Set("customer_name", req.CustomerName)
	purchase.Set("customer_email", req.CustomerEmail)
	purchase.Set("customer_phone", req.CustomerPhone)
	purchase.Set("quantity", req.Quantity)
	purchase.Set("total_amount", amount.InexactFloat64())
	purchase.Set("payment_reference", reference)
	purchase.Set("status", models.PurchasePending)
	purchase.Set("payment_status", models.PaymentPending)

	if err := s.app.SaveWithContext(ctx, purchase); err != nil {
		// Compensate the reservation so the tickets go back on sale.
		s.releaseTickets(ctx, eventID, req.Quantity)
		return nil, fmt.Errorf("purchase: save purchase: %w", err)
	}

	monitoring.TrackPaymentOperation("create", "ticket", "pending")

	return purchase, nil
}

// releaseTickets returns a failed reservation to the pool, capped at
// max_tickets.
func (s *TicketService) releaseTickets(ctx context.Context, eventID string, quantity int) {
	_, err := s.app.DB().NewQuery(
		"UPDATE events SET available_tickets = MIN(available_tickets + {:qty}, max_tickets) WHERE id = {:id}",
	).Bind(dbx.Params{"qty": quantity, "id": eventID}).WithContext(ctx).Execute()
	if err != nil {
		slog.Error("purchase: failed to release reserved tickets",
			"event_id", eventID,
			"quantity", quantity,
			"error", err,
		)
	}
}

// Verify settles a pending purchase against the gateway. Verifying an
// already-confirmed reference is a no-op success; tickets are never
// decremented here, only at purchase time.
func (s *TicketService) Verify(ctx context.Context, reference string) (*core.Record, error) {
	purchase, err := s.app.FindFirstRecordByFilter(
		"ticket_purchases",
		"payment_reference = {:ref}",
		dbx.Params{"ref": reference},
	)
	if err != nil {
		return nil, status.ErrReferenceNotFound
	}

	if purchase.GetString("payment_status") == models.PaymentSuccess {
		return purchase, nil
	}

	start := time.Now()
	tx, err := s.gateway.Verify(ctx, reference)
	monitoring.TrackVerifyDuration("ticket", time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, status.ErrGatewayUnavailable) && s.cfg.IsDevelopment() {
			// Development fallback: the gateway sandbox is often
			// unreachable locally, so assume success rather than
			// blocking manual testing. Never active in production.
			slog.Warn("verify: gateway unavailable, development fallback to success", "reference", reference)
			return s.confirmPurchase(ctx, purchase)
		}
		monitoring.TrackPaymentOperation("verify", "ticket", "error")
		return nil, fmt.Errorf("verify: gateway: %w", err)
	}

	if !tx.Succeeded() {
		purchase.Set("payment_status", models.PaymentFailed)
		if err := s.app.SaveWithContext(ctx, purchase); err != nil {
			return nil, fmt.Errorf("verify: mark failed: %w", err)
		}
		monitoring.TrackPaymentOperation("verify", "ticket", "failed")
		return purchase, status.ErrFailedPayment
	}

	return s.confirmPurchase(ctx, purchase)
}

// ConfirmFromWebhook settles a purchase from a signed gateway webhook,
// skipping the verify round trip. Idempotent on repeated delivery.
func (s *TicketService) ConfirmFromWebhook(ctx context.Context, reference string, success bool) error {
	purchase, err := s.app.FindFirstRecordByFilter(
		"ticket_purchases",
		"payment_reference = {:ref}",
		dbx.Params{"ref": reference},
	)
	if err != nil {
		return status.ErrReferenceNotFound
	}

	if purchase.GetString("payment_status") == models.PaymentSuccess {
		return nil
	}

	if !success {
		purchase.Set("payment_status", models.PaymentFailed)
		monitoring.TrackPaymentOperation("webhook", "ticket", "failed")
		return s.app.SaveWithContext(ctx, purchase)
	}

	_, err = s.confirmPurchase(ctx, purchase)
	return err
}

func (s *TicketService) confirmPurchase(ctx context.Context, purchase *core.Record) (*core.Record, error) {
	now := time.Now().UTC()

	purchase.Set("status", models.PurchaseConfirmed)
	purchase.Set("payment_status", models.PaymentSuccess)
	purchase.Set("verified_at", now)

	if err := s.app.SaveWithContext(ctx, purchase); err != nil {
		return nil, fmt.Errorf("verify: confirm purchase: %w", err)
	}

	eventID := purchase.GetString("event_id")
	quantity := purchase.GetInt("quantity")
	email := purchase.GetString("customer_email")

	monitoring.TrackPaymentOperation("verify", "ticket", "success")
	monitoring.TrackTicketsSold(eventID, quantity)

	s.notify.PaymentSettled("ticket", purchase.GetString("payment_reference"), email, "success", purchase.GetFloat("total_amount"))

	if err := s.mailer.Send(ctx, &mailer.Message{
		To:      []string{email},
		Subject: "Your tickets are confirmed",
		Text: fmt.Sprintf("Hi %s, your purchase of %d ticket(s) is confirmed. Reference: %s.",
			purchase.GetString("customer_name"), quantity, purchase.GetString("payment_reference")),
	}); err != nil {
		slog.Error("verify: ticket receipt email failed", "reference", purchase.GetString("payment_reference"), "error", err)
	}

	return purchase, nil
}
