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

type DonationService struct {
	app     core.App
	gateway Gateway
	notify  *NotifyService
	mailer  *mailer.Mailer
	cfg     *config.Config
}

func NewDonationService(app core.App, gateway Gateway, notify *NotifyService, m *mailer.Mailer, cfg *config.Config) *DonationService {
	return &DonationService{
		app:     app,
		gateway: gateway,
		notify:  notify,
		mailer:  m,
		cfg:     cfg,
	}
}

type DonationRequest struct {
	DonorName  string  `json:"donor_name"`
	DonorEmail string  `json:"donor_email"`
	Amount     float64 `json:"amount"`
	Message    string  `json:"message"`
	Anonymous  bool    `json:"anonymous"`
}

// Create records a pending donation and opens a checkout session on
// the gateway. The donation row exists before the donor ever reaches
// the gateway, so abandoned checkouts stay visible as pending.
func (s *DonationService) Create(ctx context.Context, req *DonationRequest) (*core.Record, *paystack.Authorization, error) {
	reference := paystack.NewReference("don")

	collection, err := s.app.FindCollectionByNameOrId("donations")
	if err != nil {
		return nil, nil, fmt.Errorf("donation: donations collection: %w", err)
	}

	donation := core.NewRecord(collection)
	donation.Set("donor_name", req.DonorName)
	donation.Set("donor_email", req.DonorEmail)
	donation.Set("amount", req.Amount)
	donation.Set("message", req.Message)
	donation.Set("anonymous", req.Anonymous)
	donation.Set("payment_reference", reference)
	donation.Set("payment_status", models.PaymentPending)

	if err := s.app.SaveWithContext(ctx, donation); err != nil {
		return nil, nil, fmt.Errorf("donation: save: %w", err)
	}

	auth, err := s.gateway.Initialize(ctx, &paystack.ChargeRequest{
		Email:     req.DonorEmail,
		Amount:    decimal.NewFromFloat(req.Amount),
		Reference: reference,
	})
	if err != nil {
		// Manual rollback: drop the row rather than leaving a pending
		// donation no checkout session points at.
		if delErr := s.app.DeleteWithContext(ctx, donation); delErr != nil {
			slog.Error("donation: cleanup after failed initialize", "reference", reference, "error", delErr)
		}
		monitoring.TrackPaymentOperation("create", "donation", "error")
		return nil, nil, fmt.Errorf("donation: initialize: %w", err)
	}

	monitoring.TrackPaymentOperation("create", "donation", "pending")

	return donation, auth, nil
}

// Verify settles a pending donation against the gateway. Repeat calls
// on an already-successful reference return success without side
// effects.
func (s *DonationService) Verify(ctx context.Context, reference string) (*core.Record, error) {
	donation, err := s.app.FindFirstRecordByFilter(
		"donations",
		"payment_reference = {:ref}",
		dbx.Params{"ref": reference},
	)
	if err != nil {
		return nil, status.ErrReferenceNotFound
	}

	if donation.GetString("payment_status") == models.PaymentSuccess {
		return donation, nil
	}

	start := time.Now()
	tx, err := s.gateway.Verify(ctx, reference)
	monitoring.TrackVerifyDuration("donation", time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, status.ErrGatewayUnavailable) && s.cfg.IsDevelopment() {
			slog.Warn("verify: gateway unavailable, development fallback to success", "reference", reference)
			return s.confirmDonation(ctx, donation)
		}
		monitoring.TrackPaymentOperation("verify", "donation", "error")
		return nil, fmt.Errorf("verify: gateway: %w", err)
	}

	if !tx.Succeeded() {
		donation.Set("payment_status", models.PaymentFailed)
		if err := s.app.SaveWithContext(ctx, donation); err != nil {
			return nil, fmt.Errorf("verify: mark failed: %w", err)
		}
		monitoring.TrackPaymentOperation("verify", "donation", "failed")
		return donation, status.ErrFailedPayment
	}

	return s.confirmDonation(ctx, donation)
}

// ConfirmFromWebhook settles a donation from a signed gateway webhook.
// Idempotent on repeated delivery.
func (s *DonationService) ConfirmFromWebhook(ctx context.Context, reference string, success bool) error {
	donation, err := s.app.FindFirstRecordByFilter(
		"donations",
		"payment_reference = {:ref}",
		dbx.Params{"ref": reference},
	)
	if err != nil {
		return status.ErrReferenceNotFound
	}

	if donation.GetString("payment_status") == models.PaymentSuccess {
		return nil
	}

	if !success {
		donation.Set("payment_status", models.PaymentFailed)
		monitoring.TrackPaymentOperation("webhook", "donation", "failed")
		return s.app.SaveWithContext(ctx, donation)
	}

	_, err = s.confirmDonation(ctx, donation)
	return err
}

// UpdateStatus sets a donation's payment_status directly. Admin only;
// the handler enforces the role gate.
func (s *DonationService) UpdateStatus(ctx context.Context, donationID, paymentStatus string) (*core.Record, error) {
	donation, err := s.app.FindRecordById("donations", donationID)
	if err != nil {
		return nil, fmt.Errorf("donation %s: %w", donationID, err)
	}

	donation.Set("payment_status", paymentStatus)
	if err := s.app.SaveWithContext(ctx, donation); err != nil {
		return nil, fmt.Errorf("donation %s: update status: %w", donationID, err)
	}

	return donation, nil
}

func (s *DonationService) confirmDonation(ctx context.Context, donation *core.Record) (*core.Record, error) {
	donation.Set("payment_status", models.PaymentSuccess)

	if err := s.app.SaveWithContext(ctx, donation); err != nil {
		return nil, fmt.Errorf("verify: confirm donation: %w", err)
	}

	amount := donation.GetFloat("amount")
	email := donation.GetString("donor_email")
	reference := donation.GetString("payment_reference")

	monitoring.TrackPaymentOperation("verify", "donation", "success")
	monitoring.TrackDonation(amount)

	s.notify.PaymentSettled("donation", reference, email, "success", amount)

	if err := s.mailer.Send(ctx, &mailer.Message{
		To:      []string{email},
		Subject: "Thank you for your donation",
		Text: fmt.Sprintf("Hi %s, we received your donation of %.2f. Reference: %s.",
			donation.GetString("donor_name"), amount, reference),
	}); err != nil {
		slog.Error("verify: donation receipt email failed", "reference", reference, "error", err)
	}

	return donation, nil
}
