package handlers

import (
	"errors"
	"net/http"
	"strings"

	"nonprofit-platform/internal/status"
	"nonprofit-platform/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type DonationHandler struct {
	app             core.App
	donationService *services.DonationService
}

func NewDonationHandler(app core.App, donationService *services.DonationService) *DonationHandler {
	return &DonationHandler{
		app:             app,
		donationService: donationService,
	}
}

// CreateDonation - Record a pending donation and open a checkout
// session
func (h *DonationHandler) CreateDonation(e *core.RequestEvent) error {
	var req services.DonationRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.DonorName == "" || req.DonorEmail == "" {
		return apis.NewBadRequestError("Donor name and email are required", nil)
	}
	if !strings.Contains(req.DonorEmail, "@") {
		return apis.NewBadRequestError("Invalid email address", nil)
	}
	if req.Amount <= 0 {
		return apis.NewBadRequestError("Amount must be greater than zero", nil)
	}

	donation, auth, err := h.donationService.Create(e.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, status.ErrGatewayUnavailable) {
			return apis.NewApiError(http.StatusBadGateway, "Payment gateway unavailable", nil)
		}
		return apis.NewBadRequestError("Failed to create donation", err)
	}

	return e.JSON(http.StatusCreated, map[string]any{
		"donation_id":       donation.Id,
		"payment_reference": donation.GetString("payment_reference"),
		"authorization_url": auth.AuthorizationURL,
		"access_code":       auth.AccessCode,
	})
}

// VerifyDonation - Settle a pending donation by reference
func (h *DonationHandler) VerifyDonation(e *core.RequestEvent) error {
	var req struct {
		PaymentReference string `json:"payment_reference"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.PaymentReference == "" {
		return apis.NewBadRequestError("payment_reference is required", nil)
	}

	donation, err := h.donationService.Verify(e.Request.Context(), req.PaymentReference)
	if err != nil {
		switch {
		case errors.Is(err, status.ErrReferenceNotFound):
			return apis.NewNotFoundError("Donation not found", nil)
		case errors.Is(err, status.ErrFailedPayment):
			return apis.NewBadRequestError("Payment was not successful", nil)
		case errors.Is(err, status.ErrGatewayUnavailable):
			return apis.NewApiError(http.StatusBadGateway, "Payment gateway unavailable", nil)
		default:
			return apis.NewBadRequestError("Failed to verify donation", err)
		}
	}

	return e.JSON(http.StatusOK, map[string]any{
		"payment_reference": donation.GetString("payment_reference"),
		"payment_status":    donation.GetString("payment_status"),
		"amount":            donation.GetFloat("amount"),
	})
}

// ListDonations - Admin: recent donations
func (h *DonationHandler) ListDonations(e *core.RequestEvent) error {
	donations, err := h.app.FindRecordsByFilter(
		"donations",
		"id != ''",
		"-created",
		100,
		0,
	)
	if err != nil {
		return apis.NewBadRequestError("Failed to list donations", err)
	}
	return e.JSON(http.StatusOK, donations)
}

// UpdateDonationStatus - Admin: set a donation's payment_status
func (h *DonationHandler) UpdateDonationStatus(e *core.RequestEvent) error {
	donationID := e.Request.PathValue("donationId")

	var req struct {
		PaymentStatus string `json:"payment_status"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	switch req.PaymentStatus {
	case "pending", "success", "failed":
	default:
		return apis.NewBadRequestError("Invalid payment_status", nil)
	}

	donation, err := h.donationService.UpdateStatus(e.Request.Context(), donationID, req.PaymentStatus)
	if err != nil {
		return apis.NewNotFoundError("Donation not found", err)
	}

	return e.JSON(http.StatusOK, donation)
}
