package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"nonprofit-platform/config"
	"nonprofit-platform/internal/payment/paystack"
	"nonprofit-platform/internal/status"
	"nonprofit-platform/monitoring"
	"nonprofit-platform/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

// settler is the slice of a payment service the webhook receiver needs.
type settler interface {
	ConfirmFromWebhook(ctx context.Context, reference string, success bool) error
}

type WebhookHandler struct {
	tickets   settler
	donations settler
	orders    settler
	redis     *redis.Client
	cfg       *config.Config
}

func NewWebhookHandler(
	ticketService *services.TicketService,
	donationService *services.DonationService,
	orderService *services.OrderService,
	redisClient *redis.Client,
	cfg *config.Config,
) *WebhookHandler {
	return &WebhookHandler{
		tickets:   ticketService,
		donations: donationService,
		orders:    orderService,
		redis:     redisClient,
		cfg:       cfg,
	}
}

// WebhookPayload is the signed event envelope the gateway POSTs.
type WebhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		ID        int64  `json:"id"`
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

// DedupKey identifies one gateway event for replay protection. The
// gateway's transaction id is stable across redeliveries; the
// reference is the fallback when it is absent.
func (p *WebhookPayload) DedupKey() string {
	if p.Data.ID != 0 {
		return fmt.Sprintf("webhook:event:%s:%d", p.Event, p.Data.ID)
	}
	return fmt.Sprintf("webhook:event:%s:%s", p.Event, p.Data.Reference)
}

// HandlePaystack - Receive a signed gateway event. Invalid signatures
// are rejected before anything is read or written; replayed events are
// acknowledged without re-processing.
func (h *WebhookHandler) HandlePaystack(e *core.RequestEvent) error {
	body, err := io.ReadAll(e.Request.Body)
	if err != nil {
		return apis.NewBadRequestError("Failed to read body", err)
	}

	signature := e.Request.Header.Get("x-paystack-signature")
	if signature == "" || !paystack.VerifySignature(body, h.cfg.WebhookSecret, signature) {
		monitoring.TrackWebhookEvent("unknown", "rejected")
		return apis.NewUnauthorizedError("Invalid signature", nil)
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		monitoring.TrackWebhookEvent("unknown", "malformed")
		return apis.NewBadRequestError("Invalid payload", err)
	}

	ctx := e.Request.Context()

	// Replay protection fails open: a Redis outage must not drop
	// settlements, and re-processing is idempotent anyway.
	fresh, err := h.redis.SetNX(ctx, payload.DedupKey(), 1, h.cfg.WebhookDedupTTL).Result()
	if err == nil && !fresh {
		monitoring.TrackWebhookEvent(payload.Event, "duplicate")
		return e.JSON(http.StatusOK, map[string]string{"message": "Already processed"})
	}

	var success bool
	switch payload.Event {
	case "charge.success":
		success = true
	case "charge.failed":
		success = false
	default:
		monitoring.TrackWebhookEvent(payload.Event, "ignored")
		return e.JSON(http.StatusOK, map[string]string{"message": "Event ignored"})
	}

	if err := h.dispatch(ctx, payload.Data.Reference, success); err != nil {
		if errors.Is(err, status.ErrReferenceNotFound) {
			// Acknowledge so the gateway stops redelivering an event
			// we have no row for.
			slog.Warn("webhook: no matching record for reference", "reference", payload.Data.Reference, "event", payload.Event)
			monitoring.TrackWebhookEvent(payload.Event, "unmatched")
			return e.JSON(http.StatusOK, map[string]string{"message": "No matching record"})
		}
		// Clear the dedup key before the 500 so the gateway's
		// redelivery is processed instead of being acknowledged as a
		// duplicate of a settlement that never happened.
		if delErr := h.redis.Del(ctx, payload.DedupKey()).Err(); delErr != nil {
			slog.Error("webhook: failed to clear dedup key after error", "key", payload.DedupKey(), "error", delErr)
		}
		monitoring.TrackWebhookEvent(payload.Event, "error")
		return apis.NewApiError(http.StatusInternalServerError, "Failed to process event", err)
	}

	monitoring.TrackWebhookEvent(payload.Event, "processed")
	return e.JSON(http.StatusOK, map[string]string{"message": "Processed"})
}

// SimulatePayment - Development only: settle a pending payment without
// the gateway. Registered exclusively when Environment is development.
func (h *WebhookHandler) SimulatePayment(e *core.RequestEvent) error {
	var req struct {
		Reference string `json:"reference"`
		Success   bool   `json:"success"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if req.Reference == "" {
		return apis.NewBadRequestError("Reference is required", nil)
	}

	if err := h.dispatch(e.Request.Context(), req.Reference, req.Success); err != nil {
		if errors.Is(err, status.ErrReferenceNotFound) {
			return apis.NewNotFoundError("No record for reference", err)
		}
		return apis.NewApiError(http.StatusInternalServerError, "Failed to settle payment", err)
	}

	return e.JSON(http.StatusOK, map[string]string{"message": "Payment simulated"})
}

// dispatch routes a settlement to the owning record by reference
// prefix, falling back to probing each collection for references
// issued by the client-side checkout.
func (h *WebhookHandler) dispatch(ctx context.Context, reference string, success bool) error {
	err := status.ErrReferenceNotFound
	switch paystack.ReferenceKind(reference) {
	case "don":
		err = h.donations.ConfirmFromWebhook(ctx, reference, success)
	case "tkt":
		err = h.tickets.ConfirmFromWebhook(ctx, reference, success)
	case "ord":
		err = h.orders.ConfirmFromWebhook(ctx, reference, success)
	}
	if !errors.Is(err, status.ErrReferenceNotFound) {
		return err
	}

	// Client-issued references can wear any prefix, so a miss in the
	// prefixed collection still probes the others.
	for _, s := range []settler{h.donations, h.tickets, h.orders} {
		err := s.ConfirmFromWebhook(ctx, reference, success)
		if err == nil {
			return nil
		}
		if !errors.Is(err, status.ErrReferenceNotFound) {
			return err
		}
	}

	return status.ErrReferenceNotFound
}
