package handlers

import (
	"errors"
	"net/http"
	"slices"

	"nonprofit-platform/internal/status"
	"nonprofit-platform/models"
	"nonprofit-platform/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type EventHandler struct {
	app           core.App
	ticketService *services.TicketService
}

func NewEventHandler(app core.App, ticketService *services.TicketService) *EventHandler {
	return &EventHandler{
		app:           app,
		ticketService: ticketService,
	}
}

// ListEvents - Public listing, drafts and cancelled events excluded
func (h *EventHandler) ListEvents(e *core.RequestEvent) error {
	events, err := h.app.FindRecordsByFilter(
		"events",
		"status != 'draft' && status != 'cancelled'",
		"-start_at",
		100,
		0,
	)
	if err != nil {
		return apis.NewBadRequestError("Failed to list events", err)
	}
	return e.JSON(http.StatusOK, events)
}

// GetEvent - Public event detail
func (h *EventHandler) GetEvent(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")

	event, err := h.app.FindRecordById("events", eventID)
	if err != nil {
		return apis.NewNotFoundError("Event not found", err)
	}
	return e.JSON(http.StatusOK, event)
}

type eventRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	StartAt     string  `json:"start_at"`
	EndAt       string  `json:"end_at"`
	Location    string  `json:"location"`
	Venue       string  `json:"venue"`
	TicketPrice float64 `json:"ticket_price"`
	MaxTickets  int     `json:"max_tickets"`
	Status      string  `json:"status"`
	ImageURL    string  `json:"image_url"`
}

// CreateEvent - Admin: create an event; missing title is rejected
// before anything is written
func (h *EventHandler) CreateEvent(e *core.RequestEvent) error {
	var req eventRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Title == "" {
		return apis.NewBadRequestError("Title is required", nil)
	}
	if req.MaxTickets < 0 {
		return apis.NewBadRequestError("max_tickets cannot be negative", nil)
	}
	if req.Status != "" && !slices.Contains(models.EventStatuses, req.Status) {
		return apis.NewBadRequestError("Invalid status", nil)
	}

	collection, err := h.app.FindCollectionByNameOrId("events")
	if err != nil {
		return apis.NewBadRequestError("Failed to create event", err)
	}

	event := core.NewRecord(collection)
	event.Set("title", req.Title)
	event.Set("description", req.Description)
	event.Set("start_at", req.StartAt)
	event.Set("end_at", req.EndAt)
	event.Set("location", req.Location)
	event.Set("venue", req.Venue)
	event.Set("ticket_price", req.TicketPrice)
	event.Set("max_tickets", req.MaxTickets)
	event.Set("available_tickets", req.MaxTickets)
	event.Set("image_url", req.ImageURL)
	if req.Status != "" {
		event.Set("status", req.Status)
	} else {
		event.Set("status", "draft")
	}

	if err := h.app.SaveWithContext(e.Request.Context(), event); err != nil {
		return apis.NewBadRequestError("Failed to create event", err)
	}

	return e.JSON(http.StatusCreated, event)
}

// UpdateEvent - Admin: partial update of event fields
func (h *EventHandler) UpdateEvent(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")

	event, err := h.app.FindRecordById("events", eventID)
	if err != nil {
		return apis.NewNotFoundError("Event not found", err)
	}

	var fields map[string]any
	if err := e.BindBody(&fields); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	allowed := []string{
		"title", "description", "start_at", "end_at", "location", "venue",
		"ticket_price", "max_tickets", "available_tickets", "status", "image_url",
	}
	for _, name := range allowed {
		if value, ok := fields[name]; ok {
			event.Set(name, value)
		}
	}
	if event.GetString("title") == "" {
		return apis.NewBadRequestError("Title is required", nil)
	}

	if err := h.app.SaveWithContext(e.Request.Context(), event); err != nil {
		return apis.NewBadRequestError("Failed to update event", err)
	}

	return e.JSON(http.StatusOK, event)
}

// DeleteEvent - Admin: delete an event
func (h *EventHandler) DeleteEvent(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")

	event, err := h.app.FindRecordById("events", eventID)
	if err != nil {
		return apis.NewNotFoundError("Event not found", err)
	}

	if err := h.app.DeleteWithContext(e.Request.Context(), event); err != nil {
		return apis.NewBadRequestError("Failed to delete event", err)
	}

	return e.JSON(http.StatusOK, map[string]string{"message": "Event deleted"})
}

// PurchaseTickets - Reserve tickets and create a pending purchase
func (h *EventHandler) PurchaseTickets(e *core.RequestEvent) error {
	eventID := e.Request.PathValue("eventId")

	var req services.PurchaseRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Quantity < 1 {
		return apis.NewBadRequestError("Quantity must be at least 1", nil)
	}
	if req.CustomerName == "" || req.CustomerEmail == "" {
		return apis.NewBadRequestError("Customer name and email are required", nil)
	}

	purchase, err := h.ticketService.Purchase(e.Request.Context(), eventID, &req)
	if err != nil {
		if errors.Is(err, status.ErrInsufficientTickets) {
			return apis.NewBadRequestError("Not enough tickets available", nil)
		}
		return apis.NewBadRequestError("Failed to purchase tickets", err)
	}

	return e.JSON(http.StatusCreated, map[string]any{
		"purchase_id":       purchase.Id,
		"payment_reference": purchase.GetString("payment_reference"),
		"total_amount":      purchase.GetFloat("total_amount"),
		"status":            purchase.GetString("status"),
	})
}

// VerifyTicketPurchase - Settle a pending purchase by reference
func (h *EventHandler) VerifyTicketPurchase(e *core.RequestEvent) error {
	var req struct {
		PaymentReference string `json:"payment_reference"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.PaymentReference == "" {
		return apis.NewBadRequestError("payment_reference is required", nil)
	}

	purchase, err := h.ticketService.Verify(e.Request.Context(), req.PaymentReference)
	if err != nil {
		switch {
		case errors.Is(err, status.ErrReferenceNotFound):
			return apis.NewNotFoundError("Purchase not found", nil)
		case errors.Is(err, status.ErrFailedPayment):
			return apis.NewBadRequestError("Payment was not successful", nil)
		case errors.Is(err, status.ErrGatewayUnavailable):
			return apis.NewApiError(http.StatusBadGateway, "Payment gateway unavailable", nil)
		default:
			return apis.NewBadRequestError("Failed to verify payment", err)
		}
	}

	return e.JSON(http.StatusOK, map[string]any{
		"payment_reference": purchase.GetString("payment_reference"),
		"status":            purchase.GetString("status"),
		"payment_status":    purchase.GetString("payment_status"),
		"verified_at":       purchase.GetDateTime("verified_at"),
	})
}

// MyTickets - Authenticated user's purchase history by email
func (h *EventHandler) MyTickets(e *core.RequestEvent) error {
	purchases, err := h.app.FindRecordsByFilter(
		"ticket_purchases",
		"customer_email = {:email}",
		"-created",
		50,
		0,
		map[string]any{"email": e.Auth.GetString("email")},
	)
	if err != nil {
		return apis.NewBadRequestError("Failed to get purchases", err)
	}

	result := []map[string]any{}
	for _, purchase := range purchases {
		event, _ := h.app.FindRecordById("events", purchase.GetString("event_id"))
		title := ""
		if event != nil {
			title = event.GetString("title")
		}
		result = append(result, map[string]any{
			"id":                purchase.Id,
			"event_id":          purchase.GetString("event_id"),
			"event_title":       title,
			"quantity":          purchase.GetInt("quantity"),
			"total_amount":      purchase.GetFloat("total_amount"),
			"status":            purchase.GetString("status"),
			"payment_status":    purchase.GetString("payment_status"),
			"payment_reference": purchase.GetString("payment_reference"),
			"created":           purchase.GetDateTime("created"),
		})
	}

	return e.JSON(http.StatusOK, result)
}
