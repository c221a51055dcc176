package handlers

import (
	"net/http"
	"strings"

	"nonprofit-platform/internal/status"
	"nonprofit-platform/utils"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type NewsletterHandler struct {
	app core.App
}

func NewNewsletterHandler(app core.App) *NewsletterHandler {
	return &NewsletterHandler{app: app}
}

// Subscribe - Add an email to the newsletter list. Duplicate emails
// are rejected without writing a second row.
func (h *NewsletterHandler) Subscribe(e *core.RequestEvent) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return apis.NewBadRequestError("A valid email is required", nil)
	}

	if existing, _ := h.app.FindFirstRecordByData("newsletter_subscribers", "email", email); existing != nil {
		if existing.GetBool("subscribed") {
			return apis.NewBadRequestError("Email already subscribed", status.ErrDuplicateSubscriber)
		}
		// Re-activate a previously unsubscribed address in place.
		existing.Set("subscribed", true)
		if err := h.app.SaveWithContext(e.Request.Context(), existing); err != nil {
			return apis.NewBadRequestError("Failed to subscribe", err)
		}
		return e.JSON(http.StatusOK, map[string]string{"message": "Subscribed"})
	}

	token, err := utils.GenerateToken(16)
	if err != nil {
		return apis.NewBadRequestError("Failed to subscribe", err)
	}

	collection, err := h.app.FindCollectionByNameOrId("newsletter_subscribers")
	if err != nil {
		return apis.NewBadRequestError("Failed to subscribe", err)
	}

	subscriber := core.NewRecord(collection)
	subscriber.Set("email", email)
	subscriber.Set("unsubscribe_token", token)
	subscriber.Set("subscribed", true)

	// The unique index on email backstops the lookup above under
	// concurrent subscribes.
	if err := h.app.SaveWithContext(e.Request.Context(), subscriber); err != nil {
		return apis.NewBadRequestError("Email already subscribed", err)
	}

	return e.JSON(http.StatusCreated, map[string]string{"message": "Subscribed"})
}

// Unsubscribe - Deactivate a subscription by its token
func (h *NewsletterHandler) Unsubscribe(e *core.RequestEvent) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Token == "" {
		return apis.NewBadRequestError("Token is required", nil)
	}

	subscriber, err := h.app.FindFirstRecordByData("newsletter_subscribers", "unsubscribe_token", req.Token)
	if err != nil {
		return apis.NewNotFoundError("Subscription not found", err)
	}

	subscriber.Set("subscribed", false)
	if err := h.app.SaveWithContext(e.Request.Context(), subscriber); err != nil {
		return apis.NewBadRequestError("Failed to unsubscribe", err)
	}

	return e.JSON(http.StatusOK, map[string]string{"message": "Unsubscribed"})
}

// ListSubscribers - Admin: active subscriber list
func (h *NewsletterHandler) ListSubscribers(e *core.RequestEvent) error {
	subscribers, err := h.app.FindRecordsByFilter(
		"newsletter_subscribers",
		"subscribed = true",
		"-created",
		500,
		0,
	)
	if err != nil {
		return apis.NewBadRequestError("Failed to list subscribers", err)
	}
	return e.JSON(http.StatusOK, subscribers)
}
