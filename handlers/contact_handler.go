package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"nonprofit-platform/config"
	"nonprofit-platform/internal/mailer"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type ContactHandler struct {
	app    core.App
	mailer *mailer.Mailer
	cfg    *config.Config
}

func NewContactHandler(app core.App, m *mailer.Mailer, cfg *config.Config) *ContactHandler {
	return &ContactHandler{
		app:    app,
		mailer: m,
		cfg:    cfg,
	}
}

// SubmitMessage - Store a contact message and forward it to the
// organization inbox. Email delivery is best effort.
func (h *ContactHandler) SubmitMessage(e *core.RequestEvent) error {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Name == "" || req.Email == "" || req.Message == "" {
		return apis.NewBadRequestError("Name, email and message are required", nil)
	}
	if !strings.Contains(req.Email, "@") {
		return apis.NewBadRequestError("Invalid email address", nil)
	}

	collection, err := h.app.FindCollectionByNameOrId("contact_messages")
	if err != nil {
		return apis.NewBadRequestError("Failed to submit message", err)
	}

	message := core.NewRecord(collection)
	message.Set("name", req.Name)
	message.Set("email", req.Email)
	message.Set("subject", req.Subject)
	message.Set("message", req.Message)
	message.Set("read", false)

	if err := h.app.SaveWithContext(e.Request.Context(), message); err != nil {
		return apis.NewBadRequestError("Failed to submit message", err)
	}

	if err := h.mailer.Send(e.Request.Context(), &mailer.Message{
		To:      []string{h.cfg.ContactInbox},
		Subject: fmt.Sprintf("Contact form: %s", req.Subject),
		Text:    fmt.Sprintf("From %s <%s>\n\n%s", req.Name, req.Email, req.Message),
	}); err != nil {
		slog.Error("contact: forwarding email failed", "message_id", message.Id, "error", err)
	}

	return e.JSON(http.StatusCreated, map[string]string{"message": "Message received"})
}

// ListMessages - Admin: inbox listing
func (h *ContactHandler) ListMessages(e *core.RequestEvent) error {
	messages, err := h.app.FindRecordsByFilter(
		"contact_messages",
		"id != ''",
		"-created",
		100,
		0,
	)
	if err != nil {
		return apis.NewBadRequestError("Failed to list messages", err)
	}
	return e.JSON(http.StatusOK, messages)
}

// MarkMessageRead - Admin: mark a contact message as handled
func (h *ContactHandler) MarkMessageRead(e *core.RequestEvent) error {
	messageID := e.Request.PathValue("messageId")

	message, err := h.app.FindRecordById("contact_messages", messageID)
	if err != nil {
		return apis.NewNotFoundError("Message not found", err)
	}

	message.Set("read", true)
	if err := h.app.SaveWithContext(e.Request.Context(), message); err != nil {
		return apis.NewBadRequestError("Failed to update message", err)
	}

	return e.JSON(http.StatusOK, message)
}
