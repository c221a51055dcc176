package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Config struct {
	BaseURL string `json:"baseUrl" mapstructure:"base_url"`
	APIKey  string `json:"apiKey" mapstructure:"api_key"`
	From    string `json:"from" mapstructure:"from"`
}

// Mailer is a thin client for the transactional email API. Delivery is
// best effort everywhere it is used; callers log failures and move on.
type Mailer struct {
	baseURL string
	apiKey  string
	from    string

	hc *http.Client
}

type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

func New(cfg *Config) *Mailer {
	return &Mailer{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		from:    cfg.From,
		hc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled reports whether an API key is configured. Without one, Send
// is a no-op so local development does not need the email provider.
func (m *Mailer) Enabled() bool {
	return m.apiKey != ""
}

func (m *Mailer) Send(ctx context.Context, msg *Message) error {
	if !m.Enabled() {
		return nil
	}

	body, err := json.Marshal(map[string]any{
		"from":    m.from,
		"to":      msg.To,
		"subject": msg.Subject,
		"html":    msg.HTML,
		"text":    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("mailer.Send: json.Marshal: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/emails", m.baseURL), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mailer.Send: http.NewReq: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", m.apiKey))

	resp, err := m.hc.Do(req)
	if err != nil {
		return fmt.Errorf("mailer.Send: http.Do: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var reply struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&reply)
		return fmt.Errorf("mailer.Send: http.StatusCode %d: %s", resp.StatusCode, reply.Message)
	}

	return nil
}
