package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"nonprofit-platform/internal/status"

	"github.com/shopspring/decimal"
)

type ClientConfig struct {
	BaseURL   string `json:"baseUrl" mapstructure:"base_url"`
	SecretKey string `json:"secretKey" mapstructure:"secret_key"`
}

type Client struct {
	baseURL   string
	secretKey string

	hc *http.Client
}

func newClient(cfg *ClientConfig) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
		hc: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// payload mirrors the gateway's transaction object on the wire.
type payload struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"` // kobo
	Currency  string `json:"currency"`
	Channel   string `json:"channel"`
	PaidAt    string `json:"paid_at"`
	Customer  struct {
		Email string `json:"email"`
	} `json:"customer"`
}

func (p *payload) ToDomain() (*Transaction, error) {
	var paidAt time.Time
	if p.PaidAt != "" {
		ts, err := time.Parse(time.RFC3339, p.PaidAt)
		if err != nil {
			return nil, err
		}
		paidAt = ts
	}

	return &Transaction{
		ID:            p.ID,
		Reference:     p.Reference,
		Status:        p.Status,
		Amount:        decimal.NewFromInt(p.Amount).Div(decimal.NewFromInt(100)),
		Currency:      p.Currency,
		Channel:       p.Channel,
		CustomerEmail: p.Customer.Email,
		PaidAt:        paidAt,
	}, nil
}

// initializeTransaction creates a transaction on the gateway backend.
func (c *Client) initializeTransaction(ctx context.Context, f *ChargeRequest) (*Authorization, error) {
	reqBody := map[string]any{
		"email":     f.Email,
		"amount":    toKobo(f.Amount),
		"reference": f.Reference,
	}
	if f.Currency != "" {
		reqBody["currency"] = f.Currency
	}
	if f.Callback != "" {
		reqBody["callback_url"] = f.Callback
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("initializeTransaction: json.Marshal: %v", err)
	}

	_baseURL, _ := url.Parse(c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s%s", _baseURL.String(), "/transaction/initialize"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("initializeTransaction: http.NewReq: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.secretKey))

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("initializeTransaction: http.Do: %w", status.ErrGatewayUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("initializeTransaction: http.StatusCode %d: %w", resp.StatusCode, status.ErrGatewayUnavailable)
	}

	var reply struct {
		Status  bool          `json:"status"`
		Message string        `json:"message"`
		Data    Authorization `json:"data"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("initializeTransaction: json.Decode: %v", err)
	}
	if !reply.Status {
		return nil, fmt.Errorf("initializeTransaction: reply.Message: %v", reply.Message)
	}

	return &reply.Data, nil
}

// verifyTransaction checks transaction status on the gateway backend.
func (c *Client) verifyTransaction(ctx context.Context, reference string) (*Transaction, error) {
	_baseURL, _ := url.Parse(c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/transaction/verify/%s", _baseURL.String(), url.PathEscape(reference)), nil)
	if err != nil {
		return nil, fmt.Errorf("verifyTransaction: http.NewReq: %v", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.secretKey))

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verifyTransaction: http.Do: %w", status.ErrGatewayUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, status.ErrReferenceNotFound
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("verifyTransaction: http.StatusCode %d: %w", resp.StatusCode, status.ErrGatewayUnavailable)
	}

	var reply struct {
		Status  bool    `json:"status"`
		Message string  `json:"message"`
		Data    payload `json:"data"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("verifyTransaction: json.Decode: %v", err)
	}
	if !reply.Status {
		return nil, fmt.Errorf("verifyTransaction: reply.Message %q: %w", reply.Message, status.ErrReferenceNotFound)
	}

	return reply.Data.ToDomain()
}

// toKobo converts a naira amount to the gateway's integer subunit.
func toKobo(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}
