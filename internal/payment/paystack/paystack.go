package paystack

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	BaseURL   string `json:"baseUrl" mapstructure:"base_url"`
	SecretKey string `json:"secretKey" mapstructure:"secret_key"`
}

// Paystack wraps the hosted gateway's transaction endpoints. Amounts
// cross the wire as integer kobo; callers work in decimal naira.
type Paystack struct {
	client *Client
}

// Transaction is the domain view of a gateway transaction.
type Transaction struct {
	ID            int64
	Reference     string
	Status        string // success, failed, abandoned
	Amount        decimal.Decimal
	Currency      string
	Channel       string
	CustomerEmail string
	PaidAt        time.Time
}

// Succeeded reports whether the gateway settled the transaction.
func (t *Transaction) Succeeded() bool {
	return t.Status == "success"
}

// ChargeRequest initializes a hosted checkout session.
type ChargeRequest struct {
	Email     string
	Amount    decimal.Decimal
	Reference string
	Currency  string
	Callback  string
}

// Authorization is the hosted checkout handle returned by initialize.
type Authorization struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

func New(cfg *Config) *Paystack {
	return &Paystack{
		client: newClient(&ClientConfig{
			BaseURL:   cfg.BaseURL,
			SecretKey: cfg.SecretKey,
		}),
	}
}

// Initialize creates a transaction on the gateway and returns the
// hosted checkout authorization.
func (p *Paystack) Initialize(ctx context.Context, req *ChargeRequest) (*Authorization, error) {
	return p.client.initializeTransaction(ctx, req)
}

// Verify fetches the settled state of a transaction by reference.
func (p *Paystack) Verify(ctx context.Context, reference string) (*Transaction, error) {
	return p.client.verifyTransaction(ctx, reference)
}
