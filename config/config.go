package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Paystack configuration
	PaystackBaseURL   string
	PaystackSecretKey string
	PaystackPublicKey string
	WebhookSecret     string

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string
	PubNubUUID         string

	// Email configuration
	EmailAPIURL  string
	EmailAPIKey  string
	EmailFrom    string
	ContactInbox string

	// Shop configuration
	ShippingFlatRate      float64
	FreeShippingThreshold float64

	// Webhook replay protection
	WebhookDedupTTL time.Duration

	// Analytics cache
	AnalyticsCacheTTL time.Duration

	// Rate limiting
	PurchaseRateLimit  int
	PurchaseRateWindow time.Duration

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	cfg := &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Paystack
		PaystackBaseURL:   getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		PaystackSecretKey: getEnv("PAYSTACK_SECRET_KEY", ""),
		PaystackPublicKey: getEnv("PAYSTACK_PUBLIC_KEY", ""),
		WebhookSecret:     getEnv("PAYSTACK_WEBHOOK_SECRET", ""),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),
		PubNubUUID:         getEnv("PUBNUB_UUID", "nonprofit-server"),

		// Email
		EmailAPIURL:  getEnv("EMAIL_API_URL", "https://api.resend.com"),
		EmailAPIKey:  getEnv("EMAIL_API_KEY", ""),
		EmailFrom:    getEnv("EMAIL_FROM", "no-reply@example.org"),
		ContactInbox: getEnv("CONTACT_INBOX", "info@example.org"),

		// Shop
		ShippingFlatRate:      getEnvAsFloat("SHIPPING_FLAT_RATE", 1500),
		FreeShippingThreshold: getEnvAsFloat("FREE_SHIPPING_THRESHOLD", 50000),

		// Webhook
		WebhookDedupTTL: getEnvAsDuration("WEBHOOK_DEDUP_TTL", "72h"),

		// Analytics
		AnalyticsCacheTTL: getEnvAsDuration("ANALYTICS_CACHE_TTL", "60s"),

		// Rate limiting
		PurchaseRateLimit:  getEnvAsInt("PURCHASE_RATE_LIMIT", 30),
		PurchaseRateWindow: getEnvAsDuration("PURCHASE_RATE_WINDOW", "1m"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}

	// Paystack signs webhooks with the account secret key unless a
	// dedicated secret is configured.
	if cfg.WebhookSecret == "" {
		cfg.WebhookSecret = cfg.PaystackSecretKey
	}

	return cfg
}

// IsDevelopment reports whether development-only behavior is enabled
// (simulated payments, verification fallback).
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
