package cmd

import (
	"context"
	"log"
	"log/slog"

	"nonprofit-platform/config"
	"nonprofit-platform/handlers"
	"nonprofit-platform/internal/mailer"
	"nonprofit-platform/internal/payment/paystack"
	_ "nonprofit-platform/migrations"
	"nonprofit-platform/monitoring"
	"nonprofit-platform/security"
	"nonprofit-platform/services"
	"nonprofit-platform/utils"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	pubnub "github.com/pubnub/go/v7"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg)
	defer redisClient.Close()

	// Initialize PubNub (optional; notifications no-op without keys)
	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" && cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.PubNubUUID))
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		pn = pubnub.NewPubNub(pnConfig)
	} else {
		slog.Warn("pubnub keys not configured, realtime notifications disabled")
	}

	// Initialize payment gateway
	gateway := paystack.New(&paystack.Config{
		BaseURL:   cfg.PaystackBaseURL,
		SecretKey: cfg.PaystackSecretKey,
	})

	// Initialize mailer
	mail := mailer.New(&mailer.Config{
		BaseURL: cfg.EmailAPIURL,
		APIKey:  cfg.EmailAPIKey,
		From:    cfg.EmailFrom,
	})
	if !mail.Enabled() {
		slog.Warn("email api key not configured, outbound mail disabled")
	}

	// Initialize services
	notifyService := services.NewNotifyService(pn)
	ticketService := services.NewTicketService(app, gateway, notifyService, mail, cfg)
	donationService := services.NewDonationService(app, gateway, notifyService, mail, cfg)
	orderService := services.NewOrderService(app, gateway, notifyService, cfg)
	analyticsService := services.NewAnalyticsService(app, redisClient, cfg)

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(app, ticketService)
	donationHandler := handlers.NewDonationHandler(app, donationService)
	productHandler := handlers.NewProductHandler(app)
	orderHandler := handlers.NewOrderHandler(app, orderService)
	newsletterHandler := handlers.NewNewsletterHandler(app)
	contactHandler := handlers.NewContactHandler(app, mail, cfg)
	webhookHandler := handlers.NewWebhookHandler(ticketService, donationService, orderService, redisClient, cfg)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	rateLimiter := security.NewRateLimiter(redisClient)
	checkoutLimit := rateLimiter.Limit(cfg.PurchaseRateLimit, cfg.PurchaseRateWindow)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: cfg.IsDevelopment(),
	})

	// Metrics endpoint on its own port
	if cfg.EnableMetrics {
		monitoring.StartMetricsServer(cfg.MetricsPort)
	}

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Event and ticket endpoints
		e.Router.GET("/api/v1/events", eventHandler.ListEvents)
		e.Router.GET("/api/v1/events/{eventId}", eventHandler.GetEvent)
		e.Router.POST("/api/v1/events/{eventId}/purchase", eventHandler.PurchaseTickets).
			BindFunc(checkoutLimit, rateLimiter.AntiBot())
		e.Router.POST("/api/v1/tickets/verify", eventHandler.VerifyTicketPurchase)
		e.Router.GET("/api/v1/me/tickets", eventHandler.MyTickets).
			BindFunc(handlers.RequireAuth)

		// Donation endpoints
		e.Router.POST("/api/v1/donations", donationHandler.CreateDonation).
			BindFunc(checkoutLimit)
		e.Router.POST("/api/v1/donations/verify", donationHandler.VerifyDonation)

		// Shop endpoints
		e.Router.GET("/api/v1/products", productHandler.ListProducts)
		e.Router.GET("/api/v1/products/{productId}", productHandler.GetProduct)
		e.Router.POST("/api/v1/orders", orderHandler.CreateOrder).
			BindFunc(checkoutLimit, rateLimiter.AntiBot())
		e.Router.POST("/api/v1/orders/verify", orderHandler.VerifyOrder)
		e.Router.GET("/api/v1/me/orders", orderHandler.MyOrders).
			BindFunc(handlers.RequireAuth)

		// Newsletter and contact endpoints
		e.Router.POST("/api/v1/newsletter/subscribe", newsletterHandler.Subscribe)
		e.Router.POST("/api/v1/newsletter/unsubscribe", newsletterHandler.Unsubscribe)
		e.Router.POST("/api/v1/contact", contactHandler.SubmitMessage).
			BindFunc(checkoutLimit)

		// Gateway webhook
		e.Router.POST("/api/v1/webhooks/paystack", webhookHandler.HandlePaystack)

		// Admin endpoints
		admin := e.Router.Group("/api/v1/admin")
		admin.BindFunc(handlers.RequireAdmin)
		admin.POST("/events", eventHandler.CreateEvent)
		admin.PATCH("/events/{eventId}", eventHandler.UpdateEvent)
		admin.DELETE("/events/{eventId}", eventHandler.DeleteEvent)
		admin.POST("/products", productHandler.CreateProduct)
		admin.PATCH("/products/{productId}", productHandler.UpdateProduct)
		admin.DELETE("/products/{productId}", productHandler.DeleteProduct)
		admin.GET("/donations", donationHandler.ListDonations)
		admin.PATCH("/donations/{donationId}/status", donationHandler.UpdateDonationStatus)
		admin.GET("/orders", orderHandler.ListOrders)
		admin.PATCH("/orders/{orderId}/status", orderHandler.UpdateOrderStatus)
		admin.GET("/subscribers", newsletterHandler.ListSubscribers)
		admin.GET("/messages", contactHandler.ListMessages)
		admin.PATCH("/messages/{messageId}/read", contactHandler.MarkMessageRead)
		admin.GET("/analytics", analyticsHandler.GetDashboard)

		// Test endpoint for payment simulation
		if cfg.IsDevelopment() {
			e.Router.POST("/api/v1/test/simulate-payment", webhookHandler.SimulatePayment)
		}

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		setupRecordHooks(app, analyticsService)

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

// setupRecordHooks drops the cached dashboard whenever a collection it
// aggregates changes, so admins never read stale totals for longer
// than one request.
func setupRecordHooks(app *pocketbase.PocketBase, analyticsService *services.AnalyticsService) {
	collections := []string{
		"donations",
		"ticket_purchases",
		"orders",
		"events",
		"newsletter_subscribers",
		"contact_messages",
	}

	app.OnRecordAfterCreateSuccess(collections...).BindFunc(func(e *core.RecordEvent) error {
		analyticsService.InvalidateCache(context.Background())
		return e.Next()
	})
	app.OnRecordAfterUpdateSuccess(collections...).BindFunc(func(e *core.RecordEvent) error {
		analyticsService.InvalidateCache(context.Background())
		return e.Next()
	})
	app.OnRecordAfterDeleteSuccess(collections...).BindFunc(func(e *core.RecordEvent) error {
		analyticsService.InvalidateCache(context.Background())
		return e.Next()
	})
}
