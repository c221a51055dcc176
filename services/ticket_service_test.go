package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"nonprofit-platform/config"
	"nonprofit-platform/internal/mailer"
	"nonprofit-platform/internal/payment/paystack"
	"nonprofit-platform/internal/status"
	"nonprofit-platform/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tests"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	verifyCalls int
	tx          *paystack.Transaction
	verifyErr   error
}

func (g *stubGateway) Initialize(ctx context.Context, req *paystack.ChargeRequest) (*paystack.Authorization, error) {
	return &paystack.Authorization{
		AuthorizationURL: "https://checkout.example.com/" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (g *stubGateway) Verify(ctx context.Context, reference string) (*paystack.Transaction, error) {
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.tx, nil
}

func newTicketTestApp(t *testing.T) *tests.TestApp {
	app, err := tests.NewTestApp()
	require.NoError(t, err)
	t.Cleanup(app.Cleanup)

	events := core.NewBaseCollection("events")
	events.Fields.Add(
		&core.TextField{Name: "title", Required: true},
		&core.NumberField{Name: "ticket_price", Min: types.Pointer(0.0)},
		&core.NumberField{Name: "max_tickets", OnlyInt: true, Min: types.Pointer(0.0)},
		&core.NumberField{Name: "available_tickets", OnlyInt: true, Min: types.Pointer(0.0)},
		&core.SelectField{Name: "status", Values: models.EventStatuses, MaxSelect: 1},
	)
	require.NoError(t, app.Save(events))

	purchases := core.NewBaseCollection("ticket_purchases")
	purchases.Fields.Add(
		&core.TextField{Name: "event_id"},
		&core.TextField{Name: "customer_name"},
		&core.TextField{Name: "customer_email"},
		&core.TextField{Name: "customer_phone"},
		&core.NumberField{Name: "quantity", OnlyInt: true, Min: types.Pointer(1.0)},
		&core.NumberField{Name: "total_amount"},
		&core.TextField{Name: "payment_reference", Required: true},
		&core.SelectField{Name: "status", Values: []string{"pending", "confirmed", "cancelled"}, MaxSelect: 1},
		&core.SelectField{Name: "payment_status", Values: []string{"pending", "success", "failed"}, MaxSelect: 1},
		&core.DateField{Name: "verified_at"},
	)
	purchases.AddIndex("ux_ticket_purchases_reference", true, "payment_reference", "")
	require.NoError(t, app.Save(purchases))

	return app
}

func newTicketService(app core.App, gateway Gateway) *TicketService {
	cfg := &config.Config{Environment: "production"}
	return NewTicketService(app, gateway, NewNotifyService(nil), mailer.New(&mailer.Config{}), cfg)
}

func seedEvent(t *testing.T, app core.App, available int, price float64) *core.Record {
	collection, err := app.FindCollectionByNameOrId("events")
	require.NoError(t, err)

	event := core.NewRecord(collection)
	event.Set("title", "Annual Gala")
	event.Set("ticket_price", price)
	event.Set("max_tickets", available)
	event.Set("available_tickets", available)
	event.Set("status", "published")
	require.NoError(t, app.Save(event))

	return event
}

func TestTicketService_Purchase_ReservesAndRecordsPending(t *testing.T) {
	app := newTicketTestApp(t)
	service := newTicketService(app, &stubGateway{})
	event := seedEvent(t, app, 10, 2500)

	purchase, err := service.Purchase(context.Background(), event.Id, &PurchaseRequest{
		Quantity:      3,
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, models.PurchasePending, purchase.GetString("status"))
	assert.Equal(t, models.PaymentPending, purchase.GetString("payment_status"))
	assert.Equal(t, 7500.0, purchase.GetFloat("total_amount"))
	assert.Regexp(t, "^tkt_", purchase.GetString("payment_reference"))

	reloaded, err := app.FindRecordById("events", event.Id)
	require.NoError(t, err)
	assert.Equal(t, 7, reloaded.GetInt("available_tickets"))

	saved, err := app.FindFirstRecordByFilter(
		"ticket_purchases",
		"payment_reference = {:ref}",
		dbx.Params{"ref": purchase.GetString("payment_reference")},
	)
	require.NoError(t, err)
	assert.Equal(t, event.Id, saved.GetString("event_id"))
	assert.Equal(t, 3, saved.GetInt("quantity"))
}

func TestTicketService_Purchase_LastTicketSingleWinner(t *testing.T) {
	app := newTicketTestApp(t)
	service := newTicketService(app, &stubGateway{})
	event := seedEvent(t, app, 1, 5000)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.Purchase(context.Background(), event.Id, &PurchaseRequest{
				Quantity:      1,
				CustomerName:  "Buyer",
				CustomerEmail: "buyer@example.com",
			})
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, status.ErrInsufficientTickets):
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)

	reloaded, err := app.FindRecordById("events", event.Id)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.GetInt("available_tickets"))

	rows, err := app.FindRecordsByFilter(
		"ticket_purchases",
		"event_id = {:id}",
		"",
		10,
		0,
		dbx.Params{"id": event.Id},
	)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestTicketService_Purchase_RejectsUnpublishedEvent(t *testing.T) {
	app := newTicketTestApp(t)
	service := newTicketService(app, &stubGateway{})
	event := seedEvent(t, app, 10, 2500)
	event.Set("status", "draft")
	require.NoError(t, app.Save(event))

	_, err := service.Purchase(context.Background(), event.Id, &PurchaseRequest{
		Quantity:      1,
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
	})
	require.Error(t, err)

	reloaded, err := app.FindRecordById("events", event.Id)
	require.NoError(t, err)
	assert.Equal(t, 10, reloaded.GetInt("available_tickets"))
}

func TestTicketService_Verify_SecondCallSkipsGateway(t *testing.T) {
	app := newTicketTestApp(t)
	gateway := &stubGateway{}
	service := newTicketService(app, gateway)
	event := seedEvent(t, app, 5, 2000)

	purchase, err := service.Purchase(context.Background(), event.Id, &PurchaseRequest{
		Quantity:      2,
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
	})
	require.NoError(t, err)
	reference := purchase.GetString("payment_reference")

	gateway.tx = &paystack.Transaction{
		Reference: reference,
		Status:    "success",
		Amount:    decimal.NewFromInt(4000),
	}

	verified, err := service.Verify(context.Background(), reference)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseConfirmed, verified.GetString("status"))
	assert.Equal(t, models.PaymentSuccess, verified.GetString("payment_status"))
	assert.Equal(t, 1, gateway.verifyCalls)

	// Re-verifying a settled reference must not hit the gateway or
	// touch the ticket pool again.
	again, err := service.Verify(context.Background(), reference)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseConfirmed, again.GetString("status"))
	assert.Equal(t, 1, gateway.verifyCalls)

	reloaded, err := app.FindRecordById("events", event.Id)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.GetInt("available_tickets"))
}

func TestTicketService_Verify_UnknownReference(t *testing.T) {
	app := newTicketTestApp(t)
	service := newTicketService(app, &stubGateway{})

	_, err := service.Verify(context.Background(), "tkt_missing")
	assert.ErrorIs(t, err, status.ErrReferenceNotFound)
}
