package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("ticket_purchases")

		collection.Fields.Add(
			&core.TextField{Name: "event_id", Required: true},
			&core.TextField{Name: "customer_name", Required: true},
			&core.EmailField{Name: "customer_email", Required: true},
			&core.TextField{Name: "customer_phone"},
			&core.NumberField{Name: "quantity", OnlyInt: true, Min: types.Pointer(1.0)},
			&core.NumberField{Name: "total_amount", Min: types.Pointer(0.0)},
			&core.TextField{Name: "payment_reference", Required: true},
			&core.SelectField{
				Name:      "status",
				Values:    []string{"pending", "confirmed", "cancelled"},
				MaxSelect: 1,
			},
			&core.SelectField{
				Name:      "payment_status",
				Values:    []string{"pending", "success", "failed"},
				MaxSelect: 1,
			},
			&core.DateField{Name: "verified_at"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		// One row per gateway reference; verification stays idempotent
		// even if two requests race past the status check.
		collection.AddIndex("ux_ticket_purchases_reference", true, "payment_reference", "")
		collection.AddIndex("idx_ticket_purchases_event", false, "event_id", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("ticket_purchases")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
