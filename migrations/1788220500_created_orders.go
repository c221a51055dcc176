package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("orders")

		collection.Fields.Add(
			&core.TextField{Name: "user_id"},
			&core.TextField{Name: "customer_name", Required: true},
			&core.EmailField{Name: "customer_email", Required: true},
			&core.TextField{Name: "customer_phone"},
			&core.TextField{Name: "shipping_address"},
			&core.JSONField{Name: "items", MaxSize: 1 << 20},
			&core.NumberField{Name: "subtotal", Min: types.Pointer(0.0)},
			&core.NumberField{Name: "shipping", Min: types.Pointer(0.0)},
			&core.NumberField{Name: "total", Min: types.Pointer(0.0)},
			&core.TextField{Name: "payment_reference", Required: true},
			&core.SelectField{
				Name:      "status",
				Values:    []string{"pending", "confirmed", "shipped", "delivered", "cancelled"},
				MaxSelect: 1,
			},
			&core.SelectField{
				Name:      "payment_status",
				Values:    []string{"pending", "success", "failed"},
				MaxSelect: 1,
			},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("ux_orders_reference", true, "payment_reference", "")
		collection.AddIndex("idx_orders_user", false, "user_id", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("orders")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
