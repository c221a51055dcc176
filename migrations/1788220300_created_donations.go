package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("donations")

		collection.Fields.Add(
			&core.TextField{Name: "donor_name", Required: true},
			&core.EmailField{Name: "donor_email", Required: true},
			&core.NumberField{Name: "amount", Min: types.Pointer(0.0)},
			&core.TextField{Name: "message"},
			&core.BoolField{Name: "anonymous"},
			&core.TextField{Name: "payment_reference", Required: true},
			&core.SelectField{
				Name:      "payment_status",
				Values:    []string{"pending", "success", "failed"},
				MaxSelect: 1,
			},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("ux_donations_reference", true, "payment_reference", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("donations")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
