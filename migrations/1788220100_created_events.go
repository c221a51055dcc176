package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("events")

		collection.Fields.Add(
			&core.TextField{Name: "title", Required: true},
			&core.EditorField{Name: "description"},
			&core.DateField{Name: "start_at"},
			&core.DateField{Name: "end_at"},
			&core.TextField{Name: "location"},
			&core.TextField{Name: "venue"},
			&core.NumberField{Name: "ticket_price", Min: types.Pointer(0.0)},
			&core.NumberField{Name: "max_tickets", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.NumberField{Name: "available_tickets", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.SelectField{
				Name:      "status",
				Values:    []string{"draft", "published", "ongoing", "completed", "cancelled"},
				MaxSelect: 1,
			},
			&core.URLField{Name: "image_url"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_events_status", false, "status", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
