package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("products")

		collection.Fields.Add(
			&core.TextField{Name: "name", Required: true},
			&core.EditorField{Name: "description"},
			&core.NumberField{Name: "price", Min: types.Pointer(0.0)},
			&core.NumberField{Name: "stock_quantity", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.BoolField{Name: "in_stock"},
			&core.TextField{Name: "category"},
			&core.URLField{Name: "image_url"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_products_category", false, "category", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("products")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
