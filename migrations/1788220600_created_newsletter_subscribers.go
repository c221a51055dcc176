package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("newsletter_subscribers")

		collection.Fields.Add(
			&core.EmailField{Name: "email", Required: true},
			&core.BoolField{Name: "subscribed"},
			&core.TextField{Name: "unsubscribe_token", Required: true},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("ux_subscribers_email", true, "email", "")
		collection.AddIndex("ux_subscribers_token", true, "unsubscribe_token", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("newsletter_subscribers")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
