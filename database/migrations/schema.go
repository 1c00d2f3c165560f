package migrations

import (
	"gorm.io/gorm"

	"github.com/nuber-eats/nuber/app/models"
	"github.com/nuber-eats/nuber/pkg/migration"
)

func init() {
	migration.Register("20240101000000_create_accounts_tables", tables(&models.User{}, &models.Verification{}, &models.UserGPS{}))
	migration.Register("20240101000001_create_catalog_tables", tables(&models.Category{}, &models.Restaurant{}, &models.Dish{}))
	migration.Register("20240101000002_create_orders_tables", tables(&models.Order{}, &models.OrderItem{}))
	migration.Register("20240101000003_create_payments_table", tables(&models.Payment{}))
}

// tables creates the given models in order and drops them in reverse.
func tables(models ...interface{}) migration.Migration {
	return migration.Func(
		func(db *gorm.DB) error { return db.AutoMigrate(models...) },
		func(db *gorm.DB) error {
			for i := len(models) - 1; i >= 0; i-- {
				if err := db.Migrator().DropTable(models[i]); err != nil {
					return err
				}
			}
			return nil
		},
	)
}
