package migrations

import (
	"gorm.io/gorm"

	"github.com/reflaxess123/obedi/app/models"
	"github.com/reflaxess123/obedi/pkg/migration"
	"github.com/reflaxess123/obedi/pkg/queue"
)

func init() {
	migration.Register("20250101000000_create_users_table", &tableMigration{model: &models.User{}, table: "users"})
	migration.Register("20250101000001_create_lunches_table", &tableMigration{model: &models.Lunch{}, table: "lunches"})
	migration.Register("20250101000002_create_lunch_images_table", &tableMigration{model: &models.LunchImage{}, table: "lunch_images"})
	migration.Register("20250101000003_create_orders_table", &tableMigration{model: &models.Order{}, table: "orders"})
	migration.Register("20250101000004_create_order_items_table", &tableMigration{model: &models.OrderItem{}, table: "order_items"})
	migration.Register("20250101000005_create_order_history_table", &tableMigration{model: &models.OrderHistory{}, table: "order_history"})
	migration.Register("20250101000006_create_failed_jobs_table", &tableMigration{model: &queue.FailedJobRecord{}, table: "failed_jobs"})
}

// tableMigration creates one table from its model and drops it on rollback.
type tableMigration struct {
	model interface{}
	table string
}

func (m *tableMigration) Up(db *gorm.DB) error {
	return db.AutoMigrate(m.model)
}

func (m *tableMigration) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(m.table)
}
