package migrations

import (
	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20250301000100_create_warehouse_tables", &CreateWarehouseTables{})
}

type CreateWarehouseTables struct{}

func (m *CreateWarehouseTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Warehouse{}, &models.Stock{})
}

func (m *CreateWarehouseTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Stock{}, &models.Warehouse{})
}
