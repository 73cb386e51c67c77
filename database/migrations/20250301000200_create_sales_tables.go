package migrations

import (
	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20250301000200_create_sales_tables", &CreateSalesTables{})
}

// CreateSalesTables creates customers, orders, order items and payments.
type CreateSalesTables struct{}

func (m *CreateSalesTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Customer{}, &models.Order{}, &models.OrderItem{}, &models.Payment{})
}

func (m *CreateSalesTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Payment{}, &models.OrderItem{}, &models.Order{}, &models.Customer{})
}
