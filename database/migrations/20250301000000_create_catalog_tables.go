package migrations

import (
	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20250301000000_create_catalog_tables", &CreateCatalogTables{})
}

// CreateCatalogTables creates brands, categories and products.
type CreateCatalogTables struct{}

func (m *CreateCatalogTables) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Brand{}, &models.Category{}, &models.Product{})
}

func (m *CreateCatalogTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Product{}, &models.Category{}, &models.Brand{})
}
