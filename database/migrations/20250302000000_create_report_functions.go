package migrations

import (
	"github.com/shashiranjanraj/bodega/app/reports"
	"github.com/shashiranjanraj/bodega/pkg/database"
	"github.com/shashiranjanraj/bodega/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20250302000000_create_report_functions", &CreateReportFunctions{})
}

// CreateReportFunctions installs the plpgsql report functions. Other
// dialects run the same queries inline, so there is nothing to install.
type CreateReportFunctions struct{}

func (m *CreateReportFunctions) Up(db *gorm.DB) error {
	if database.Dialect(db) != "postgres" {
		return nil
	}
	return reports.InstallFunctions(db)
}

func (m *CreateReportFunctions) Down(db *gorm.DB) error {
	if database.Dialect(db) != "postgres" {
		return nil
	}
	return reports.DropFunctions(db)
}
