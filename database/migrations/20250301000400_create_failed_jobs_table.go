package migrations

import (
	"github.com/shashiranjanraj/bodega/pkg/migration"
	"github.com/shashiranjanraj/bodega/pkg/queue"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20250301000400_create_failed_jobs_table", &CreateFailedJobsTable{})
}

type CreateFailedJobsTable struct{}

func (m *CreateFailedJobsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&queue.FailedJobRecord{})
}

func (m *CreateFailedJobsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&queue.FailedJobRecord{})
}
