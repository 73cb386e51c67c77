// Package models holds the persistent inventory entities.
//
// Table names follow inventory_<model> so the hand-written report SQL can
// address them directly. Money is decimal.Decimal stored as numeric(10,2).
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is embedded by every entity: a UUID primary key and a creation time.
type Base struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

// BeforeCreate assigns a random id unless the caller set one.
func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// All lists every entity in migration order: parents before children.
func All() []any {
	return []any{
		&Brand{}, &Category{}, &Product{},
		&Warehouse{}, &Stock{},
		&Customer{}, &Order{}, &OrderItem{}, &Payment{},
	}
}
