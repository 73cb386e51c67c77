package models

import (
	"time"

	"github.com/google/uuid"
)

type Warehouse struct {
	Base
	Name string `gorm:"size:100;not null" json:"name"`
	City string `gorm:"size:100;not null" json:"city"`

	Stocks []Stock `gorm:"constraint:OnDelete:CASCADE" json:"stocks,omitempty"`
}

func (Warehouse) TableName() string { return "inventory_warehouse" }

// Stock is the quantity of one product held in one warehouse. Reserved
// units are committed to confirmed orders and never exceed Qty.
type Stock struct {
	Base
	Qty         int       `gorm:"not null;default:0;check:qty_non_negative,qty >= 0" json:"qty"`
	Reserved    int       `gorm:"not null;default:0;check:reserved_lte_qty,reserved >= 0 AND reserved <= qty" json:"reserved"`
	UpdatedAt   time.Time `gorm:"not null;index" json:"updated_at"`
	ProductID   uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:unique_product_warehouse_stock,priority:1" json:"product_id"`
	WarehouseID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:unique_product_warehouse_stock,priority:2" json:"warehouse_id"`

	Product   *Product   `json:"product,omitempty"`
	Warehouse *Warehouse `json:"warehouse,omitempty"`
}

func (Stock) TableName() string { return "inventory_stock" }

// AvailableQty is the quantity not yet reserved.
func (s Stock) AvailableQty() int { return s.Qty - s.Reserved }
