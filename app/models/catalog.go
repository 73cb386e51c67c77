package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Brand struct {
	Base
	Name     string `gorm:"size:100;not null;uniqueIndex:uniq_brand_name" json:"name"`
	IsActive bool   `gorm:"not null" json:"is_active"`

	Products []Product `gorm:"constraint:OnDelete:RESTRICT" json:"products,omitempty"`
}

func (Brand) TableName() string { return "inventory_brand" }

type Category struct {
	Base
	Name     string `gorm:"size:100;not null;uniqueIndex:uniq_category_name" json:"name"`
	IsActive bool   `gorm:"not null" json:"is_active"`

	Products []Product `gorm:"constraint:OnDelete:RESTRICT" json:"products,omitempty"`
}

func (Category) TableName() string { return "inventory_category" }

type Product struct {
	Base
	Name       string          `gorm:"size:200;not null" json:"name"`
	SKU        string          `gorm:"column:sku;size:50;not null;uniqueIndex:uniq_product_sku" json:"sku"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null;check:price_gte_min,price >= 0.01" json:"price"`
	IsActive   bool            `gorm:"not null" json:"is_active"`
	BrandID    uuid.UUID       `gorm:"type:char(36);not null;index:idx_product_brand_category,priority:1" json:"brand_id"`
	CategoryID uuid.UUID       `gorm:"type:char(36);not null;index:idx_product_brand_category,priority:2" json:"category_id"`

	Brand      *Brand      `json:"brand,omitempty"`
	Category   *Category   `json:"category,omitempty"`
	Stocks     []Stock     `gorm:"constraint:OnDelete:CASCADE" json:"stocks,omitempty"`
	OrderItems []OrderItem `gorm:"constraint:OnDelete:RESTRICT" json:"order_items,omitempty"`
}

func (Product) TableName() string { return "inventory_product" }

// TotalStock sums qty over the loaded Stocks.
func (p Product) TotalStock() int {
	total := 0
	for _, s := range p.Stocks {
		total += s.Qty
	}
	return total
}
