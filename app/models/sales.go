package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	OrderPending   = "PENDING"
	OrderConfirmed = "CONFIRMED"
	OrderCanceled  = "CANCELED"
)

// Payment methods and statuses.
const (
	MethodCard     = "CARD"
	MethodTransfer = "TRANSFER"
	MethodCOD      = "COD"

	PaymentPending   = "PENDING"
	PaymentConfirmed = "CONFIRMED"
	PaymentFailed    = "FAILED"
)

type Customer struct {
	Base
	FullName string `gorm:"size:200;not null" json:"full_name"`
	Email    string `gorm:"size:254;not null;uniqueIndex:uniq_customer_email" json:"email"`

	Orders []Order `gorm:"constraint:OnDelete:RESTRICT" json:"orders,omitempty"`
}

func (Customer) TableName() string { return "inventory_customer" }

type Order struct {
	Base
	Status     string    `gorm:"size:20;not null;default:PENDING;index:idx_order_status;index:idx_order_customer_status,priority:2" json:"status"`
	CustomerID uuid.UUID `gorm:"type:char(36);not null;index:idx_order_customer_status,priority:1" json:"customer_id"`

	Customer *Customer  `json:"customer,omitempty"`
	Items    []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Payment  *Payment   `gorm:"constraint:OnDelete:CASCADE" json:"payment,omitempty"`
}

func (Order) TableName() string { return "inventory_order" }

// TotalAmount sums the loaded items.
func (o Order) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.TotalPrice())
	}
	return total
}

// TotalItems sums item quantities.
func (o Order) TotalItems() int {
	n := 0
	for _, it := range o.Items {
		n += it.Qty
	}
	return n
}

type OrderItem struct {
	Base
	Qty       int             `gorm:"not null;check:qty_positive,qty >= 1" json:"qty"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null;check:unit_price_gte_min,unit_price >= 0.01" json:"unit_price"`
	OrderID   uuid.UUID       `gorm:"type:char(36);not null;uniqueIndex:unique_order_product,priority:1" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:char(36);not null;uniqueIndex:unique_order_product,priority:2" json:"product_id"`

	Order   *Order   `json:"order,omitempty"`
	Product *Product `json:"product,omitempty"`
}

func (OrderItem) TableName() string { return "inventory_orderitem" }

// TotalPrice is qty × unit price.
func (i OrderItem) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Qty)))
}

type Payment struct {
	Base
	Method  string          `gorm:"size:20;not null;index:idx_payment_status_method,priority:2" json:"method"`
	Amount  decimal.Decimal `gorm:"type:decimal(10,2);not null;check:amount_gte_min,amount >= 0.01" json:"amount"`
	Status  string          `gorm:"size:20;not null;default:PENDING;index:idx_payment_status_method,priority:1" json:"status"`
	OrderID uuid.UUID       `gorm:"type:char(36);not null;uniqueIndex:uniq_payment_order" json:"order_id"`

	Order *Order `json:"order,omitempty"`
}

func (Payment) TableName() string { return "inventory_payment" }
