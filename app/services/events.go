package services

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event names fired on the event bus after a transaction commits.
const (
	EventOrderConfirmed   = "order.confirmed"
	EventPaymentConfirmed = "payment.confirmed"
	EventStockReserved    = "stock.reserved"
	EventStockLow         = "stock.low"
)

type OrderConfirmed struct {
	OrderID    uuid.UUID   `json:"order_id"`
	ProductIDs []uuid.UUID `json:"product_ids"`
}

// StockReserved is one reservation made while confirming an order.
type StockReserved struct {
	OrderID     uuid.UUID `json:"order_id"`
	StockID     uuid.UUID `json:"stock_id"`
	ProductID   uuid.UUID `json:"product_id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Units       int       `json:"units"`
	Reserved    int       `json:"reserved"`
	Qty         int       `json:"qty"`
}

type PaymentConfirmed struct {
	PaymentID uuid.UUID       `json:"payment_id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
}

// LowStockAlert reports a product whose total quantity fell below the
// threshold.
type LowStockAlert struct {
	ProductID  uuid.UUID `json:"product_id"`
	Name       string    `json:"name"`
	SKU        string    `json:"sku"`
	TotalStock int       `json:"total_stock"`
	Threshold  int       `json:"threshold"`
}
