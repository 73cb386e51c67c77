package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row types carry both db (sqlx) and gorm column tags so the two sources
// scan into the same shape.

type ProductByBrandCustomer struct {
	ProductID     string          `db:"product_id" gorm:"column:product_id" json:"product_id"`
	ProductName   string          `db:"product_name" gorm:"column:product_name" json:"product_name"`
	ProductSKU    string          `db:"product_sku" gorm:"column:product_sku" json:"product_sku"`
	ProductPrice  decimal.Decimal `db:"product_price" gorm:"column:product_price" json:"product_price"`
	BrandName     string          `db:"brand_name" gorm:"column:brand_name" json:"brand_name"`
	CategoryName  string          `db:"category_name" gorm:"column:category_name" json:"category_name"`
	CustomerName  string          `db:"customer_name" gorm:"column:customer_name" json:"customer_name"`
	CustomerEmail string          `db:"customer_email" gorm:"column:customer_email" json:"customer_email"`
	OrderID       string          `db:"order_id" gorm:"column:order_id" json:"order_id"`
	OrderStatus   string          `db:"order_status" gorm:"column:order_status" json:"order_status"`
	OrderDate     time.Time       `db:"order_date" gorm:"column:order_date" json:"order_date"`
	QtyOrdered    int             `db:"qty_ordered" gorm:"column:qty_ordered" json:"qty_ordered"`
	UnitPrice     decimal.Decimal `db:"unit_price" gorm:"column:unit_price" json:"unit_price"`
}

type PaymentByProductQuantity struct {
	PaymentID          string          `db:"payment_id" gorm:"column:payment_id" json:"payment_id"`
	PaymentMethod      string          `db:"payment_method" gorm:"column:payment_method" json:"payment_method"`
	PaymentAmount      decimal.Decimal `db:"payment_amount" gorm:"column:payment_amount" json:"payment_amount"`
	PaymentStatus      string          `db:"payment_status" gorm:"column:payment_status" json:"payment_status"`
	PaymentDate        time.Time       `db:"payment_date" gorm:"column:payment_date" json:"payment_date"`
	OrderID            string          `db:"order_id" gorm:"column:order_id" json:"order_id"`
	CustomerName       string          `db:"customer_name" gorm:"column:customer_name" json:"customer_name"`
	CustomerEmail      string          `db:"customer_email" gorm:"column:customer_email" json:"customer_email"`
	ProductName        string          `db:"product_name" gorm:"column:product_name" json:"product_name"`
	ProductSKU         string          `db:"product_sku" gorm:"column:product_sku" json:"product_sku"`
	QtyOrdered         int             `db:"qty_ordered" gorm:"column:qty_ordered" json:"qty_ordered"`
	UnitPrice          decimal.Decimal `db:"unit_price" gorm:"column:unit_price" json:"unit_price"`
	TotalProductAmount decimal.Decimal `db:"total_product_amount" gorm:"column:total_product_amount" json:"total_product_amount"`
}

type StockAnalysis struct {
	WarehouseName string          `db:"warehouse_name" gorm:"column:warehouse_name" json:"warehouse_name"`
	WarehouseCity string          `db:"warehouse_city" gorm:"column:warehouse_city" json:"warehouse_city"`
	ProductName   string          `db:"product_name" gorm:"column:product_name" json:"product_name"`
	ProductSKU    string          `db:"product_sku" gorm:"column:product_sku" json:"product_sku"`
	BrandName     string          `db:"brand_name" gorm:"column:brand_name" json:"brand_name"`
	CategoryName  string          `db:"category_name" gorm:"column:category_name" json:"category_name"`
	Qty           int             `db:"qty" gorm:"column:qty" json:"qty"`
	Reserved      int             `db:"reserved" gorm:"column:reserved" json:"reserved"`
	Available     int             `db:"available" gorm:"column:available" json:"available"`
	ProductPrice  decimal.Decimal `db:"product_price" gorm:"column:product_price" json:"product_price"`
	StockValue    decimal.Decimal `db:"stock_value" gorm:"column:stock_value" json:"stock_value"`
}

type TopSellingProduct struct {
	ProductID         string          `db:"product_id" gorm:"column:product_id" json:"product_id"`
	ProductName       string          `db:"product_name" gorm:"column:product_name" json:"product_name"`
	ProductSKU        string          `db:"product_sku" gorm:"column:product_sku" json:"product_sku"`
	BrandName         string          `db:"brand_name" gorm:"column:brand_name" json:"brand_name"`
	CategoryName      string          `db:"category_name" gorm:"column:category_name" json:"category_name"`
	TotalQuantitySold int64           `db:"total_quantity_sold" gorm:"column:total_quantity_sold" json:"total_quantity_sold"`
	TotalOrders       int64           `db:"total_orders" gorm:"column:total_orders" json:"total_orders"`
	TotalRevenue      decimal.Decimal `db:"total_revenue" gorm:"column:total_revenue" json:"total_revenue"`
	AvgUnitPrice      decimal.Decimal `db:"avg_unit_price" gorm:"column:avg_unit_price" json:"avg_unit_price"`
}
