package reports

import (
	"strings"
	"time"

	"github.com/shashiranjanraj/bodega/app/models"
	"gorm.io/gorm"
)

func contains(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

// ─────────────────────────────────────────────
// products by brand and customer
// ─────────────────────────────────────────────

func productsByBrandCustomerORM(db *gorm.DB, p Params) *gorm.DB {
	return db.Table("inventory_product AS p").
		Distinct(`p.id AS product_id, p.name AS product_name, p.sku AS product_sku, p.price AS product_price,
			b.name AS brand_name, c.name AS category_name,
			cu.full_name AS customer_name, cu.email AS customer_email,
			o.id AS order_id, o.status AS order_status, o.created_at AS order_date,
			oi.qty AS qty_ordered, oi.unit_price AS unit_price`).
		Joins("INNER JOIN inventory_brand b ON p.brand_id = b.id").
		Joins("INNER JOIN inventory_category c ON p.category_id = c.id").
		Joins("INNER JOIN inventory_orderitem oi ON p.id = oi.product_id").
		Joins("INNER JOIN inventory_order o ON oi.order_id = o.id").
		Joins("INNER JOIN inventory_customer cu ON o.customer_id = cu.id").
		Where("LOWER(b.name) LIKE ?", contains(p.Brand)).
		Where("cu.email = ?", p.Email).
		Where("p.is_active = ? AND b.is_active = ?", true, true).
		Order("p.name").
		Order("o.created_at DESC")
}

func productsByBrandCustomerSQL(p Params) (string, []any) {
	return `SELECT DISTINCT
    p.id AS product_id, p.name AS product_name, p.sku AS product_sku, p.price AS product_price,
    b.name AS brand_name, c.name AS category_name,
    cu.full_name AS customer_name, cu.email AS customer_email,
    o.id AS order_id, o.status AS order_status, o.created_at AS order_date,
    oi.qty AS qty_ordered, oi.unit_price AS unit_price
FROM inventory_product p
    INNER JOIN inventory_brand b ON p.brand_id = b.id
    INNER JOIN inventory_category c ON p.category_id = c.id
    INNER JOIN inventory_orderitem oi ON p.id = oi.product_id
    INNER JOIN inventory_order o ON oi.order_id = o.id
    INNER JOIN inventory_customer cu ON o.customer_id = cu.id
WHERE LOWER(b.name) LIKE ?
    AND cu.email = ?
    AND p.is_active = ?
    AND b.is_active = ?
ORDER BY p.name, o.created_at DESC`, []any{contains(p.Brand), p.Email, true, true}
}

// ─────────────────────────────────────────────
// payments by product quantity
// ─────────────────────────────────────────────

func paymentsByProductQuantityORM(db *gorm.DB, p Params) *gorm.DB {
	return db.Table("inventory_payment AS py").
		Select(`py.id AS payment_id, py.method AS payment_method, py.amount AS payment_amount,
			py.status AS payment_status, py.created_at AS payment_date,
			o.id AS order_id, c.full_name AS customer_name, c.email AS customer_email,
			p.name AS product_name, p.sku AS product_sku,
			oi.qty AS qty_ordered, oi.unit_price AS unit_price,
			(oi.qty * oi.unit_price) AS total_product_amount`).
		Joins("INNER JOIN inventory_order o ON py.order_id = o.id").
		Joins("INNER JOIN inventory_customer c ON o.customer_id = c.id").
		Joins("INNER JOIN inventory_orderitem oi ON o.id = oi.order_id").
		Joins("INNER JOIN inventory_product p ON oi.product_id = p.id").
		Where("p.sku = ?", p.SKU).
		Where("oi.qty >= ?", p.MinQuantity).
		Where("py.status = ?", models.PaymentConfirmed).
		Order("py.created_at DESC").
		Order("oi.qty DESC")
}

func paymentsByProductQuantitySQL(p Params) (string, []any) {
	return `SELECT
    py.id AS payment_id, py.method AS payment_method, py.amount AS payment_amount,
    py.status AS payment_status, py.created_at AS payment_date,
    o.id AS order_id, c.full_name AS customer_name, c.email AS customer_email,
    p.name AS product_name, p.sku AS product_sku,
    oi.qty AS qty_ordered, oi.unit_price AS unit_price,
    (oi.qty * oi.unit_price) AS total_product_amount
FROM inventory_payment py
    INNER JOIN inventory_order o ON py.order_id = o.id
    INNER JOIN inventory_customer c ON o.customer_id = c.id
    INNER JOIN inventory_orderitem oi ON o.id = oi.order_id
    INNER JOIN inventory_product p ON oi.product_id = p.id
WHERE p.sku = ?
    AND oi.qty >= ?
    AND py.status = 'CONFIRMED'
ORDER BY py.created_at DESC, oi.qty DESC`, []any{p.SKU, p.MinQuantity}
}

// ─────────────────────────────────────────────
// stock analysis
// ─────────────────────────────────────────────

func stockAnalysisORM(db *gorm.DB, p Params) *gorm.DB {
	q := db.Table("inventory_stock AS s").
		Select(`w.name AS warehouse_name, w.city AS warehouse_city,
			p.name AS product_name, p.sku AS product_sku,
			b.name AS brand_name, cat.name AS category_name,
			s.qty AS qty, s.reserved AS reserved, (s.qty - s.reserved) AS available,
			p.price AS product_price, (s.qty * p.price) AS stock_value`).
		Joins("INNER JOIN inventory_warehouse w ON s.warehouse_id = w.id").
		Joins("INNER JOIN inventory_product p ON s.product_id = p.id").
		Joins("INNER JOIN inventory_brand b ON p.brand_id = b.id").
		Joins("INNER JOIN inventory_category cat ON p.category_id = cat.id").
		Where("s.qty >= ?", p.MinStock).
		Where("p.is_active = ?", true)
	if p.Warehouse != "" {
		q = q.Where("LOWER(w.name) LIKE ?", contains(p.Warehouse))
	}
	return q.Order("w.name").Order("s.qty DESC").Order("p.name")
}

func stockAnalysisSQL(p Params) (string, []any) {
	var sb strings.Builder
	args := []any{p.MinStock, true}
	sb.WriteString(`SELECT
    w.name AS warehouse_name, w.city AS warehouse_city,
    p.name AS product_name, p.sku AS product_sku,
    b.name AS brand_name, cat.name AS category_name,
    s.qty AS qty, s.reserved AS reserved, (s.qty - s.reserved) AS available,
    p.price AS product_price, (s.qty * p.price) AS stock_value
FROM inventory_stock s
    INNER JOIN inventory_warehouse w ON s.warehouse_id = w.id
    INNER JOIN inventory_product p ON s.product_id = p.id
    INNER JOIN inventory_brand b ON p.brand_id = b.id
    INNER JOIN inventory_category cat ON p.category_id = cat.id
WHERE s.qty >= ?
    AND p.is_active = ?`)
	if p.Warehouse != "" {
		sb.WriteString("\n    AND LOWER(w.name) LIKE ?")
		args = append(args, contains(p.Warehouse))
	}
	sb.WriteString("\nORDER BY w.name, s.qty DESC, p.name")
	return sb.String(), args
}

// ─────────────────────────────────────────────
// top selling products
// ─────────────────────────────────────────────

// dayAfter turns an inclusive end date into an exclusive bound.
func dayAfter(t *time.Time) time.Time {
	return t.AddDate(0, 0, 1)
}

func topSellingORM(db *gorm.DB, p Params) *gorm.DB {
	q := db.Table("inventory_product AS p").
		Select(`p.id AS product_id, p.name AS product_name, p.sku AS product_sku,
			b.name AS brand_name, c.name AS category_name,
			SUM(oi.qty) AS total_quantity_sold,
			COUNT(DISTINCT o.id) AS total_orders,
			SUM(oi.qty * oi.unit_price) AS total_revenue,
			AVG(oi.unit_price) AS avg_unit_price`).
		Joins("INNER JOIN inventory_brand b ON p.brand_id = b.id").
		Joins("INNER JOIN inventory_category c ON p.category_id = c.id").
		Joins("INNER JOIN inventory_orderitem oi ON p.id = oi.product_id").
		Joins("INNER JOIN inventory_order o ON oi.order_id = o.id").
		Where("o.status = ?", models.OrderConfirmed).
		Where("p.is_active = ?", true)
	if p.StartDate != nil {
		q = q.Where("o.created_at >= ?", *p.StartDate)
	}
	if p.EndDate != nil {
		q = q.Where("o.created_at < ?", dayAfter(p.EndDate))
	}
	return q.Group("p.id, p.name, p.sku, b.name, c.name").
		Order("total_quantity_sold DESC").
		Order("total_revenue DESC").
		Limit(p.Limit)
}

func topSellingSQL(p Params) (string, []any) {
	var sb strings.Builder
	args := []any{true}
	sb.WriteString(`SELECT
    p.id AS product_id, p.name AS product_name, p.sku AS product_sku,
    b.name AS brand_name, c.name AS category_name,
    SUM(oi.qty) AS total_quantity_sold,
    COUNT(DISTINCT o.id) AS total_orders,
    SUM(oi.qty * oi.unit_price) AS total_revenue,
    AVG(oi.unit_price) AS avg_unit_price
FROM inventory_product p
    INNER JOIN inventory_brand b ON p.brand_id = b.id
    INNER JOIN inventory_category c ON p.category_id = c.id
    INNER JOIN inventory_orderitem oi ON p.id = oi.product_id
    INNER JOIN inventory_order o ON oi.order_id = o.id
WHERE o.status = 'CONFIRMED'
    AND p.is_active = ?`)
	if p.StartDate != nil {
		sb.WriteString("\n    AND o.created_at >= ?")
		args = append(args, *p.StartDate)
	}
	if p.EndDate != nil {
		sb.WriteString("\n    AND o.created_at < ?")
		args = append(args, dayAfter(p.EndDate))
	}
	sb.WriteString(`
GROUP BY p.id, p.name, p.sku, b.name, c.name
ORDER BY total_quantity_sold DESC, total_revenue DESC
LIMIT ?`)
	args = append(args, p.Limit)
	return sb.String(), args
}
