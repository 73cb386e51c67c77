package reports

import (
	"fmt"

	"gorm.io/gorm"
)

// Function is one installed plpgsql report function.
type Function struct {
	Name   string
	Create string
	Drop   string
	// Sample calls the function with the sample-data arguments.
	Sample string
}

// Functions lists the postgres report functions in install order.
var Functions = []Function{
	{
		Name:   "get_products_by_brand_and_customer",
		Create: createProductsByBrandAndCustomer,
		Drop:   "DROP FUNCTION IF EXISTS get_products_by_brand_and_customer(VARCHAR, VARCHAR)",
		Sample: "SELECT * FROM get_products_by_brand_and_customer('Samsung', 'john@example.com') LIMIT 3",
	},
	{
		Name:   "get_payments_by_product_quantity",
		Create: createPaymentsByProductQuantity,
		Drop:   "DROP FUNCTION IF EXISTS get_payments_by_product_quantity(VARCHAR, INTEGER)",
		Sample: "SELECT * FROM get_payments_by_product_quantity('TV-SAMSUNG-001', 1) LIMIT 3",
	},
	{
		Name:   "get_stock_analysis",
		Create: createStockAnalysis,
		Drop:   "DROP FUNCTION IF EXISTS get_stock_analysis(VARCHAR, INTEGER)",
		Sample: "SELECT * FROM get_stock_analysis('Bodega', 0) LIMIT 3",
	},
	{
		Name:   "get_top_selling_products",
		Create: createTopSellingProducts,
		Drop:   "DROP FUNCTION IF EXISTS get_top_selling_products(INTEGER, DATE, DATE)",
		Sample: "SELECT * FROM get_top_selling_products(5, NULL, NULL) LIMIT 3",
	},
}

// InstallFunctions creates or replaces every report function.
func InstallFunctions(db *gorm.DB) error {
	for _, fn := range Functions {
		if err := db.Exec(fn.Create).Error; err != nil {
			return fmt.Errorf("reports: create %s: %w", fn.Name, err)
		}
	}
	return nil
}

// DropFunctions drops every report function that exists.
func DropFunctions(db *gorm.DB) error {
	for _, fn := range Functions {
		if err := db.Exec(fn.Drop).Error; err != nil {
			return fmt.Errorf("reports: drop %s: %w", fn.Name, err)
		}
	}
	return nil
}

// Column types follow the gorm schema: ids are CHAR(36), int fields are
// BIGINT, times are TIMESTAMPTZ. RETURN QUERY rejects mismatches.

const createProductsByBrandAndCustomer = `
CREATE OR REPLACE FUNCTION get_products_by_brand_and_customer(
    brand_name_param VARCHAR,
    customer_email_param VARCHAR
)
RETURNS TABLE (
    product_id CHAR(36),
    product_name VARCHAR,
    product_sku VARCHAR,
    product_price NUMERIC,
    brand_name VARCHAR,
    category_name VARCHAR,
    customer_name VARCHAR,
    customer_email VARCHAR,
    order_id CHAR(36),
    order_status VARCHAR,
    order_date TIMESTAMPTZ,
    qty_ordered BIGINT,
    unit_price NUMERIC
) AS $$
BEGIN
    RETURN QUERY
    SELECT DISTINCT
        p.id, p.name, p.sku, p.price,
        b.name, c.name,
        cu.full_name, cu.email,
        o.id, o.status, o.created_at,
        oi.qty, oi.unit_price
    FROM inventory_product p
        INNER JOIN inventory_brand b ON p.brand_id = b.id
        INNER JOIN inventory_category c ON p.category_id = c.id
        INNER JOIN inventory_orderitem oi ON p.id = oi.product_id
        INNER JOIN inventory_order o ON oi.order_id = o.id
        INNER JOIN inventory_customer cu ON o.customer_id = cu.id
    WHERE b.name ILIKE '%' || brand_name_param || '%'
        AND cu.email = customer_email_param
        AND p.is_active = true
        AND b.is_active = true
    ORDER BY p.name, o.created_at DESC;
END;
$$ LANGUAGE plpgsql`

const createPaymentsByProductQuantity = `
CREATE OR REPLACE FUNCTION get_payments_by_product_quantity(
    product_sku_param VARCHAR,
    min_quantity INTEGER
)
RETURNS TABLE (
    payment_id CHAR(36),
    payment_method VARCHAR,
    payment_amount NUMERIC,
    payment_status VARCHAR,
    payment_date TIMESTAMPTZ,
    order_id CHAR(36),
    customer_name VARCHAR,
    customer_email VARCHAR,
    product_name VARCHAR,
    product_sku VARCHAR,
    qty_ordered BIGINT,
    unit_price NUMERIC,
    total_product_amount NUMERIC
) AS $$
BEGIN
    RETURN QUERY
    SELECT
        py.id, py.method, py.amount, py.status, py.created_at,
        o.id,
        c.full_name, c.email,
        p.name, p.sku,
        oi.qty, oi.unit_price,
        (oi.qty * oi.unit_price)
    FROM inventory_payment py
        INNER JOIN inventory_order o ON py.order_id = o.id
        INNER JOIN inventory_customer c ON o.customer_id = c.id
        INNER JOIN inventory_orderitem oi ON o.id = oi.order_id
        INNER JOIN inventory_product p ON oi.product_id = p.id
    WHERE p.sku = product_sku_param
        AND oi.qty >= min_quantity
        AND py.status = 'CONFIRMED'
    ORDER BY py.created_at DESC, oi.qty DESC;
END;
$$ LANGUAGE plpgsql`

const createStockAnalysis = `
CREATE OR REPLACE FUNCTION get_stock_analysis(
    warehouse_name_param VARCHAR DEFAULT NULL,
    min_stock INTEGER DEFAULT 0
)
RETURNS TABLE (
    warehouse_name VARCHAR,
    warehouse_city VARCHAR,
    product_name VARCHAR,
    product_sku VARCHAR,
    brand_name VARCHAR,
    category_name VARCHAR,
    qty BIGINT,
    reserved BIGINT,
    available BIGINT,
    product_price NUMERIC,
    stock_value NUMERIC
) AS $$
BEGIN
    RETURN QUERY
    SELECT
        w.name, w.city,
        p.name, p.sku,
        b.name, cat.name,
        s.qty, s.reserved, (s.qty - s.reserved),
        p.price, (s.qty * p.price)
    FROM inventory_stock s
        INNER JOIN inventory_warehouse w ON s.warehouse_id = w.id
        INNER JOIN inventory_product p ON s.product_id = p.id
        INNER JOIN inventory_brand b ON p.brand_id = b.id
        INNER JOIN inventory_category cat ON p.category_id = cat.id
    WHERE (warehouse_name_param IS NULL OR w.name ILIKE '%' || warehouse_name_param || '%')
        AND s.qty >= min_stock
        AND p.is_active = true
    ORDER BY w.name, s.qty DESC, p.name;
END;
$$ LANGUAGE plpgsql`

const createTopSellingProducts = `
CREATE OR REPLACE FUNCTION get_top_selling_products(
    limit_results INTEGER DEFAULT 10,
    start_date DATE DEFAULT NULL,
    end_date DATE DEFAULT NULL
)
RETURNS TABLE (
    product_id CHAR(36),
    product_name VARCHAR,
    product_sku VARCHAR,
    brand_name VARCHAR,
    category_name VARCHAR,
    total_quantity_sold BIGINT,
    total_orders BIGINT,
    total_revenue NUMERIC,
    avg_unit_price NUMERIC
) AS $$
BEGIN
    RETURN QUERY
    SELECT
        p.id, p.name, p.sku,
        b.name, c.name,
        SUM(oi.qty)::BIGINT,
        COUNT(DISTINCT o.id),
        SUM(oi.qty * oi.unit_price),
        AVG(oi.unit_price)
    FROM inventory_product p
        INNER JOIN inventory_brand b ON p.brand_id = b.id
        INNER JOIN inventory_category c ON p.category_id = c.id
        INNER JOIN inventory_orderitem oi ON p.id = oi.product_id
        INNER JOIN inventory_order o ON oi.order_id = o.id
    WHERE o.status = 'CONFIRMED'
        AND p.is_active = true
        AND (start_date IS NULL OR o.created_at::DATE >= start_date)
        AND (end_date IS NULL OR o.created_at::DATE <= end_date)
    GROUP BY p.id, p.name, p.sku, b.name, c.name
    ORDER BY 6 DESC, 8 DESC
    LIMIT limit_results;
END;
$$ LANGUAGE plpgsql`
