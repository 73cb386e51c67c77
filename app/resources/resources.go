// Package resources defines the API representation of every model.
package resources

import (
	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/pkg/resource"
	"github.com/shopspring/decimal"
)

type Map = resource.Map

// activeCount counts the loaded products that are active.
func activeCount(products []models.Product) int {
	n := 0
	for _, p := range products {
		if p.IsActive {
			n++
		}
	}
	return n
}

var Brand = resource.Func[models.Brand](func(b models.Brand) Map {
	return Map{
		"id":             b.ID,
		"name":           b.Name,
		"is_active":      b.IsActive,
		"created_at":     b.CreatedAt,
		"products_count": activeCount(b.Products),
	}
})

var Category = resource.Func[models.Category](func(c models.Category) Map {
	return Map{
		"id":             c.ID,
		"name":           c.Name,
		"is_active":      c.IsActive,
		"created_at":     c.CreatedAt,
		"products_count": activeCount(c.Products),
	}
})

var Product = resource.Func[models.Product](func(p models.Product) Map {
	m := Map{
		"id":            p.ID,
		"name":          p.Name,
		"sku":           p.SKU,
		"price":         resource.Money(p.Price),
		"is_active":     p.IsActive,
		"created_at":    p.CreatedAt,
		"brand":         p.BrandID,
		"brand_name":    nil,
		"category":      p.CategoryID,
		"category_name": nil,
		"total_stock":   p.TotalStock(),
	}
	if p.Brand != nil {
		m["brand_name"] = p.Brand.Name
	}
	if p.Category != nil {
		m["category_name"] = p.Category.Name
	}
	return m
})

var Warehouse = resource.Func[models.Warehouse](func(w models.Warehouse) Map {
	stocked := 0
	for _, s := range w.Stocks {
		if s.Qty > 0 {
			stocked++
		}
	}
	return Map{
		"id":             w.ID,
		"name":           w.Name,
		"city":           w.City,
		"created_at":     w.CreatedAt,
		"total_products": stocked,
	}
})

var Stock = resource.Func[models.Stock](func(s models.Stock) Map {
	m := Map{
		"id":             s.ID,
		"qty":            s.Qty,
		"reserved":       s.Reserved,
		"updated_at":     s.UpdatedAt,
		"created_at":     s.CreatedAt,
		"product":        s.ProductID,
		"product_name":   nil,
		"product_sku":    nil,
		"warehouse":      s.WarehouseID,
		"warehouse_name": nil,
		"available_qty":  s.AvailableQty(),
	}
	if s.Product != nil {
		m["product_name"] = s.Product.Name
		m["product_sku"] = s.Product.SKU
	}
	if s.Warehouse != nil {
		m["warehouse_name"] = s.Warehouse.Name
	}
	return m
})

// totalSpent sums the confirmed payments of the loaded orders.
func totalSpent(orders []models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		if o.Payment != nil && o.Payment.Status == models.PaymentConfirmed {
			total = total.Add(o.Payment.Amount)
		}
	}
	return total
}

var Customer = resource.Func[models.Customer](func(c models.Customer) Map {
	return Map{
		"id":           c.ID,
		"full_name":    c.FullName,
		"email":        c.Email,
		"created_at":   c.CreatedAt,
		"orders_count": len(c.Orders),
		"total_spent":  resource.Money(totalSpent(c.Orders)),
	}
})

// Item is an order item as nested in its order.
var Item = resource.Func[models.OrderItem](func(it models.OrderItem) Map {
	m := Map{
		"id":           it.ID,
		"qty":          it.Qty,
		"unit_price":   resource.Money(it.UnitPrice),
		"created_at":   it.CreatedAt,
		"product":      it.ProductID,
		"product_name": nil,
		"product_sku":  nil,
		"total_price":  resource.Money(it.TotalPrice()),
	}
	if it.Product != nil {
		m["product_name"] = it.Product.Name
		m["product_sku"] = it.Product.SKU
	}
	return m
})

// OrderItem is the standalone representation, which also names the order.
var OrderItem = resource.Func[models.OrderItem](func(it models.OrderItem) Map {
	m := Item(it)
	m["order"] = it.OrderID
	return m
})

var Order = resource.Func[models.Order](func(o models.Order) Map {
	m := Map{
		"id":             o.ID,
		"status":         o.Status,
		"created_at":     o.CreatedAt,
		"customer":       o.CustomerID,
		"customer_name":  nil,
		"customer_email": nil,
		"items":          resource.Many(Item, o.Items),
		"total_amount":   resource.Money(o.TotalAmount()),
		"total_items":    o.TotalItems(),
	}
	if o.Customer != nil {
		m["customer_name"] = o.Customer.FullName
		m["customer_email"] = o.Customer.Email
	}
	return m
})

var Payment = resource.Func[models.Payment](func(p models.Payment) Map {
	m := Map{
		"id":                  p.ID,
		"method":              p.Method,
		"amount":              resource.Money(p.Amount),
		"status":              p.Status,
		"created_at":          p.CreatedAt,
		"order":               p.OrderID,
		"order_id":            p.OrderID,
		"order_customer_name": nil,
	}
	if p.Order != nil && p.Order.Customer != nil {
		m["order_customer_name"] = p.Order.Customer.FullName
	}
	return m
})

var User = resource.Func[models.User](func(u models.User) Map {
	return Map{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"role":       u.Role,
		"created_at": u.CreatedAt,
	}
})
