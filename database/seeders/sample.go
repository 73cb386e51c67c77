package seeders

import (
	"errors"
	"fmt"

	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/config"
	"github.com/shashiranjanraj/bodega/pkg/auth"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	Register("sample", Sample)
}

// AdminEmail is the operator account created by Sample.
const AdminEmail = "admin@example.com"

type sampleProduct struct {
	name, sku, price string
	brand, category  int
	// base qty and reserved units in the first warehouse
	qty, reserved int
}

var (
	sampleBrands     = []string{"Samsung", "LG", "Sony", "Apple", "Xiaomi"}
	sampleCategories = []string{"Televisores", "Smartphones", "Laptops", "Tablets", "Electrodomésticos"}
	sampleWarehouses = [][2]string{
		{"Bodega Central", "Bogotá"},
		{"Bodega Norte", "Medellín"},
		{"Bodega Costa", "Cartagena"},
		{"Bodega Sur", "Cali"},
	}
	sampleProducts = []sampleProduct{
		{`Samsung QLED 55" 4K Smart TV`, "TV-SAMSUNG-001", "1299.99", 0, 0, 100, 10},
		{"Samsung Galaxy S23 Ultra", "PHONE-SAMSUNG-001", "1199.99", 0, 1, 50, 5},
		{`LG OLED 65" 4K Smart TV`, "TV-LG-001", "1599.99", 1, 0, 75, 8},
		{`LG Gram 15" Laptop`, "LAPTOP-LG-001", "999.99", 1, 2, 30, 3},
		{`Sony Bravia 55" 4K HDR TV`, "TV-SONY-001", "899.99", 2, 0, 120, 15},
		{"iPhone 15 Pro Max", "PHONE-APPLE-001", "1499.99", 3, 1, 80, 12},
		{`MacBook Pro 16"`, "LAPTOP-APPLE-001", "2499.99", 3, 2, 60, 7},
		{`iPad Pro 12.9"`, "TABLET-APPLE-001", "1099.99", 3, 3, 40, 4},
		{`Xiaomi Mi TV 43" 4K`, "TV-XIAOMI-001", "399.99", 4, 0, 90, 9},
		{"Xiaomi Redmi Note 12 Pro", "PHONE-XIAOMI-001", "299.99", 4, 1, 110, 11},
	}
	sampleCustomers = [][2]string{
		{"John Doe", "john@example.com"},
		{"Jane Smith", "jane@example.com"},
		{"Carlos Rodriguez", "carlos@example.com"},
		{"Maria Garcia", "maria@example.com"},
		{"Luis Fernandez", "luis@example.com"},
	}
)

type sampleOrder struct {
	customer int
	status   string
	// product index -> qty
	items [][2]int
}

var sampleOrders = []sampleOrder{
	{0, models.OrderConfirmed, [][2]int{{0, 1}, {1, 2}}},
	{1, models.OrderPending, [][2]int{{2, 1}}},
	{2, models.OrderConfirmed, [][2]int{{5, 1}, {7, 1}}},
	{3, models.OrderConfirmed, [][2]int{{6, 1}}},
	{0, models.OrderPending, [][2]int{{8, 3}, {9, 2}}},
	{4, models.OrderConfirmed, [][2]int{{0, 1}}},
}

var paymentMethods = []string{models.MethodCard, models.MethodTransfer, models.MethodCOD}

// Sample loads the demo catalogue: brands, categories, products,
// warehouses, stock, customers, orders with items, payments for the
// confirmed orders and the admin operator.
func Sample(tx *gorm.DB) error {
	brands := make([]models.Brand, len(sampleBrands))
	for i, name := range sampleBrands {
		brands[i] = models.Brand{Name: name, IsActive: true}
	}
	if err := tx.Create(&brands).Error; err != nil {
		return fmt.Errorf("brands: %w", err)
	}

	categories := make([]models.Category, len(sampleCategories))
	for i, name := range sampleCategories {
		categories[i] = models.Category{Name: name, IsActive: true}
	}
	if err := tx.Create(&categories).Error; err != nil {
		return fmt.Errorf("categories: %w", err)
	}

	products := make([]models.Product, len(sampleProducts))
	for i, p := range sampleProducts {
		products[i] = models.Product{
			Name:       p.name,
			SKU:        p.sku,
			Price:      decimal.RequireFromString(p.price),
			IsActive:   true,
			BrandID:    brands[p.brand].ID,
			CategoryID: categories[p.category].ID,
		}
	}
	if err := tx.Create(&products).Error; err != nil {
		return fmt.Errorf("products: %w", err)
	}

	warehouses := make([]models.Warehouse, len(sampleWarehouses))
	for i, w := range sampleWarehouses {
		warehouses[i] = models.Warehouse{Name: w[0], City: w[1]}
	}
	if err := tx.Create(&warehouses).Error; err != nil {
		return fmt.Errorf("warehouses: %w", err)
	}

	stocks := make([]models.Stock, 0, len(products)*len(warehouses))
	for i, p := range sampleProducts {
		for j := range warehouses {
			qty := p.qty + 10*j
			stocks = append(stocks, models.Stock{
				ProductID:   products[i].ID,
				WarehouseID: warehouses[j].ID,
				Qty:         qty,
				Reserved:    min(p.reserved+j, qty),
			})
		}
	}
	if err := tx.Create(&stocks).Error; err != nil {
		return fmt.Errorf("stock: %w", err)
	}

	customers := make([]models.Customer, len(sampleCustomers))
	for i, c := range sampleCustomers {
		customers[i] = models.Customer{FullName: c[0], Email: c[1]}
	}
	if err := tx.Create(&customers).Error; err != nil {
		return fmt.Errorf("customers: %w", err)
	}

	for i, so := range sampleOrders {
		order := models.Order{CustomerID: customers[so.customer].ID, Status: so.status}
		for _, it := range so.items {
			order.Items = append(order.Items, models.OrderItem{
				ProductID: products[it[0]].ID,
				Qty:       it[1],
				UnitPrice: products[it[0]].Price,
			})
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("order %d: %w", i+1, err)
		}
		if so.status != models.OrderConfirmed {
			continue
		}
		payment := models.Payment{
			OrderID: order.ID,
			Method:  paymentMethods[i%len(paymentMethods)],
			Amount:  order.TotalAmount(),
			Status:  models.PaymentConfirmed,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("payment for order %d: %w", i+1, err)
		}
	}

	return seedAdmin(tx)
}

func seedAdmin(tx *gorm.DB) error {
	var existing models.User
	err := tx.Where("email = ?", AdminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := auth.HashPassword(config.AdminPassword())
	if err != nil {
		return err
	}
	return tx.Create(&models.User{
		Name:     "Admin",
		Email:    AdminEmail,
		Password: hash,
		Role:     models.RoleAdmin,
	}).Error
}
