package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/shashiranjanraj/bodega/app/resources"
	"github.com/shashiranjanraj/bodega/pkg/ctx"
	"github.com/shashiranjanraj/bodega/pkg/database"
	"github.com/shashiranjanraj/bodega/pkg/related"
	"gorm.io/gorm"
)

type relatedRunner interface {
	Run(ctx context.Context, db *gorm.DB, q related.Query) (*related.Result, error)
}

// Related lists get_related models by resource path.
var Related = map[string]relatedRunner{
	"brands": related.New("brand", resources.Brand, map[string]string{
		"product":   "products",
		"customer":  "products__order_items__order__customer",
		"order":     "products__order_items__order",
		"warehouse": "products__stocks__warehouse",
	}, "Products"),
	"categories": related.New("category", resources.Category, nil, "Products"),
	"products": related.New("product", resources.Product, map[string]string{
		"brand":     "brand",
		"category":  "category",
		"warehouse": "stocks__warehouse",
		"stock":     "stocks",
		"customer":  "order_items__order__customer",
		"order":     "order_items__order",
		"orderitem": "order_items",
		"payment":   "order_items__order__payment",
	}, "Brand", "Category", "Stocks"),
	"warehouses": related.New("warehouse", resources.Warehouse, map[string]string{
		"product": "stocks__product",
		"stock":   "stocks",
		"brand":   "stocks__product__brand",
	}, "Stocks"),
	"stocks": related.New("stock", resources.Stock, map[string]string{
		"product":   "product",
		"warehouse": "warehouse",
		"brand":     "product__brand",
		"category":  "product__category",
	}, "Product", "Warehouse"),
	"customers": related.New("customer", resources.Customer, map[string]string{
		"order":   "orders",
		"product": "orders__items__product",
		"brand":   "orders__items__product__brand",
		"payment": "orders__payment",
	}, "Orders.Payment"),
	"orders": related.New("order", resources.Order, map[string]string{
		"customer":  "customer",
		"product":   "items__product",
		"brand":     "items__product__brand",
		"orderitem": "items",
		"payment":   "payment",
	}, "Customer", "Items.Product"),
	"order-items": related.New("orderitem", resources.OrderItem, nil, "Product"),
	"payments": related.New("payment", resources.Payment, map[string]string{
		"order":    "order",
		"customer": "order__customer",
		"product":  "order__items__product",
	}, "Order.Customer"),
}

// RelatedHandler serves GET /<resource>/get_related.
func RelatedHandler(m relatedRunner) ctx.HandlerFunc {
	return func(c *ctx.Context) {
		q, err := related.Parse(c.R.URL.Query())
		if err != nil {
			c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		res, err := m.Run(c.Context(), database.DB, q)
		if err != nil {
			var re *related.Error
			if !errors.As(err, &re) {
				c.Log().Warn("get_related failed", "path", c.R.URL.Path, "error", err)
			}
			c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		c.Success(res)
	}
}
