package controllers

import (
	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/app/resources"
	"github.com/shashiranjanraj/bodega/app/services"
	"github.com/shashiranjanraj/bodega/config"
	"github.com/shashiranjanraj/bodega/pkg/ctx"
)

type BrandController struct {
	Resource[models.Brand, services.NameInput, services.NameInput]
	svc *services.BrandService
}

func NewBrandController() *BrandController {
	svc := services.NewBrandService()
	return &BrandController{Resource: Resource[models.Brand, services.NameInput, services.NameInput]{svc: svc, view: resources.Brand}, svc: svc}
}

// Products handles GET /brands/{id}/products.
func (bc *BrandController) Products(c *ctx.Context) {
	items, err := bc.svc.Products(c.Context(), c.Param("id"))
	list(c, resources.Product, items, err)
}

type CategoryController struct {
	Resource[models.Category, services.NameInput, services.NameInput]
	svc *services.CategoryService
}

func NewCategoryController() *CategoryController {
	svc := services.NewCategoryService()
	return &CategoryController{Resource: Resource[models.Category, services.NameInput, services.NameInput]{svc: svc, view: resources.Category}, svc: svc}
}

func (cc *CategoryController) Products(c *ctx.Context) {
	items, err := cc.svc.Products(c.Context(), c.Param("id"))
	list(c, resources.Product, items, err)
}

type ProductController struct {
	Resource[models.Product, services.ProductInput, services.ProductInput]
	svc *services.ProductService
}

func NewProductController() *ProductController {
	svc := services.NewProductService()
	return &ProductController{Resource: Resource[models.Product, services.ProductInput, services.ProductInput]{svc: svc, view: resources.Product}, svc: svc}
}

// Stock handles GET /products/{id}/stock.
func (pc *ProductController) Stock(c *ctx.Context) {
	items, err := pc.svc.Stock(c.Context(), c.Param("id"))
	list(c, resources.Stock, items, err)
}

// LowStock handles GET /products/low_stock?threshold=N.
func (pc *ProductController) LowStock(c *ctx.Context) {
	threshold, ok := c.QueryInt("threshold", config.LowStockThreshold())
	if !ok {
		c.BadRequest("threshold must be an integer")
		return
	}
	items, err := pc.svc.LowStock(c.Context(), threshold)
	list(c, resources.Product, items, err)
}
