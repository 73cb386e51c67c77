package controllers

import (
	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/app/resources"
	"github.com/shashiranjanraj/bodega/app/services"
	"github.com/shashiranjanraj/bodega/pkg/ctx"
)

type WarehouseController struct {
	Resource[models.Warehouse, services.WarehouseInput, services.WarehouseInput]
	svc *services.WarehouseService
}

func NewWarehouseController() *WarehouseController {
	svc := services.NewWarehouseService()
	return &WarehouseController{
		Resource: Resource[models.Warehouse, services.WarehouseInput, services.WarehouseInput]{svc: svc, view: resources.Warehouse},
		svc:      svc,
	}
}

// Stock handles GET /warehouses/{id}/stock.
func (wc *WarehouseController) Stock(c *ctx.Context) {
	items, err := wc.svc.Stock(c.Context(), c.Param("id"))
	list(c, resources.Stock, items, err)
}

type StockController struct {
	Resource[models.Stock, services.StockInput, services.StockInput]
	svc *services.StockService
}

func NewStockController() *StockController {
	svc := services.NewStockService()
	return &StockController{
		Resource: Resource[models.Stock, services.StockInput, services.StockInput]{svc: svc, view: resources.Stock},
		svc:      svc,
	}
}

// Available handles GET /stocks/available.
func (sc *StockController) Available(c *ctx.Context) {
	items, err := sc.svc.Available(c.Context())
	list(c, resources.Stock, items, err)
}
