package controllers

import (
	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/app/resources"
	"github.com/shashiranjanraj/bodega/app/services"
	"github.com/shashiranjanraj/bodega/pkg/ctx"
	"github.com/shashiranjanraj/bodega/pkg/resource"
)

type CustomerController struct {
	Resource[models.Customer, services.CustomerInput, services.CustomerInput]
	svc *services.CustomerService
}

func NewCustomerController() *CustomerController {
	svc := services.NewCustomerService()
	return &CustomerController{
		Resource: Resource[models.Customer, services.CustomerInput, services.CustomerInput]{svc: svc, view: resources.Customer},
		svc:      svc,
	}
}

// Orders handles GET /customers/{id}/orders.
func (cc *CustomerController) Orders(c *ctx.Context) {
	items, err := cc.svc.Orders(c.Context(), c.Param("id"))
	list(c, resources.Order, items, err)
}

type OrderController struct {
	Resource[models.Order, services.OrderCreateInput, services.OrderInput]
	svc *services.OrderService
}

func NewOrderController() *OrderController {
	svc := services.NewOrderService()
	return &OrderController{
		Resource: Resource[models.Order, services.OrderCreateInput, services.OrderInput]{svc: svc, view: resources.Order},
		svc:      svc,
	}
}

// Confirm handles POST /orders/{id}/confirm.
func (oc *OrderController) Confirm(c *ctx.Context) {
	o, err := oc.svc.Confirm(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.One(resources.Order, o))
}

type OrderItemController struct {
	Resource[models.OrderItem, services.OrderItemInput, services.OrderItemInput]
}

func NewOrderItemController() *OrderItemController {
	return &OrderItemController{
		Resource: Resource[models.OrderItem, services.OrderItemInput, services.OrderItemInput]{
			svc:  services.NewOrderItemService(),
			view: resources.OrderItem,
		},
	}
}

type PaymentController struct {
	Resource[models.Payment, services.PaymentInput, services.PaymentInput]
	svc *services.PaymentService
}

func NewPaymentController() *PaymentController {
	svc := services.NewPaymentService()
	return &PaymentController{
		Resource: Resource[models.Payment, services.PaymentInput, services.PaymentInput]{svc: svc, view: resources.Payment},
		svc:      svc,
	}
}

// Confirm handles POST /payments/{id}/confirm.
func (pc *PaymentController) Confirm(c *ctx.Context) {
	p, err := pc.svc.Confirm(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.One(resources.Payment, p))
}
