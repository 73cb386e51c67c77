// Package routes registers every bodega endpoint.
package routes

import (
	"net/http"

	gql "github.com/graphql-go/graphql"
	"github.com/shashiranjanraj/bodega/app/controllers"
	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/config"
	"github.com/shashiranjanraj/bodega/pkg/ctx"
	"github.com/shashiranjanraj/bodega/pkg/graphql"
	"github.com/shashiranjanraj/bodega/pkg/metrics"
	"github.com/shashiranjanraj/bodega/pkg/middleware"
	"github.com/shashiranjanraj/bodega/pkg/rbac"
	"github.com/shashiranjanraj/bodega/pkg/router"
	"github.com/shashiranjanraj/bodega/pkg/sse"
	"github.com/shashiranjanraj/bodega/pkg/ws"
)

// crud is the handler set of one resource.
type crud interface {
	Index(c *ctx.Context)
	Show(c *ctx.Context)
	Store(c *ctx.Context)
	Update(c *ctx.Context)
	Patch(c *ctx.Context)
	Destroy(c *ctx.Context)
}

// writeGuard protects writes when auth is enabled: a bearer token for every
// write, role admin for DELETE.
func writeGuard() []router.Middleware {
	if !config.AuthEnabled() {
		return nil
	}
	return []router.Middleware{
		middleware.Auth,
		rbac.ForMethods(rbac.HasRole(models.RoleAdmin), http.MethodDelete),
	}
}

// resource mounts the CRUD routes and get_related of name, plus the
// actions registered by extra on the read and write groups.
func resource(api *router.Group, name string, h crud, extra func(read, write *router.Group)) {
	read := api.Group("/" + name)
	write := read.Group("", writeGuard()...)

	read.Get("/", name+".index", ctx.Wrap(h.Index))
	read.Get("/get_related", name+".related", ctx.Wrap(controllers.RelatedHandler(controllers.Related[name])))
	if extra != nil {
		extra(read, write)
	}
	read.Get("/{id}", name+".show", ctx.Wrap(h.Show))
	write.Post("/", name+".store", ctx.Wrap(h.Store))
	write.Put("/{id}", name+".update", ctx.Wrap(h.Update))
	write.Patch("/{id}", name+".patch", ctx.Wrap(h.Patch))
	write.Delete("/{id}", name+".destroy", ctx.Wrap(h.Destroy))
}

// RegisterAPI mounts /api.
func RegisterAPI(r *router.Router) {
	api := r.Group("/api")

	authc := controllers.NewAuthController()
	api.Post("/auth/login", "auth.login", ctx.Wrap(authc.Login))
	api.Post("/auth/refresh", "auth.refresh", ctx.Wrap(authc.Refresh))
	api.Get("/auth/me", "auth.me", ctx.Wrap(authc.Me), middleware.Auth)

	brands := controllers.NewBrandController()
	resource(api, "brands", brands, func(read, _ *router.Group) {
		read.Get("/{id}/products", "brands.products", ctx.Wrap(brands.Products))
	})

	categories := controllers.NewCategoryController()
	resource(api, "categories", categories, func(read, _ *router.Group) {
		read.Get("/{id}/products", "categories.products", ctx.Wrap(categories.Products))
	})

	products := controllers.NewProductController()
	resource(api, "products", products, func(read, _ *router.Group) {
		read.Get("/low_stock", "products.low_stock", ctx.Wrap(products.LowStock))
		read.Get("/{id}/stock", "products.stock", ctx.Wrap(products.Stock))
	})

	warehouses := controllers.NewWarehouseController()
	resource(api, "warehouses", warehouses, func(read, _ *router.Group) {
		read.Get("/{id}/stock", "warehouses.stock", ctx.Wrap(warehouses.Stock))
	})

	stocks := controllers.NewStockController()
	resource(api, "stocks", stocks, func(read, _ *router.Group) {
		read.Get("/available", "stocks.available", ctx.Wrap(stocks.Available))
	})

	customers := controllers.NewCustomerController()
	resource(api, "customers", customers, func(read, _ *router.Group) {
		read.Get("/{id}/orders", "customers.orders", ctx.Wrap(customers.Orders))
	})

	orders := controllers.NewOrderController()
	resource(api, "orders", orders, func(_, write *router.Group) {
		write.Post("/{id}/confirm", "orders.confirm", ctx.Wrap(orders.Confirm))
	})

	resource(api, "order-items", controllers.NewOrderItemController(), nil)

	payments := controllers.NewPaymentController()
	resource(api, "payments", payments, func(_, write *router.Group) {
		write.Post("/{id}/confirm", "payments.confirm", ctx.Wrap(payments.Confirm))
	})

	reports := controllers.NewReportController()
	api.Get("/reports/{name}", "reports.run", ctx.Wrap(reports.Run))
}

// RegisterRealtime mounts /graphql, /ws/stock, /sse/stock and /metrics.
func RegisterRealtime(r *router.Router, schema gql.Schema, hub *ws.Hub, broker *sse.Broker) {
	r.Handle("/graphql", "graphql", graphql.Handler(schema))
	r.Get("/ws/stock", "ws.stock", func(w http.ResponseWriter, req *http.Request) {
		ws.Upgrade(w, req, hub)
	})
	r.Get("/sse/stock", "sse.stock", broker.ServeHTTP)
	r.Get("/metrics", "metrics", metrics.Handler())
}
