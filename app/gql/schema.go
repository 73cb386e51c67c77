// Package gql defines the read-only GraphQL schema served at /graphql.
package gql

import (
	"errors"

	"github.com/graphql-go/graphql"
	"github.com/shashiranjanraj/bodega/app/resources"
	"github.com/shashiranjanraj/bodega/app/services"
	"github.com/shashiranjanraj/bodega/config"
	gqlhttp "github.com/shashiranjanraj/bodega/pkg/graphql"
	"github.com/shashiranjanraj/bodega/pkg/resource"
)

func fields(defs map[string]graphql.Output) graphql.Fields {
	out := graphql.Fields{}
	for name, t := range defs {
		out[name] = &graphql.Field{Type: t}
	}
	return out
}

var (
	catalogType = func(name string) *graphql.Object {
		return graphql.NewObject(graphql.ObjectConfig{
			Name: name,
			Fields: fields(map[string]graphql.Output{
				"id":             graphql.ID,
				"name":           graphql.String,
				"is_active":      graphql.Boolean,
				"products_count": graphql.Int,
				"created_at":     graphql.DateTime,
			}),
		})
	}
	brandType    = catalogType("Brand")
	categoryType = catalogType("Category")

	productType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: fields(map[string]graphql.Output{
			"id":            graphql.ID,
			"name":          graphql.String,
			"sku":           graphql.String,
			"price":         graphql.String,
			"is_active":     graphql.Boolean,
			"brand":         graphql.ID,
			"brand_name":    graphql.String,
			"category":      graphql.ID,
			"category_name": graphql.String,
			"total_stock":   graphql.Int,
			"created_at":    graphql.DateTime,
		}),
	})

	warehouseType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Warehouse",
		Fields: fields(map[string]graphql.Output{
			"id":             graphql.ID,
			"name":           graphql.String,
			"city":           graphql.String,
			"total_products": graphql.Int,
			"created_at":     graphql.DateTime,
		}),
	})

	itemType = graphql.NewObject(graphql.ObjectConfig{
		Name: "OrderItem",
		Fields: fields(map[string]graphql.Output{
			"id":           graphql.ID,
			"qty":          graphql.Int,
			"unit_price":   graphql.String,
			"product":      graphql.ID,
			"product_name": graphql.String,
			"product_sku":  graphql.String,
			"total_price":  graphql.String,
		}),
	})

	orderType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Order",
		Fields: fields(map[string]graphql.Output{
			"id":             graphql.ID,
			"status":         graphql.String,
			"customer":       graphql.ID,
			"customer_name":  graphql.String,
			"customer_email": graphql.String,
			"items":          graphql.NewList(itemType),
			"total_amount":   graphql.String,
			"total_items":    graphql.Int,
			"created_at":     graphql.DateTime,
		}),
	})
)

// Services are the readers behind the schema.
type Services struct {
	Brands     *services.BrandService
	Categories *services.CategoryService
	Products   *services.ProductService
	Warehouses *services.WarehouseService
	Orders     *services.OrderService
}

// NewServices uses the default service constructors.
func NewServices() Services {
	return Services{
		Brands:     services.NewBrandService(),
		Categories: services.NewCategoryService(),
		Products:   services.NewProductService(),
		Warehouses: services.NewWarehouseService(),
		Orders:     services.NewOrderService(),
	}
}

// Schema builds the root query over svc.
func Schema(svc Services) (graphql.Schema, error) {
	all := services.ListParams{}
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"brands": &graphql.Field{
				Type: graphql.NewList(brandType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					page, err := svc.Brands.List(p.Context, all)
					return resource.Many(resources.Brand, page.Items), err
				},
			},
			"categories": &graphql.Field{
				Type: graphql.NewList(categoryType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					page, err := svc.Categories.List(p.Context, all)
					return resource.Many(resources.Category, page.Items), err
				},
			},
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"sku":    &graphql.ArgumentConfig{Type: graphql.String},
					"brand":  &graphql.ArgumentConfig{Type: graphql.String},
					"active": &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					f := services.ProductFilter{}
					f.SKU, _ = p.Args["sku"].(string)
					f.Brand, _ = p.Args["brand"].(string)
					if active, ok := p.Args["active"].(bool); ok {
						f.Active = &active
					}
					items, err := svc.Products.Search(p.Context, f)
					return resource.Many(resources.Product, items), err
				},
			},
			"warehouses": &graphql.Field{
				Type: graphql.NewList(warehouseType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					page, err := svc.Warehouses.List(p.Context, all)
					return resource.Many(resources.Warehouse, page.Items), err
				},
			},
			"lowStock": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"threshold": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					threshold, ok := p.Args["threshold"].(int)
					if !ok {
						threshold = config.LowStockThreshold()
					}
					items, err := svc.Products.LowStock(p.Context, threshold)
					return resource.Many(resources.Product, items), err
				},
			},
			"order": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					o, err := svc.Orders.Get(p.Context, id)
					if errors.Is(err, services.ErrNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return resource.One(resources.Order, o), nil
				},
			},
		},
	})
	return gqlhttp.NewSchema(query)
}
