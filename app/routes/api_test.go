package routes_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/app/routes"
	"github.com/shashiranjanraj/bodega/app/services"
	"github.com/shashiranjanraj/bodega/config"
	"github.com/shashiranjanraj/bodega/database/seeders"
	"github.com/shashiranjanraj/bodega/pkg/app"
	"github.com/shashiranjanraj/bodega/pkg/testkit"
)

// server seeds a database and builds the API on top of it.
func server(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	db := testkit.DB(t, testkit.WithSample())
	return app.New().Routes(routes.RegisterAPI).Handler(), db
}

// withAuth turns the write guard on for handlers built afterwards.
func withAuth(t *testing.T) {
	t.Helper()
	old := config.Get("AUTH_ENABLED", "")
	config.Set("AUTH_ENABLED", "true")
	t.Cleanup(func() { config.Set("AUTH_ENABLED", old) })
}

type object = map[string]any

func idOf[T any](t *testing.T, db *gorm.DB, column, value string) string {
	t.Helper()
	var row struct{ ID uuid.UUID }
	var model T
	require.NoError(t, db.Model(&model).Where(column+" = ?", value).Select("id").Scan(&row).Error)
	require.NotEqual(t, uuid.Nil, row.ID, "%s = %s", column, value)
	return row.ID.String()
}

func TestBrandCRUD(t *testing.T) {
	h, _ := server(t)

	res := testkit.Call(t, h, http.MethodPost, "/api/brands", object{"name": "  Motorola "})
	res.AssertStatus(t, http.StatusCreated)
	var created object
	res.Data(t, &created)
	assert.Equal(t, "Motorola", created["name"])
	assert.Equal(t, true, created["is_active"])
	assert.EqualValues(t, 0, created["products_count"])
	id := created["id"].(string)

	res = testkit.Call(t, h, http.MethodPatch, "/api/brands/"+id, object{"is_active": false})
	res.AssertStatus(t, http.StatusOK)
	var patched object
	res.Data(t, &patched)
	assert.Equal(t, "Motorola", patched["name"])
	assert.Equal(t, false, patched["is_active"])

	// PUT needs the whole body
	res = testkit.Call(t, h, http.MethodPut, "/api/brands/"+id, object{"is_active": true})
	res.AssertStatus(t, http.StatusUnprocessableEntity)

	res = testkit.Call(t, h, http.MethodPut, "/api/brands/"+id, object{"name": "Moto", "is_active": true})
	res.AssertStatus(t, http.StatusOK)

	res = testkit.Call(t, h, http.MethodGet, "/api/brands/"+id, nil)
	res.AssertStatus(t, http.StatusOK)
	var shown object
	res.Data(t, &shown)
	assert.Equal(t, "Moto", shown["name"])

	testkit.Call(t, h, http.MethodDelete, "/api/brands/"+id, nil).AssertStatus(t, http.StatusNoContent)
	testkit.Call(t, h, http.MethodGet, "/api/brands/"+id, nil).AssertStatus(t, http.StatusNotFound)
}

func TestBrandListPaginates(t *testing.T) {
	h, _ := server(t)

	res := testkit.Call(t, h, http.MethodGet, "/api/brands?page=1&per_page=2", nil)
	res.AssertStatus(t, http.StatusOK)
	var page struct {
		Items      []object `json:"items"`
		Pagination struct {
			Page     int   `json:"page"`
			PerPage  int   `json:"per_page"`
			Total    int64 `json:"total"`
			LastPage int   `json:"last_page"`
		} `json:"pagination"`
	}
	res.Data(t, &page)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Apple", page.Items[0]["name"])
	assert.EqualValues(t, 3, page.Items[0]["products_count"])
	assert.EqualValues(t, 5, page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.LastPage)

	res = testkit.Call(t, h, http.MethodGet, "/api/brands?page=x", nil)
	res.AssertStatus(t, http.StatusBadRequest)
	assert.Equal(t, "page must be an integer", res.Envelope(t).Message)
}

func TestValidationAndBadJSON(t *testing.T) {
	h, _ := server(t)

	res := testkit.Call(t, h, http.MethodPost, "/api/products", object{"name": "Phone", "price": 0})
	res.AssertStatus(t, http.StatusUnprocessableEntity)
	env := res.Envelope(t)
	assert.Equal(t, "Validation failed", env.Message)
	var errs map[string]string
	require.NoError(t, json.Unmarshal(env.Errors, &errs))
	assert.Contains(t, errs, "sku")
	assert.Contains(t, errs, "price")
	assert.Contains(t, errs, "brand")
	assert.NotContains(t, errs, "name")

	testkit.Call(t, h, http.MethodPost, "/api/brands", `{"name":`).AssertStatus(t, http.StatusBadRequest)

	// a service rule, not a binding rule
	res = testkit.Call(t, h, http.MethodPost, "/api/brands", object{"name": "Apple"})
	res.AssertStatus(t, http.StatusBadRequest)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h, _ := server(t)

	res := testkit.Call(t, h, http.MethodGet, "/api/suppliers", nil)
	res.AssertStatus(t, http.StatusNotFound)
	assert.Equal(t, "route not found", res.Envelope(t).Message)

	res = testkit.Call(t, h, http.MethodDelete, "/api/brands", nil)
	res.AssertStatus(t, http.StatusMethodNotAllowed)
	assert.Equal(t, "method not allowed", res.Envelope(t).Message)

	res = testkit.Call(t, h, http.MethodGet, "/api/brands/"+uuid.NewString(), nil)
	res.AssertStatus(t, http.StatusNotFound)
	assert.Equal(t, "Not found", res.Envelope(t).Message)
}

func TestBrandInUseConflicts(t *testing.T) {
	h, db := server(t)
	apple := idOf[models.Brand](t, db, "name", "Apple")

	res := testkit.Call(t, h, http.MethodDelete, "/api/brands/"+apple, nil)
	res.AssertStatus(t, http.StatusConflict)

	testkit.Call(t, h, http.MethodGet, "/api/brands/"+apple, nil).AssertStatus(t, http.StatusOK)
}

func TestOrderLifecycle(t *testing.T) {
	h, db := server(t)
	jane := idOf[models.Customer](t, db, "email", "jane@example.com")
	ipad := idOf[models.Product](t, db, "sku", "TABLET-APPLE-001")

	res := testkit.Call(t, h, http.MethodPost, "/api/orders", object{
		"customer": jane,
		"items":    []object{{"product": ipad, "qty": 2}},
	})
	res.AssertStatus(t, http.StatusCreated)
	var order object
	res.Data(t, &order)
	assert.Equal(t, models.OrderPending, order["status"])
	assert.Equal(t, "2199.98", order["total_amount"])
	assert.EqualValues(t, 2, order["total_items"])
	id := order["id"].(string)

	res = testkit.Call(t, h, http.MethodPost, "/api/orders/"+id+"/confirm", nil)
	res.AssertStatus(t, http.StatusOK)
	res.Data(t, &order)
	assert.Equal(t, models.OrderConfirmed, order["status"])

	res = testkit.Call(t, h, http.MethodPost, "/api/orders/"+id+"/confirm", nil)
	res.AssertStatus(t, http.StatusBadRequest)

	res = testkit.Call(t, h, http.MethodPost, "/api/payments", object{
		"method": models.MethodCard, "amount": 100, "order": id,
	})
	res.AssertStatus(t, http.StatusBadRequest)

	res = testkit.Call(t, h, http.MethodPost, "/api/payments", object{
		"method": models.MethodCard, "amount": "2199.98", "order": id,
	})
	res.AssertStatus(t, http.StatusCreated)
	var payment object
	res.Data(t, &payment)
	assert.Equal(t, models.PaymentPending, payment["status"])

	res = testkit.Call(t, h, http.MethodPost, "/api/payments/"+payment["id"].(string)+"/confirm", nil)
	res.AssertStatus(t, http.StatusOK)
	res.Data(t, &payment)
	assert.Equal(t, models.PaymentConfirmed, payment["status"])
	assert.Equal(t, id, payment["order_id"])
}

func TestOrderNotEnoughStock(t *testing.T) {
	h, db := server(t)
	jane := idOf[models.Customer](t, db, "email", "jane@example.com")
	gram := idOf[models.Product](t, db, "sku", "LAPTOP-LG-001")

	res := testkit.Call(t, h, http.MethodPost, "/api/orders", object{
		"customer": jane,
		"items":    []object{{"product": gram, "qty": 1000}},
	})
	res.AssertStatus(t, http.StatusBadRequest)
	assert.Contains(t, res.Envelope(t).Message, "not enough stock")
}

func TestLowStockEndpoint(t *testing.T) {
	h, _ := server(t)

	res := testkit.Call(t, h, http.MethodGet, "/api/products/low_stock?threshold=200", nil)
	res.AssertStatus(t, http.StatusOK)
	var items []object
	res.Data(t, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "LAPTOP-LG-001", items[0]["sku"])
	assert.EqualValues(t, 180, items[0]["total_stock"])

	testkit.Call(t, h, http.MethodGet, "/api/products/low_stock?threshold=few", nil).
		AssertStatus(t, http.StatusBadRequest)
}

func TestNestedListings(t *testing.T) {
	h, db := server(t)
	john := idOf[models.Customer](t, db, "email", "john@example.com")
	central := idOf[models.Warehouse](t, db, "name", "Bodega Central")

	var orders []object
	res := testkit.Call(t, h, http.MethodGet, "/api/customers/"+john+"/orders", nil)
	res.AssertStatus(t, http.StatusOK)
	res.Data(t, &orders)
	assert.Len(t, orders, 2)

	var stock []object
	res = testkit.Call(t, h, http.MethodGet, "/api/warehouses/"+central+"/stock", nil)
	res.AssertStatus(t, http.StatusOK)
	res.Data(t, &stock)
	assert.Len(t, stock, 10)
}

func TestGetRelated(t *testing.T) {
	h, _ := server(t)

	q := url.Values{}
	q.Set("join", "brand")
	q.Set("filter[brand]", "name=Apple")
	q.Set("fields[product]", "sku")
	res := testkit.Call(t, h, http.MethodGet, "/api/products/get_related?"+q.Encode(), nil)
	res.AssertStatus(t, http.StatusOK)
	var out struct {
		Count    int      `json:"count"`
		Results  []object `json:"results"`
		SQLQuery string   `json:"sql_query"`
	}
	res.Data(t, &out)
	assert.Equal(t, 3, out.Count)
	assert.Equal(t, []string{"sku"}, keys(out.Results[0]))
	assert.NotEmpty(t, out.SQLQuery)

	q = url.Values{}
	q.Set("filter[supplier]", "name=Acme")
	res = testkit.Call(t, h, http.MethodGet, "/api/brands/get_related?"+q.Encode(), nil)
	res.AssertStatus(t, http.StatusBadRequest)
	var bare map[string]string
	res.Decode(t, &bare)
	assert.NotEmpty(t, bare["error"])
}

func TestReportsEndpoint(t *testing.T) {
	h, _ := server(t)

	res := testkit.Call(t, h, http.MethodGet, "/api/reports/stock-analysis?warehouse=central&min_stock=100&source=sql", nil)
	res.AssertStatus(t, http.StatusOK)
	var out struct {
		Report string `json:"report"`
		Source string `json:"source"`
		Count  int    `json:"count"`
	}
	res.Data(t, &out)
	assert.Equal(t, "stock-analysis", out.Report)
	assert.Equal(t, "sql", out.Source)
	assert.Equal(t, 3, out.Count)

	res = testkit.Call(t, h, http.MethodGet, "/api/reports/top-selling?limit=500", nil)
	res.AssertStatus(t, http.StatusUnprocessableEntity)
	var errs map[string]string
	require.NoError(t, json.Unmarshal(res.Envelope(t).Errors, &errs))
	assert.Contains(t, errs, "limit")

	res = testkit.Call(t, h, http.MethodGet, "/api/reports/revenue", nil)
	res.AssertStatus(t, http.StatusNotFound)
	assert.Equal(t, "unknown report", res.Envelope(t).Message)

	testkit.Call(t, h, http.MethodGet, "/api/reports/top-selling?source=graphql", nil).
		AssertStatus(t, http.StatusUnprocessableEntity)
}

func TestWriteGuard(t *testing.T) {
	withAuth(t)
	h, _ := server(t)

	// reads stay public
	testkit.Call(t, h, http.MethodGet, "/api/brands", nil).AssertStatus(t, http.StatusOK)
	testkit.Call(t, h, http.MethodPost, "/api/brands", object{"name": "Motorola"}).
		AssertStatus(t, http.StatusUnauthorized)
	testkit.Call(t, h, http.MethodPost, "/api/brands", object{"name": "Motorola"}, testkit.Bearer("garbage")...).
		AssertStatus(t, http.StatusUnauthorized)

	res := testkit.Call(t, h, http.MethodPost, "/api/auth/login", object{
		"email": seeders.AdminEmail, "password": "wrong",
	})
	res.AssertStatus(t, http.StatusUnauthorized)

	res = testkit.Call(t, h, http.MethodPost, "/api/auth/login", object{
		"email": seeders.AdminEmail, "password": config.AdminPassword(),
	})
	res.AssertStatus(t, http.StatusOK)
	var admin struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	res.Data(t, &admin)
	require.NotEmpty(t, admin.AccessToken)
	assert.Positive(t, admin.ExpiresIn)

	res = testkit.Call(t, h, http.MethodGet, "/api/auth/me", nil, testkit.Bearer(admin.AccessToken)...)
	res.AssertStatus(t, http.StatusOK)
	var me object
	res.Data(t, &me)
	assert.Equal(t, seeders.AdminEmail, me["email"])
	assert.Equal(t, models.RoleAdmin, me["role"])

	res = testkit.Call(t, h, http.MethodPost, "/api/auth/refresh", object{"refresh_token": admin.RefreshToken})
	res.AssertStatus(t, http.StatusOK)
	testkit.Call(t, h, http.MethodPost, "/api/auth/refresh", object{"refresh_token": admin.AccessToken}).
		AssertStatus(t, http.StatusUnauthorized)

	ctx := context.Background()
	authSvc := services.NewAuthService()
	_, err := authSvc.CreateUser(ctx, "Operator", "op@example.com", "s3cret-pass", models.RoleOperator)
	require.NoError(t, err)
	op, err := authSvc.IssueFor(ctx, "op@example.com")
	require.NoError(t, err)

	res = testkit.Call(t, h, http.MethodPost, "/api/brands", object{"name": "Motorola"}, testkit.Bearer(op.AccessToken)...)
	res.AssertStatus(t, http.StatusCreated)
	var brand object
	res.Data(t, &brand)
	id := brand["id"].(string)

	testkit.Call(t, h, http.MethodDelete, "/api/brands/"+id, nil, testkit.Bearer(op.AccessToken)...).
		AssertStatus(t, http.StatusForbidden)
	testkit.Call(t, h, http.MethodDelete, "/api/brands/"+id, nil, testkit.Bearer(admin.AccessToken)...).
		AssertStatus(t, http.StatusNoContent)
}

func keys(m object) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
