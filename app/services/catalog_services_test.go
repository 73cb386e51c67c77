package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/app/services"
	"github.com/shashiranjanraj/bodega/pkg/testkit"
)

func ptr[T any](v T) *T { return &v }

func productBySKU(t *testing.T, db *gorm.DB, sku string) models.Product {
	t.Helper()
	var p models.Product
	require.NoError(t, db.Where("sku = ?", sku).First(&p).Error)
	return p
}

func brandByName(t *testing.T, db *gorm.DB, name string) models.Brand {
	t.Helper()
	var b models.Brand
	require.NoError(t, db.Where("name = ?", name).First(&b).Error)
	return b
}

func TestBrandCreateAndDuplicateName(t *testing.T) {
	testkit.DB(t, testkit.WithSample())
	ctx := context.Background()
	svc := services.NewBrandService()

	b, err := svc.Create(ctx, services.NameInput{Name: ptr("  Motorola ")})
	require.NoError(t, err)
	assert.Equal(t, "Motorola", b.Name)
	assert.True(t, b.IsActive)

	_, err = svc.Create(ctx, services.NameInput{Name: ptr("Samsung")})
	var ve *services.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "uniq_brand_name", ve.Field)
}

func TestBrandListPagination(t *testing.T) {
	testkit.DB(t, testkit.WithSample())
	svc := services.NewBrandService()

	all, err := svc.List(context.Background(), services.ListParams{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 5)
	assert.Nil(t, all.Pagination)
	assert.Equal(t, "Apple", all.Items[0].Name)

	page, err := svc.List(context.Background(), services.ListParams{Page: 2, PerPage: 2})
	require.NoError(t, err)
	require.NotNil(t, page.Pagination)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, "Samsung", page.Items[0].Name)
}

func TestBrandGetUnknownOrMalformedID(t *testing.T) {
	testkit.DB(t)
	svc := services.NewBrandService()

	_, err := svc.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = svc.Get(context.Background(), "8a4f1f8e-2c55-4c59-9d6e-6f1d2c7e9b10")
	assert.ErrorIs(t, err, services.ErrNotFound)

	err = svc.Delete(context.Background(), "8a4f1f8e-2c55-4c59-9d6e-6f1d2c7e9b10")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestBrandDeleteWithProductsConflicts(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())
	svc := services.NewBrandService()
	samsung := brandByName(t, db, "Samsung")

	err := svc.Delete(context.Background(), samsung.ID.String())
	var ce *services.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "brand", ce.Model)

	unused, err := svc.Create(context.Background(), services.NameInput{Name: ptr("Nokia")})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), unused.ID.String()))
}

func TestBrandProductsListsActiveOnly(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())
	ctx := context.Background()
	apple := brandByName(t, db, "Apple")
	ipad := productBySKU(t, db, "TABLET-APPLE-001")

	_, err := services.NewProductService().Update(ctx, ipad.ID.String(), services.ProductInput{IsActive: ptr(false)})
	require.NoError(t, err)

	products, err := services.NewBrandService().Products(ctx, apple.ID.String())
	require.NoError(t, err)
	require.Len(t, products, 2)
	for _, p := range products {
		assert.NotEqual(t, "TABLET-APPLE-001", p.SKU)
		assert.NotNil(t, p.Brand)
	}
}

func TestProductCreateValidatesReferences(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())
	ctx := context.Background()
	svc := services.NewProductService()
	sony := brandByName(t, db, "Sony")

	var tv models.Category
	require.NoError(t, db.Where("name = ?", "Televisores").First(&tv).Error)

	in := services.ProductInput{
		Name:     ptr("Sony Bravia 65"),
		SKU:      ptr("TV-SONY-002"),
		Price:    ptr(decimal.RequireFromString("1299.999")),
		Brand:    ptr(sony.ID.String()),
		Category: ptr("1b0f5c3e-0000-4000-8000-000000000000"),
	}
	_, err := svc.Create(ctx, in)
	var ve *services.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "category", ve.Field)

	in.Category = ptr(tv.ID.String())
	p, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "1300", p.Price.String())
	require.NotNil(t, p.Brand)
	assert.Equal(t, "Sony", p.Brand.Name)
	assert.Empty(t, p.Stocks)

	in.Name = ptr("Duplicate")
	_, err = svc.Create(ctx, in)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "uniq_product_sku", ve.Field)
}

func TestProductLowStock(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())
	svc := services.NewProductService()

	// LG Gram holds 30+40+50+60 units, every other product at least 220.
	low, err := svc.LowStock(context.Background(), 200)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "LAPTOP-LG-001", low[0].SKU)
	assert.Equal(t, 180, low[0].TotalStock())

	gram := productBySKU(t, db, "LAPTOP-LG-001")
	_, err = svc.Update(context.Background(), gram.ID.String(), services.ProductInput{IsActive: ptr(false)})
	require.NoError(t, err)

	low, err = svc.LowStock(context.Background(), 200)
	require.NoError(t, err)
	assert.Empty(t, low)
}

func TestProductSearch(t *testing.T) {
	testkit.DB(t, testkit.WithSample())
	svc := services.NewProductService()

	apple, err := svc.Search(context.Background(), services.ProductFilter{Brand: "APP"})
	require.NoError(t, err)
	assert.Len(t, apple, 3)

	one, err := svc.Search(context.Background(), services.ProductFilter{SKU: "TV-SONY-001", Active: ptr(true)})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, `Sony Bravia 55" 4K HDR TV`, one[0].Name)

	none, err := svc.Search(context.Background(), services.ProductFilter{Active: ptr(false)})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProductStockLargestFirst(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())
	gram := productBySKU(t, db, "LAPTOP-LG-001")

	stocks, err := services.NewProductService().Stock(context.Background(), gram.ID.String())
	require.NoError(t, err)
	require.Len(t, stocks, 4)
	assert.Equal(t, 60, stocks[0].Qty)
	assert.Equal(t, 30, stocks[3].Qty)
	assert.NotNil(t, stocks[0].Warehouse)
}
