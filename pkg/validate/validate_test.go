package validate_test

import (
	"testing"

	"github.com/shashiranjanraj/bodega/pkg/validate"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type itemInput struct {
	Product   string           `json:"product"    validate:"required,uuid"`
	Qty       int              `json:"qty"        validate:"required,gte=1"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"nullable,gte=0.01"`
}

type orderInput struct {
	Customer string      `json:"customer" validate:"required,uuid"`
	Status   string      `json:"status"   validate:"nullable,in=PENDING,CONFIRMED,CANCELED"`
	Items    []itemInput `json:"items"    validate:"required,dive"`
}

type productPatch struct {
	Name  *string          `json:"name"  validate:"required,max=200"`
	SKU   *string          `json:"sku"   validate:"required,max=50"`
	Price *decimal.Decimal `json:"price" validate:"required,gte=0.01"`
}

func ptr[T any](v T) *T { return &v }

const productID = "7d3f4c1a-2b5e-4f60-9a7b-8c9d0e1f2a3b"

func TestOrderInputValid(t *testing.T) {
	errs := validate.Struct(orderInput{
		Customer: "0b6c1c1e-8f5e-4c43-9a39-5b1f0b0e7a11",
		Items:    []itemInput{{Product: productID, Qty: 2}},
	})
	assert.Empty(t, errs)
}

func TestRequiredAndDive(t *testing.T) {
	errs := validate.Struct(orderInput{})
	assert.Contains(t, errs, "customer")
	assert.Contains(t, errs, "items")

	errs = validate.Struct(orderInput{
		Customer: "not-a-uuid",
		Items: []itemInput{
			{Product: productID, Qty: 0},
			{Product: productID, Qty: 1, UnitPrice: ptr(decimal.RequireFromString("0.001"))},
		},
	})
	assert.Equal(t, "The customer must be a valid UUID.", errs["customer"])
	assert.Contains(t, errs, "items.0.qty")
	assert.Contains(t, errs, "items.1.unit_price")
	assert.NotContains(t, errs, "items.0.unit_price")
}

func TestInRule(t *testing.T) {
	base := orderInput{Customer: "0b6c1c1e-8f5e-4c43-9a39-5b1f0b0e7a11", Items: []itemInput{{Product: productID, Qty: 1}}}

	base.Status = "SHIPPED"
	assert.Contains(t, validate.Struct(base), "status")

	base.Status = "CANCELED"
	assert.Empty(t, validate.Struct(base))
}

func TestDecimalBounds(t *testing.T) {
	errs := validate.Struct(productPatch{
		Name:  ptr("TV"),
		SKU:   ptr("TV-1"),
		Price: ptr(decimal.Zero),
	})
	assert.Contains(t, errs, "price")

	errs = validate.Struct(productPatch{
		Name:  ptr("TV"),
		SKU:   ptr("TV-1"),
		Price: ptr(decimal.RequireFromString("0.01")),
	})
	assert.Empty(t, errs)
}

func TestPartialSkipsAbsentFields(t *testing.T) {
	assert.Len(t, validate.Struct(productPatch{}), 3)
	assert.Empty(t, validate.Partial(productPatch{}))

	errs := validate.Partial(productPatch{SKU: ptr("")})
	assert.Equal(t, map[string]string{"sku": "The sku field is required."}, errs)

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'a'
	}
	errs = validate.Partial(productPatch{Name: ptr(string(long))})
	assert.Contains(t, errs, "name")
}

func TestEmailRule(t *testing.T) {
	type in struct {
		Email string `json:"email" validate:"required,email"`
	}
	assert.Contains(t, validate.Struct(in{Email: "john@"}), "email")
	assert.Empty(t, validate.Struct(in{Email: "john@example.com"}))
}

func TestSliceLengthBounds(t *testing.T) {
	type batch struct {
		SKUs []string `json:"skus" validate:"required,min=2,max=3"`
	}
	assert.Equal(t, "The skus must have at least 2 items.", validate.Struct(batch{SKUs: []string{"A"}})["skus"])
	assert.Contains(t, validate.Struct(batch{SKUs: []string{"A", "B", "C", "D"}}), "skus")
	assert.Empty(t, validate.Struct(batch{SKUs: []string{"A", "B"}}))
}

func TestMalformedTagPanics(t *testing.T) {
	type unknown struct {
		Name string `json:"name" validate:"required,slug"`
	}
	type textBound struct {
		Name string `json:"name" validate:"gte=3"`
	}
	assert.Panics(t, func() { validate.Struct(unknown{Name: "x"}) })
	assert.Panics(t, func() { validate.Struct(textBound{Name: "x"}) })
}
