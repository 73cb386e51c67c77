package seeders_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bodega/app/models"
	"github.com/shashiranjanraj/bodega/database/seeders"
	"github.com/shashiranjanraj/bodega/pkg/testkit"
)

func TestSampleCounts(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())

	rows, err := seeders.Counts(context.Background(), db)
	require.NoError(t, err)
	got := map[string]int64{}
	for _, r := range rows {
		got[r.Table] = r.Rows
	}
	assert.Equal(t, map[string]int64{
		"inventory_brand":     5,
		"inventory_category":  5,
		"inventory_product":   10,
		"inventory_warehouse": 4,
		"inventory_stock":     40,
		"inventory_customer":  5,
		"inventory_order":     6,
		"inventory_orderitem": 9,
		"inventory_payment":   4,
	}, got)
	assert.Equal(t, "inventory_brand", rows[0].Table)

	var admin models.User
	require.NoError(t, db.Where("email = ?", seeders.AdminEmail).First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
}

func TestSampleStockNeverOverReserved(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())

	var bad int64
	require.NoError(t, db.Model(&models.Stock{}).Where("reserved > qty").Count(&bad).Error)
	assert.Zero(t, bad)
}

func TestClearKeepsOperators(t *testing.T) {
	db := testkit.DB(t, testkit.WithSample())
	ctx := context.Background()

	require.NoError(t, seeders.Clear(ctx, db))
	rows, err := seeders.Counts(ctx, db)
	require.NoError(t, err)
	for _, r := range rows {
		assert.Zero(t, r.Rows, r.Table)
	}

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, 1, users)
}

func TestRunUnknownSeeder(t *testing.T) {
	db := testkit.DB(t)

	assert.Contains(t, seeders.Names(), "sample")
	_, err := seeders.Run(context.Background(), db, "nope")
	assert.ErrorContains(t, err, `seeder "nope" is not registered`)
}
