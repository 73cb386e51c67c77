//go:build integration

package reports_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/bodega/app/reports"
	"github.com/shashiranjanraj/bodega/database/seeders"
	"github.com/shashiranjanraj/bodega/pkg/database"
	"github.com/shashiranjanraj/bodega/pkg/migration"

	_ "github.com/shashiranjanraj/bodega/database/migrations"
)

// postgresDB starts a throwaway postgres, migrates it (which installs the
// report functions) and loads the sample data.
func postgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("bodega"),
		postgres.WithUsername("bodega"),
		postgres.WithPassword("bodega"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := database.Open("postgres", dsn)
	require.NoError(t, err)

	_, err = migration.New(db).WithOutput(io.Discard).Run()
	require.NoError(t, err)
	_, err = seeders.Run(ctx, db, "sample")
	require.NoError(t, err)
	return db
}

func TestPostgresFunctionsMatchORM(t *testing.T) {
	db := postgresDB(t)
	svc := reports.NewService(db)

	cases := []struct {
		name  string
		query string
		want  []string
	}{
		{reports.ProductsByBrandCustomer, "brand=samsung&email=john@example.com",
			[]string{"PHONE-SAMSUNG-001", "TV-SAMSUNG-001"}},
		{reports.PaymentsByProductQuantity, "sku=TV-SAMSUNG-001",
			[]string{"TV-SAMSUNG-001", "TV-SAMSUNG-001"}},
		{reports.StockAnalysisReport, "warehouse=central&min_stock=100",
			[]string{"TV-SONY-001", "PHONE-XIAOMI-001", "TV-SAMSUNG-001"}},
		{reports.TopSelling, "limit=3",
			[]string{"TV-SAMSUNG-001", "PHONE-SAMSUNG-001", "LAPTOP-APPLE-001"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows := both(t, svc, tc.name, params(t, tc.name, tc.query))
			assert.Equal(t, tc.want, skus(rows))

			res, err := svc.Run(context.Background(), tc.name, reports.SourceSQL, params(t, tc.name, tc.query))
			require.NoError(t, err)
			assert.Contains(t, res.SQLQuery, "FROM get_")
		})
	}
}
