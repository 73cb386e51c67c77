// Package testkit holds the helpers shared by bodega's tests: a migrated
// in-memory database per test, an httptest client that decodes the response
// envelope, and a transport that captures outgoing HTTP calls.
package testkit

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/bodega/database/seeders"
	"github.com/shashiranjanraj/bodega/pkg/database"
	"github.com/shashiranjanraj/bodega/pkg/event"
	"github.com/shashiranjanraj/bodega/pkg/migration"

	_ "github.com/shashiranjanraj/bodega/database/migrations"
)

type dbOptions struct {
	sample bool
}

// Option tweaks DB.
type Option func(*dbOptions)

// WithSample loads the sample seeder after migrating.
func WithSample() Option { return func(o *dbOptions) { o.sample = true } }

// DB opens a fresh shared-cache in-memory sqlite database, runs every
// migration on it and installs it as database.DB for the duration of the
// test. The default event bus is reset so listeners do not leak between
// tests.
func DB(t testing.TB, opts ...Option) *gorm.DB {
	t.Helper()
	var o dbOptions
	for _, fn := range opts {
		fn(&o)
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)

	_, err = migration.New(db).WithOutput(io.Discard).Run()
	require.NoError(t, err, "migrate test database")

	if o.sample {
		_, err = seeders.Run(context.Background(), db, "sample")
		require.NoError(t, err, "seed test database")
	}

	prev := database.DB
	database.DB = db
	event.Default().Flush()
	t.Cleanup(func() {
		database.DB = prev
		event.Default().Flush()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
