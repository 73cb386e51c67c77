// Package seeders fills the database with data. Seeders register
// themselves from init():
//
//	func init() { seeders.Register("sample", Sample) }
//
// and run via `bodega seed`, all inside one transaction.
package seeders

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/bodega/app/models"
	"gorm.io/gorm"
)

// SeederFunc inserts rows through tx.
type SeederFunc func(tx *gorm.DB) error

type entry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []entry
)

// Register adds a seeder. Seeders run in registration order.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, entry{name: name, fn: fn})
}

// Names lists the registered seeders.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.name
	}
	return out
}

// Run executes the named seeders, or all of them when only is empty, in a
// single transaction. It returns the names that ran.
func Run(ctx context.Context, db *gorm.DB, only ...string) ([]string, error) {
	mu.Lock()
	current := make([]entry, len(entries))
	copy(current, entries)
	mu.Unlock()

	want := map[string]bool{}
	for _, n := range only {
		want[n] = true
	}

	var ran []string
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range current {
			if len(want) > 0 && !want[e.name] {
				continue
			}
			if err := e.fn(tx); err != nil {
				return fmt.Errorf("seeder %q: %w", e.name, err)
			}
			ran = append(ran, e.name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for n := range want {
		if !contains(ran, n) {
			return ran, fmt.Errorf("seeder %q is not registered", n)
		}
	}
	return ran, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// inventory tables, children first
var clearOrder = []any{
	&models.Payment{},
	&models.OrderItem{},
	&models.Order{},
	&models.Stock{},
	&models.Product{},
	&models.Customer{},
	&models.Warehouse{},
	&models.Category{},
	&models.Brand{},
}

// Clear deletes every inventory row. Operator accounts are kept.
func Clear(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range clearOrder {
			if err := tx.Where("1 = 1").Delete(m).Error; err != nil {
				return fmt.Errorf("clear %T: %w", m, err)
			}
		}
		return nil
	})
}

// Count is one line of the post-seed summary.
type Count struct {
	Table string
	Rows  int64
}

// Counts reports the number of rows per inventory table, parents first.
func Counts(ctx context.Context, db *gorm.DB) ([]Count, error) {
	out := make([]Count, 0, len(clearOrder))
	for i := len(clearOrder) - 1; i >= 0; i-- {
		m := clearOrder[i]
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, err
		}
		var n int64
		if err := db.WithContext(ctx).Model(m).Count(&n).Error; err != nil {
			return nil, err
		}
		out = append(out, Count{Table: stmt.Schema.Table, Rows: n})
	}
	return out, nil
}
