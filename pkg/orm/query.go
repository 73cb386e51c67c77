package orm

import (
	"context"
	"math"
	"time"

	"github.com/shashiranjanraj/bodega/pkg/cache"
	"github.com/shashiranjanraj/bodega/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Query is a small fluent wrapper over *gorm.DB.
type Query struct {
	db *gorm.DB
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

const (
	defaultPerPage = 20
	maxPerPage     = 200
)

// DB starts a query on the global connection.
func DB() *Query {
	return &Query{db: database.DB}
}

// Use starts a query on db, typically a transaction.
func Use(db *gorm.DB) *Query {
	return &Query{db: db}
}

// WithContext binds ctx to the query for cancellation and request-scoped
// logging.
func (q *Query) WithContext(ctx context.Context) *Query {
	return &Query{db: q.db.WithContext(ctx)}
}

// Gorm exposes the underlying handle.
func (q *Query) Gorm() *gorm.DB { return q.db }

func (q *Query) Model(v interface{}) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query interface{}, args ...interface{}) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

func (q *Query) Joins(query string, args ...interface{}) *Query {
	return &Query{db: q.db.Joins(query, args...)}
}

func (q *Query) Preload(path string, args ...interface{}) *Query {
	return &Query{db: q.db.Preload(path, args...)}
}

func (q *Query) Order(value interface{}) *Query {
	return &Query{db: q.db.Order(value)}
}

func (q *Query) Limit(n int) *Query {
	return &Query{db: q.db.Limit(n)}
}

// ForUpdate adds a row lock where the dialect supports one. SQLite
// serialises writers on its own and rejects the clause.
func (q *Query) ForUpdate() *Query {
	if database.Dialect(q.db) == "sqlite" {
		return q
	}
	return &Query{db: q.db.Clauses(clause.Locking{Strength: "UPDATE"})}
}

func (q *Query) Get(dest interface{}) error {
	return q.db.Find(dest).Error
}

func (q *Query) First(dest interface{}) error {
	return q.db.First(dest).Error
}

func (q *Query) Count() (int64, error) {
	var n int64
	err := q.db.Count(&n).Error
	return n, err
}

func (q *Query) Create(v interface{}) error {
	return q.db.Create(v).Error
}

func (q *Query) Save(v interface{}) error {
	return q.db.Save(v).Error
}

// Updates writes only the given columns.
func (q *Query) Updates(values map[string]interface{}) error {
	return q.db.Updates(values).Error
}

// Delete removes v by primary key. Returns gorm.ErrRecordNotFound when no
// row was affected.
func (q *Query) Delete(v interface{}) error {
	res := q.db.Delete(v)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Transaction runs fn in a transaction, passing a Query bound to it.
func (q *Query) Transaction(fn func(tx *Query) error) error {
	return q.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Query{db: tx})
	})
}

// GetWithPagination counts the matching rows and loads one page into dest.
// page starts at 1; perPage is clamped to [1, 200].
func (q *Query) GetWithPagination(dest interface{}, page, perPage int) (Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	var total int64
	if err := q.db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Pagination{}, err
	}

	if err := q.db.Offset((page - 1) * perPage).Limit(perPage).Find(dest).Error; err != nil {
		return Pagination{}, err
	}

	return Pagination{
		Page:     page,
		PerPage:  perPage,
		Total:    total,
		LastPage: int(math.Max(1, math.Ceil(float64(total)/float64(perPage)))),
	}, nil
}

// Cache loads dest from redis under key, or runs the query and caches the
// result for ttl.
func (q *Query) Cache(key string, ttl time.Duration, dest interface{}) error {
	ctx := q.db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if cache.Get(ctx, key, dest) {
		return nil
	}

	if err := q.db.Find(dest).Error; err != nil {
		return err
	}

	_ = cache.Set(ctx, key, dest, ttl)
	return nil
}
