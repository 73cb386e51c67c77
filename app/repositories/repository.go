// Package repositories holds the data access of the inventory models. A
// repository never interprets errors; services map them to API errors.
package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/bodega/pkg/orm"
	"gorm.io/gorm"
)

// Preload names a relation loaded with every read, optionally with
// conditions or a func(*gorm.DB) *gorm.DB scope.
type Preload struct {
	Path string
	Args []any
}

// Repository is the CRUD access of one model type.
type Repository[T any] struct {
	order    string
	preloads []Preload
	db       *gorm.DB
}

// New returns a repository on the global connection. order is the model's
// default ORDER BY.
func New[T any](order string, preloads ...Preload) *Repository[T] {
	return &Repository[T]{order: order, preloads: preloads}
}

// WithDB binds the repository to db, typically a transaction.
func (r *Repository[T]) WithDB(db *gorm.DB) *Repository[T] {
	cp := *r
	cp.db = db
	return &cp
}

// Order is the default ordering clause.
func (r *Repository[T]) Order() string { return r.order }

// Query starts an ordered query with the default preloads applied.
func (r *Repository[T]) Query(ctx context.Context) *orm.Query {
	q := orm.DB()
	if r.db != nil {
		q = orm.Use(r.db)
	}
	q = q.WithContext(ctx).Model(new(T))
	for _, p := range r.preloads {
		q = q.Preload(p.Path, p.Args...)
	}
	if r.order != "" {
		q = q.Order(r.order)
	}
	return q
}

func (r *Repository[T]) All(ctx context.Context) ([]T, error) {
	var out []T
	err := r.Query(ctx).Get(&out)
	return out, err
}

// Where lists the rows matching query in default order.
func (r *Repository[T]) Where(ctx context.Context, query any, args ...any) ([]T, error) {
	var out []T
	err := r.Query(ctx).Where(query, args...).Get(&out)
	return out, err
}

// Paginate loads one page in default order.
func (r *Repository[T]) Paginate(ctx context.Context, page, perPage int) ([]T, orm.Pagination, error) {
	var out []T
	p, err := r.Query(ctx).GetWithPagination(&out, page, perPage)
	return out, p, err
}

// Find loads one row by primary key. Returns gorm.ErrRecordNotFound when
// there is none.
func (r *Repository[T]) Find(ctx context.Context, id uuid.UUID) (*T, error) {
	var out T
	if err := r.Query(ctx).Where("id = ?", id).First(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Exists reports whether a row with id exists.
func (r *Repository[T]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := r.plain(ctx).Where("id = ?", id).Count()
	return n > 0, err
}

func (r *Repository[T]) Create(ctx context.Context, v *T) error {
	return r.plain(ctx).Create(v)
}

// Update writes the given columns of the row with id.
func (r *Repository[T]) Update(ctx context.Context, id uuid.UUID, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	return r.plain(ctx).Where("id = ?", id).Updates(values)
}

// Delete removes the row with id. Returns gorm.ErrRecordNotFound when
// nothing was deleted.
func (r *Repository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	return r.plain(ctx).Where("id = ?", id).Delete(new(T))
}

// plain is a query without preloads or ordering, for writes and counts.
func (r *Repository[T]) plain(ctx context.Context) *orm.Query {
	q := orm.DB()
	if r.db != nil {
		q = orm.Use(r.db)
	}
	return q.WithContext(ctx).Model(new(T))
}
