// Package reports runs the four inventory reports through two sources: the
// gorm query builder ("orm") and hand-written SQL executed with sqlx ("sql").
// On postgres the sql source calls the installed plpgsql functions; other
// dialects run the same SELECT inline.
package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/bodega/config"
	"github.com/shashiranjanraj/bodega/pkg/cache"
	"github.com/shashiranjanraj/bodega/pkg/database"
	"github.com/shashiranjanraj/bodega/pkg/logger"
	"github.com/shashiranjanraj/bodega/pkg/metrics"
	"gorm.io/gorm"
)

// Report names as used in URLs and on the command line.
const (
	ProductsByBrandCustomer   = "products-by-brand-customer"
	PaymentsByProductQuantity = "payments-by-product-quantity"
	StockAnalysisReport       = "stock-analysis"
	TopSelling                = "top-selling"
)

// Names lists every report.
var Names = []string{ProductsByBrandCustomer, PaymentsByProductQuantity, StockAnalysisReport, TopSelling}

type Source string

const (
	SourceORM Source = "orm"
	SourceSQL Source = "sql"
)

var (
	ErrUnknownReport     = errors.New("unknown report")
	ErrUnsupportedSource = errors.New("source=sql is not supported on this database driver")
)

// ParseSource accepts "", "orm" or "sql".
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case "", SourceORM:
		return SourceORM, nil
	case SourceSQL:
		return SourceSQL, nil
	}
	return "", &ParamError{Field: "source", Message: "must be orm or sql"}
}

// Result is the response of one report run.
type Result struct {
	Report   string `json:"report"`
	Source   Source `json:"source"`
	Count    int    `json:"count"`
	Results  any    `json:"results"`
	SQLQuery string `json:"sql_query"`
}

// Service runs reports against one database.
type Service struct {
	db  *gorm.DB
	ttl time.Duration
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		db:  db,
		ttl: time.Duration(config.ReportCacheTTLSeconds()) * time.Second,
	}
}

// Run executes report name from source.
func (s *Service) Run(ctx context.Context, name string, source Source, p Params) (*Result, error) {
	r, ok := registry[name]
	if !ok {
		return nil, ErrUnknownReport
	}

	start := time.Now()
	var (
		res *Result
		err error
	)
	switch source {
	case SourceSQL:
		res, err = r.runSQL(ctx, s.db, p)
	default:
		source = SourceORM
		res, err = r.runORM(ctx, s.db, p, s.ttl)
	}
	if err != nil {
		return nil, err
	}
	metrics.ObserveReport(name, string(source), start)
	logger.WithCtx(ctx).Debug("report executed",
		"report", name, "source", source, "rows", res.Count, "elapsed", time.Since(start))
	return res, nil
}

type runner interface {
	runORM(ctx context.Context, db *gorm.DB, p Params, ttl time.Duration) (*Result, error)
	runSQL(ctx context.Context, db *gorm.DB, p Params) (*Result, error)
}

// definition ties one report's row type to its three query forms.
type definition[T any] struct {
	name string
	// orm builds the gorm query; the caller finishes it with Find.
	orm func(db *gorm.DB, p Params) *gorm.DB
	// inline is the portable SELECT with ? placeholders.
	inline func(p Params) (string, []any)
	// call invokes the postgres function with ? placeholders.
	call func(p Params) (string, []any)
}

func (d definition[T]) runORM(ctx context.Context, db *gorm.DB, p Params, ttl time.Duration) (*Result, error) {
	query := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []T
		return d.orm(tx, p).Find(&rows)
	})

	key := "report:" + d.name + ":" + p.cacheKey()
	rows, err := cache.Remember(ctx, key, ttl, func() ([]T, error) {
		var rows []T
		err := d.orm(db.WithContext(ctx), p).Find(&rows).Error
		return rows, err
	})
	if err != nil {
		return nil, fmt.Errorf("reports: %s orm: %w", d.name, err)
	}
	return newResult(d.name, SourceORM, rows, query), nil
}

func (d definition[T]) runSQL(ctx context.Context, db *gorm.DB, p Params) (*Result, error) {
	var (
		query string
		args  []any
	)
	switch database.Dialect(db) {
	case "postgres":
		query, args = d.call(p)
	case "sqlite", "mysql":
		query, args = d.inline(p)
	default:
		return nil, ErrUnsupportedSource
	}

	x, err := database.SQLX(db)
	if err != nil {
		return nil, err
	}
	query = x.Rebind(query)

	var rows []T
	if err := x.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("reports: %s sql: %w", d.name, err)
	}
	return newResult(d.name, SourceSQL, rows, query), nil
}

func newResult[T any](name string, source Source, rows []T, query string) *Result {
	if rows == nil {
		rows = []T{}
	}
	return &Result{Report: name, Source: source, Count: len(rows), Results: rows, SQLQuery: query}
}

var registry = map[string]runner{
	ProductsByBrandCustomer: definition[ProductByBrandCustomer]{
		name:   ProductsByBrandCustomer,
		orm:    productsByBrandCustomerORM,
		inline: productsByBrandCustomerSQL,
		call: func(p Params) (string, []any) {
			return "SELECT * FROM get_products_by_brand_and_customer(?, ?)", []any{p.Brand, p.Email}
		},
	},
	PaymentsByProductQuantity: definition[PaymentByProductQuantity]{
		name:   PaymentsByProductQuantity,
		orm:    paymentsByProductQuantityORM,
		inline: paymentsByProductQuantitySQL,
		call: func(p Params) (string, []any) {
			return "SELECT * FROM get_payments_by_product_quantity(?, ?)", []any{p.SKU, p.MinQuantity}
		},
	},
	StockAnalysisReport: definition[StockAnalysis]{
		name:   StockAnalysisReport,
		orm:    stockAnalysisORM,
		inline: stockAnalysisSQL,
		call: func(p Params) (string, []any) {
			var warehouse any
			if p.Warehouse != "" {
				warehouse = p.Warehouse
			}
			return "SELECT * FROM get_stock_analysis(?, ?)", []any{warehouse, p.MinStock}
		},
	},
	TopSelling: definition[TopSellingProduct]{
		name:   TopSelling,
		orm:    topSellingORM,
		inline: topSellingSQL,
		call: func(p Params) (string, []any) {
			return "SELECT * FROM get_top_selling_products(?, ?, ?)", []any{p.Limit, dateArg(p.StartDate), dateArg(p.EndDate)}
		},
	},
}

func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}
