package reports

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Params holds the arguments of every report; each report reads the ones it
// needs.
type Params struct {
	Brand       string
	Email       string
	SKU         string
	MinQuantity int
	Warehouse   string
	MinStock    int
	Limit       int
	StartDate   *time.Time
	EndDate     *time.Time
}

// ParamError is a missing or malformed report argument.
type ParamError struct {
	Field   string
	Message string
}

func (e *ParamError) Error() string { return e.Field + ": " + e.Message }

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
	dateLayout      = "2006-01-02"
)

// ParseParams reads the arguments of report name from query values.
func ParseParams(name string, q url.Values) (Params, error) {
	var p Params
	var err error

	switch name {
	case ProductsByBrandCustomer:
		if p.Brand, err = required(q, "brand"); err != nil {
			return p, err
		}
		if p.Email, err = required(q, "email"); err != nil {
			return p, err
		}
	case PaymentsByProductQuantity:
		if p.SKU, err = required(q, "sku"); err != nil {
			return p, err
		}
		if p.MinQuantity, err = intParam(q, "min_quantity", 1, 1); err != nil {
			return p, err
		}
	case StockAnalysisReport:
		p.Warehouse = strings.TrimSpace(q.Get("warehouse"))
		if p.MinStock, err = intParam(q, "min_stock", 0, 0); err != nil {
			return p, err
		}
	case TopSelling:
		if p.Limit, err = intParam(q, "limit", defaultTopLimit, 1); err != nil {
			return p, err
		}
		if p.Limit > maxTopLimit {
			return p, &ParamError{Field: "limit", Message: fmt.Sprintf("must be at most %d", maxTopLimit)}
		}
		if p.StartDate, err = dateParam(q, "start_date"); err != nil {
			return p, err
		}
		if p.EndDate, err = dateParam(q, "end_date"); err != nil {
			return p, err
		}
		if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
			return p, &ParamError{Field: "end_date", Message: "must not be before start_date"}
		}
	default:
		return p, ErrUnknownReport
	}
	return p, nil
}

// cacheKey is stable for equal params.
func (p Params) cacheKey() string {
	v := url.Values{}
	v.Set("brand", strings.ToLower(p.Brand))
	v.Set("email", p.Email)
	v.Set("sku", p.SKU)
	v.Set("min_quantity", strconv.Itoa(p.MinQuantity))
	v.Set("warehouse", strings.ToLower(p.Warehouse))
	v.Set("min_stock", strconv.Itoa(p.MinStock))
	v.Set("limit", strconv.Itoa(p.Limit))
	if p.StartDate != nil {
		v.Set("start_date", p.StartDate.Format(dateLayout))
	}
	if p.EndDate != nil {
		v.Set("end_date", p.EndDate.Format(dateLayout))
	}
	return v.Encode()
}

func required(q url.Values, key string) (string, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return "", &ParamError{Field: key, Message: "is required"}
	}
	return v, nil
}

func intParam(q url.Values, key string, fallback, atLeast int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ParamError{Field: key, Message: "must be an integer"}
	}
	if n < atLeast {
		return 0, &ParamError{Field: key, Message: fmt.Sprintf("must be at least %d", atLeast)}
	}
	return n, nil
}

func dateParam(q url.Values, key string) (*time.Time, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, &ParamError{Field: key, Message: "must be a date (YYYY-MM-DD)"}
	}
	return &t, nil
}
