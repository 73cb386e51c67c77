// Package resource turns models into the JSON shapes the API returns.
//
// A transformer is any func from a model to a Map:
//
//	var Brand = resource.Func[models.Brand](func(b models.Brand) resource.Map {
//	    return resource.Map{"id": b.ID, "name": b.Name}
//	})
//
//	c.Success(resource.One(Brand, brand))
//	c.Success(resource.Many(Brand, brands))
//	c.Paginated(resource.Many(Brand, page.Items), *page.Pagination)
package resource

import "github.com/shopspring/decimal"

// Map is the output of a transformer.
type Map = map[string]any

// Transformer converts one model into a Map.
type Transformer[T any] interface {
	ToArray(v T) Map
}

// Func adapts a plain function to Transformer.
type Func[T any] func(v T) Map

func (f Func[T]) ToArray(v T) Map { return f(v) }

// One transforms a single model. A nil pointer gives nil.
func One[T any](t Transformer[T], v *T) Map {
	if v == nil {
		return nil
	}
	return t.ToArray(*v)
}

// Many transforms a slice. The result is never nil so it encodes as [].
func Many[T any](t Transformer[T], items []T) []Map {
	out := make([]Map, 0, len(items))
	for _, v := range items {
		out = append(out, t.ToArray(v))
	}
	return out
}

// Only keeps the listed keys of m. Unknown keys are ignored.
func Only(m Map, keys []string) Map {
	out := make(Map, len(keys))
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Money renders an amount with two decimals, as "12.50".
func Money(d decimal.Decimal) string { return d.StringFixed(2) }
