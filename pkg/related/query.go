package related

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Query is a parsed get_related request.
type Query struct {
	Joins    []string            // relation paths to eager-load
	Filters  map[string][]Filter // by model name
	Ordering []string
	Distinct bool
	Limit    int                 // 0 means no limit
	Fields   map[string][]string // by model name
}

// Filter is one field__lookup=value condition.
type Filter struct {
	Field  string
	Lookup string
	Value  string
}

// Error is a request the composer cannot answer.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func errorf(format string, args ...any) error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

var lookups = map[string]bool{
	"exact": true, "iexact": true,
	"contains": true, "icontains": true,
	"startswith": true, "istartswith": true,
	"endswith": true, "iendswith": true,
	"gt": true, "gte": true, "lt": true, "lte": true,
	"in": true, "isnull": true,
}

// Parse reads join, filter[model], ordering, distinct, limit and
// fields[model] from the query string.
func Parse(values url.Values) (Query, error) {
	q := Query{
		Joins:    splitList(values.Get("join")),
		Filters:  map[string][]Filter{},
		Ordering: splitList(values.Get("ordering")),
		Distinct: strings.EqualFold(strings.TrimSpace(values.Get("distinct")), "true"),
		Fields:   map[string][]string{},
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" && allDigits(raw) {
		q.Limit, _ = strconv.Atoi(raw)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if model, ok := bracketed(key, "filter"); ok {
			for _, raw := range values[key] {
				filters, err := parseFilters(raw)
				if err != nil {
					return Query{}, err
				}
				q.Filters[model] = append(q.Filters[model], filters...)
			}
		}
		if model, ok := bracketed(key, "fields"); ok {
			q.Fields[model] = append(q.Fields[model], splitList(values.Get(key))...)
		}
	}
	return q, nil
}

// bracketed matches "prefix[name]" and returns name in lower case.
func bracketed(key, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(key, prefix+"[")
	if !ok {
		return "", false
	}
	name, ok := strings.CutSuffix(rest, "]")
	if !ok || name == "" {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(name)), true
}

// parseFilters reads "a__icontains=tv,b=1".
func parseFilters(raw string) ([]Filter, error) {
	var out []Filter
	for _, cond := range splitList(raw) {
		key, value, ok := strings.Cut(cond, "=")
		if !ok {
			return nil, errorf("invalid filter condition %q: expected field=value", cond)
		}
		field, lookup := strings.TrimSpace(key), "exact"
		if i := strings.LastIndex(field, "__"); i >= 0 && lookups[field[i+2:]] {
			field, lookup = field[:i], field[i+2:]
		}
		if field == "" || strings.Contains(field, "__") {
			return nil, errorf("invalid filter field %q", key)
		}
		out = append(out, Filter{Field: field, Lookup: lookup, Value: strings.TrimSpace(value)})
	}
	return out, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// convert turns "true"/"false" into booleans and digit strings into
// integers. Anything else stays a string.
func convert(raw string) any {
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	if allDigits(raw) {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
	}
	return raw
}

// condition renders one lookup on col.
func condition(col string, f Filter) (string, []any, error) {
	switch f.Lookup {
	case "exact":
		return col + " = ?", []any{convert(f.Value)}, nil
	case "iexact":
		return "LOWER(" + col + ") = LOWER(?)", []any{f.Value}, nil
	case "contains":
		return col + " LIKE ?", []any{"%" + f.Value + "%"}, nil
	case "icontains":
		return "LOWER(" + col + ") LIKE LOWER(?)", []any{"%" + f.Value + "%"}, nil
	case "startswith":
		return col + " LIKE ?", []any{f.Value + "%"}, nil
	case "istartswith":
		return "LOWER(" + col + ") LIKE LOWER(?)", []any{f.Value + "%"}, nil
	case "endswith":
		return col + " LIKE ?", []any{"%" + f.Value}, nil
	case "iendswith":
		return "LOWER(" + col + ") LIKE LOWER(?)", []any{"%" + f.Value}, nil
	case "gt":
		return col + " > ?", []any{convert(f.Value)}, nil
	case "gte":
		return col + " >= ?", []any{convert(f.Value)}, nil
	case "lt":
		return col + " < ?", []any{convert(f.Value)}, nil
	case "lte":
		return col + " <= ?", []any{convert(f.Value)}, nil
	case "in":
		var vals []any
		for _, v := range strings.Split(f.Value, "|") {
			if v = strings.TrimSpace(v); v != "" {
				vals = append(vals, convert(v))
			}
		}
		if len(vals) == 0 {
			return "", nil, errorf("filter %s__in needs at least one value", f.Field)
		}
		return col + " IN ?", []any{vals}, nil
	case "isnull":
		b, ok := convert(f.Value).(bool)
		if !ok {
			return "", nil, errorf("filter %s__isnull expects true or false", f.Field)
		}
		if b {
			return col + " IS NULL", nil, nil
		}
		return col + " IS NOT NULL", nil, nil
	}
	return "", nil, errorf("unknown lookup %q", f.Lookup)
}
