// Package validate checks request payloads against `validate` struct tags.
//
// Rules, comma separated:
//
//	required       the field must be present and non-empty
//	nullable       an empty value skips every other rule
//	email          a bare address such as john@example.com
//	uuid           canonical 36 character UUID
//	in=A,B,C       one of the listed values
//	min=N max=N    numbers: value bound; strings: rune count; slices: item count
//	gt=N gte=N     numeric bounds, decimal exact
//	lt=N lte=N
//	dive           validate every element of a slice of structs; errors are
//	               keyed "<field>.<index>.<child>"
//
// Tags are compiled once per struct type. A malformed tag panics the first
// time its type is validated.
//
//	type PaymentInput struct {
//	    Order  string          `json:"order"  validate:"required,uuid"`
//	    Amount decimal.Decimal `json:"amount" validate:"required,gte=0.01"`
//	    Method string          `json:"method" validate:"required,in=CARD,TRANSFER,COD"`
//	}
package validate

import (
	"fmt"
	"net/mail"
	"reflect"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Struct validates every tagged field of v and returns json field name to
// message. An empty map means v is valid.
func Struct(v any) map[string]string {
	return run(reflect.ValueOf(v), false)
}

// Partial is Struct for PATCH bodies: nil pointer fields were not sent and
// are skipped even when required.
func Partial(v any) map[string]string {
	return run(reflect.ValueOf(v), true)
}

// HasErrors reports whether errs holds any message.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

type check struct {
	ok  func(reflect.Value) bool
	msg string
}

type field struct {
	index    int
	name     string
	missing  string
	required bool
	nullable bool
	dive     bool
	checks   []check
}

var compiled sync.Map // reflect.Type -> []field

func run(v reflect.Value, partial bool) map[string]string {
	errs := make(map[string]string)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return errs
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return errs
	}

	for _, f := range fieldsOf(v.Type()) {
		fv := v.Field(f.index)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				if f.required && !partial {
					errs[f.name] = f.missing
				}
				continue
			}
			fv = fv.Elem()
		}

		if isEmpty(fv) {
			if f.required {
				errs[f.name] = f.missing
				continue
			}
			if f.nullable {
				continue
			}
		}

		failed := false
		for _, c := range f.checks {
			if !c.ok(fv) {
				errs[f.name] = c.msg
				failed = true
				break
			}
		}
		if !failed && f.dive && fv.Kind() == reflect.Slice {
			for i := 0; i < fv.Len(); i++ {
				for child, msg := range run(fv.Index(i), false) {
					errs[fmt.Sprintf("%s.%d.%s", f.name, i, child)] = msg
				}
			}
		}
	}
	return errs
}

func fieldsOf(t reflect.Type) []field {
	if fs, ok := compiled.Load(t); ok {
		return fs.([]field)
	}
	fs, _ := compiled.LoadOrStore(t, compile(t))
	return fs.([]field)
}

func compile(t reflect.Type) []field {
	var fields []field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("validate")
		if tag == "" || !sf.IsExported() {
			continue
		}

		f := field{index: i, name: jsonName(sf)}
		f.missing = fmt.Sprintf("The %s field is required.", f.name)
		base := sf.Type
		if base.Kind() == reflect.Pointer {
			base = base.Elem()
		}

		for _, rule := range splitTag(tag) {
			name, param, _ := strings.Cut(rule, "=")
			switch name {
			case "required":
				f.required = true
			case "nullable":
				f.nullable = true
			case "dive":
				f.dive = true
			default:
				c, err := build(name, param, f.name, base)
				if err != nil {
					panic(fmt.Sprintf("validate: %s.%s: %v", t.Name(), sf.Name, err))
				}
				f.checks = append(f.checks, c)
			}
		}
		fields = append(fields, f)
	}
	return fields
}

func build(rule, param, name string, t reflect.Type) (check, error) {
	switch rule {
	case "email":
		return check{isEmail, fmt.Sprintf("The %s must be a valid email address.", name)}, nil
	case "uuid":
		return check{isUUID, fmt.Sprintf("The %s must be a valid UUID.", name)}, nil
	case "in":
		if param == "" {
			return check{}, fmt.Errorf("in needs at least one option")
		}
		options := strings.Split(param, ",")
		return check{
			ok:  func(v reflect.Value) bool { return slices.Contains(options, text(v)) },
			msg: fmt.Sprintf("The selected %s is invalid.", name),
		}, nil
	}
	return bound(rule, param, name, t)
}

type limit struct {
	pass                  func(cmp int) bool
	number, runes, length string
}

var limits = map[string]limit{
	"min": {func(c int) bool { return c >= 0 },
		"The %s must be at least %s.", "The %s must be at least %s characters.", "The %s must have at least %s items."},
	"max": {func(c int) bool { return c <= 0 },
		"The %s must not be greater than %s.", "The %s must not exceed %s characters.", "The %s must not have more than %s items."},
	"gt":  {func(c int) bool { return c > 0 }, "The %s must be greater than %s.", "", ""},
	"gte": {func(c int) bool { return c >= 0 }, "The %s must be greater than or equal to %s.", "", ""},
	"lt":  {func(c int) bool { return c < 0 }, "The %s must be less than %s.", "", ""},
	"lte": {func(c int) bool { return c <= 0 }, "The %s must be less than or equal to %s.", "", ""},
}

func bound(rule, param, name string, t reflect.Type) (check, error) {
	l, ok := limits[rule]
	if !ok {
		return check{}, fmt.Errorf("unknown rule %q", rule)
	}
	want, err := decimal.NewFromString(param)
	if err != nil {
		return check{}, fmt.Errorf("%s needs a number, got %q", rule, param)
	}

	var measure func(reflect.Value) decimal.Decimal
	var format string
	switch {
	case isNumber(t):
		measure, format = number, l.number
	case t.Kind() == reflect.String:
		measure = func(v reflect.Value) decimal.Decimal {
			return decimal.NewFromInt(int64(utf8.RuneCountInString(v.String())))
		}
		format = l.runes
	case t.Kind() == reflect.Slice || t.Kind() == reflect.Map:
		measure = func(v reflect.Value) decimal.Decimal { return decimal.NewFromInt(int64(v.Len())) }
		format = l.length
	}
	if format == "" {
		return check{}, fmt.Errorf("%s does not apply to %s", rule, t)
	}
	return check{
		ok:  func(v reflect.Value) bool { return l.pass(measure(v).Cmp(want)) },
		msg: fmt.Sprintf(format, name, param),
	}, nil
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func isNumber(t reflect.Type) bool {
	if t == decimalType {
		return true
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func number(v reflect.Value) decimal.Decimal {
	if d, ok := v.Interface().(decimal.Decimal); ok {
		return d
	}
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return decimal.NewFromFloat(v.Float())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return decimal.NewFromInt(int64(v.Uint()))
	}
	return decimal.NewFromInt(v.Int())
}

func text(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprint(v.Interface())
}

func isEmail(v reflect.Value) bool {
	s := text(v)
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}

func isUUID(v reflect.Value) bool {
	s := text(v)
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// isEmpty treats blank strings, empty collections and zero values as
// absent. decimal.Decimal and time.Time answer through IsZero.
func isEmpty(v reflect.Value) bool {
	if z, ok := v.Interface().(interface{ IsZero() bool }); ok {
		return z.IsZero()
	}
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	}
	return v.IsZero()
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

var ruleNames = map[string]bool{
	"required": true, "nullable": true, "dive": true, "email": true, "uuid": true,
	"in": true, "min": true, "max": true, "gt": true, "gte": true, "lt": true, "lte": true,
}

// splitTag keeps the options of in= together:
// "required,in=CARD,COD,max=10" -> [required in=CARD,COD max=10].
func splitTag(tag string) []string {
	var rules []string
	for _, part := range strings.Split(tag, ",") {
		name, _, _ := strings.Cut(part, "=")
		if n := len(rules); n > 0 && strings.HasPrefix(rules[n-1], "in=") && !ruleNames[name] {
			rules[n-1] += "," + part
			continue
		}
		rules = append(rules, part)
	}
	return rules
}
