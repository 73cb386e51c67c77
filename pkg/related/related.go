// Package related answers get_related requests: one model listed with
// eager-loaded relations, filters on related models, ordering, DISTINCT,
// LIMIT and per-model field selection.
//
//	products := related.New("product", resources.Product, map[string]string{
//	    "warehouse": "stocks__warehouse",
//	}, "Brand", "Category", "Stocks")
//
//	q, err := related.Parse(r.URL.Query())
//	res, err := products.Run(ctx, db, q)
//
// Relation paths use the JSON names of relation fields joined with "__".
// Filters on related models INNER JOIN the path under rel_<path> aliases.
package related

import (
	"context"
	"reflect"
	"sort"
	"strings"

	"github.com/shashiranjanraj/bodega/pkg/resource"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Result is the response body.
type Result struct {
	Count    int            `json:"count"`
	Results  []resource.Map `json:"results"`
	SQLQuery string         `json:"sql_query"`
}

// Model is the get_related configuration of one main model.
type Model[T any] struct {
	name     string
	view     resource.Transformer[T]
	paths    map[string]string
	preloads []string
}

// New configures model name. paths maps other model names to relation
// paths; preloads are the relations view needs.
func New[T any](name string, view resource.Transformer[T], paths map[string]string, preloads ...string) *Model[T] {
	return &Model[T]{name: name, view: view, paths: paths, preloads: preloads}
}

func (m *Model[T]) Name() string { return m.name }

// step is one resolved relation path.
type step struct {
	path   string // json names joined by __
	goPath string // struct field names joined by .
	rels   []*schema.Relationship
}

// attach is a related model shown under its name with selected fields.
type attach struct {
	model  string
	step   step
	fields []string
}

type plan struct {
	joins      []string // alias INNER JOINs
	aliased    map[string]bool
	where      []cond
	order      []string
	eager      []step
	preloads   []string
	mainFields []string
	attached   []attach
	distinct   bool
	limit      int
}

type cond struct {
	sql  string
	args []any
}

// Run executes q against db.
func (m *Model[T]) Run(ctx context.Context, db *gorm.DB, q Query) (*Result, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(new(T)); err != nil {
		return nil, err
	}
	p, err := m.plan(stmt.Schema, q)
	if err != nil {
		return nil, err
	}

	build := func(tx *gorm.DB, load bool) *gorm.DB {
		tx = tx.Model(new(T))
		for _, j := range p.joins {
			tx = tx.Joins(j)
		}
		for _, st := range p.eager {
			if isToOne(st) {
				tx = tx.Joins(st.goPath)
			} else if load {
				tx = tx.Preload(st.goPath)
			}
		}
		if load {
			for _, path := range p.preloads {
				tx = tx.Preload(path)
			}
		}
		for _, c := range p.where {
			tx = tx.Where(c.sql, c.args...)
		}
		if p.distinct {
			cols := make([]string, 0, len(stmt.Schema.DBNames))
			for _, name := range stmt.Schema.DBNames {
				cols = append(cols, stmt.Schema.Table+"."+name)
			}
			tx = tx.Distinct(cols)
		}
		for _, o := range p.order {
			tx = tx.Order(o)
		}
		if p.limit > 0 {
			tx = tx.Limit(p.limit)
		}
		return tx
	}

	var rows []T
	if err := build(db.WithContext(ctx), true).Find(&rows).Error; err != nil {
		return nil, errorf("query failed: %v", err)
	}
	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var dry []T
		return build(tx, false).Find(&dry)
	})

	res := &Result{Results: make([]resource.Map, 0, len(rows)), SQLQuery: sql}
	for i := range rows {
		res.Results = append(res.Results, m.render(ctx, stmt.Schema, p, &rows[i]))
	}
	res.Count = len(res.Results)
	return res, nil
}

func (m *Model[T]) plan(s *schema.Schema, q Query) (*plan, error) {
	p := &plan{aliased: map[string]bool{}, distinct: q.Distinct, limit: q.Limit}
	loaded := map[string]bool{}

	for _, path := range q.Joins {
		st, err := resolve(s, path)
		if err != nil {
			return nil, err
		}
		if !loaded[st.goPath] {
			p.eager = append(p.eager, st)
			loaded[st.goPath] = true
		}
	}

	for _, model := range sortedKeys(q.Filters) {
		filters := q.Filters[model]
		table := s.Table
		fs := s
		if model != m.name {
			st, err := m.target(s, model)
			if err != nil {
				return nil, errorf("filter[%s]: %v", model, err)
			}
			table = p.alias(s, st)
			fs = st.rels[len(st.rels)-1].FieldSchema
		}
		for _, f := range filters {
			col, err := column(fs, f.Field)
			if err != nil {
				return nil, errorf("filter[%s]: %v", model, err)
			}
			sql, args, err := condition(table+"."+col, f)
			if err != nil {
				return nil, err
			}
			p.where = append(p.where, cond{sql: sql, args: args})
		}
	}

	for _, raw := range q.Ordering {
		field, dir := raw, ""
		if rest, ok := strings.CutPrefix(raw, "-"); ok {
			field, dir = rest, " DESC"
		}
		table, fs := s.Table, s
		if i := strings.LastIndex(field, "__"); i >= 0 {
			st, err := resolve(s, field[:i])
			if err != nil {
				return nil, errorf("ordering %q: %v", raw, err)
			}
			table = p.alias(s, st)
			fs = st.rels[len(st.rels)-1].FieldSchema
			field = field[i+2:]
		}
		col, err := column(fs, field)
		if err != nil {
			return nil, errorf("ordering %q: %v", raw, err)
		}
		p.order = append(p.order, table+"."+col+dir)
	}

	needView := true
	for _, model := range sortedKeys(q.Fields) {
		fields := q.Fields[model]
		if model == m.name {
			if err := m.checkMainFields(s, fields); err != nil {
				return nil, err
			}
			p.mainFields = fields
			needView = m.needsView(s, fields)
			continue
		}
		st, err := m.target(s, model)
		if err != nil {
			return nil, errorf("fields[%s]: %v", model, err)
		}
		fs := st.rels[len(st.rels)-1].FieldSchema
		for _, f := range fields {
			if fs.LookUpField(f) == nil || fs.LookUpField(f).DBName == "" {
				return nil, errorf("fields[%s]: unknown field %q", model, f)
			}
		}
		p.attached = append(p.attached, attach{model: model, step: st, fields: fields})
		if !loaded[st.goPath] {
			p.preloads = append(p.preloads, st.goPath)
			loaded[st.goPath] = true
		}
	}

	if needView {
		for _, path := range m.preloads {
			if !loaded[path] {
				p.preloads = append(p.preloads, path)
				loaded[path] = true
			}
		}
	}
	return p, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// target finds the relation path to model: the configured path first, then
// model as a direct relation name.
func (m *Model[T]) target(s *schema.Schema, model string) (step, error) {
	if path, ok := m.paths[model]; ok {
		return resolve(s, path)
	}
	st, err := resolve(s, model)
	if err != nil {
		return step{}, errorf("unknown model %q for %s", model, m.name)
	}
	return st, nil
}

func (m *Model[T]) checkMainFields(s *schema.Schema, fields []string) error {
	view := m.view.ToArray(*new(T))
	for _, f := range fields {
		if _, ok := view[f]; ok {
			continue
		}
		if field := s.LookUpField(f); field != nil && field.DBName != "" {
			continue
		}
		return errorf("fields[%s]: unknown field %q", m.name, f)
	}
	return nil
}

// needsView reports whether any selected field comes from the
// representation rather than a column.
func (m *Model[T]) needsView(s *schema.Schema, fields []string) bool {
	for _, f := range fields {
		if field := s.LookUpField(f); field == nil || field.DBName == "" {
			return true
		}
	}
	return false
}

// alias INNER JOINs every prefix of st and returns the alias of its last
// relation.
func (p *plan) alias(s *schema.Schema, st step) string {
	parent := s.Table
	segments := strings.Split(st.path, "__")
	for i, rel := range st.rels {
		name := "rel_" + strings.Join(segments[:i+1], "__")
		if !p.aliased[name] {
			p.aliased[name] = true
			p.joins = append(p.joins, joinSQL(parent, name, rel))
		}
		parent = name
	}
	return parent
}

func joinSQL(parent, alias string, rel *schema.Relationship) string {
	on := make([]string, 0, len(rel.References))
	for _, ref := range rel.References {
		if ref.OwnPrimaryKey {
			on = append(on, parent+"."+ref.PrimaryKey.DBName+" = "+alias+"."+ref.ForeignKey.DBName)
		} else {
			on = append(on, parent+"."+ref.ForeignKey.DBName+" = "+alias+"."+ref.PrimaryKey.DBName)
		}
	}
	return "INNER JOIN " + rel.FieldSchema.Table + " " + alias + " ON " + strings.Join(on, " AND ")
}

// resolve walks a json-name relation path from s.
func resolve(s *schema.Schema, path string) (step, error) {
	st := step{path: path}
	var goNames []string
	cur := s
	for _, seg := range strings.Split(path, "__") {
		rel := relation(cur, seg)
		if rel == nil {
			return step{}, errorf("unknown relation %q on %s", seg, cur.Name)
		}
		st.rels = append(st.rels, rel)
		goNames = append(goNames, rel.Name)
		cur = rel.FieldSchema
	}
	st.goPath = strings.Join(goNames, ".")
	return st, nil
}

func relation(s *schema.Schema, name string) *schema.Relationship {
	for key, rel := range s.Relationships.Relations {
		if strings.HasPrefix(key, "_") {
			continue
		}
		if jsonName(rel.Field) == name || strings.EqualFold(rel.Name, name) {
			return rel
		}
	}
	return nil
}

func jsonName(f *schema.Field) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// column maps a filter or ordering field to a column of s. A to-one
// relation name stands for its foreign key.
func column(s *schema.Schema, name string) (string, error) {
	if f := s.LookUpField(name); f != nil && f.DBName != "" {
		return f.DBName, nil
	}
	if rel := relation(s, name); rel != nil && rel.Type == schema.BelongsTo && len(rel.References) == 1 {
		return rel.References[0].ForeignKey.DBName, nil
	}
	return "", errorf("unknown field %q on %s", name, s.Name)
}

func isToOne(st step) bool {
	if len(st.rels) != 1 {
		return false
	}
	t := st.rels[0].Type
	return t == schema.BelongsTo || t == schema.HasOne
}

func (m *Model[T]) render(ctx context.Context, s *schema.Schema, p *plan, row *T) resource.Map {
	var out resource.Map
	if len(p.mainFields) > 0 {
		attrs := columns(ctx, s, reflect.ValueOf(row).Elem())
		for k, v := range m.view.ToArray(*row) {
			if _, ok := attrs[k]; !ok {
				attrs[k] = v
			}
		}
		out = resource.Only(attrs, p.mainFields)
	} else {
		out = m.view.ToArray(*row)
	}

	for _, a := range p.attached {
		out[a.model] = collect(ctx, reflect.ValueOf(row).Elem(), a)
	}
	return out
}

// collect walks the loaded relation path of row. A path made only of to-one
// relations gives one object (or nil); any to-many step gives a list.
func collect(ctx context.Context, row reflect.Value, a attach) any {
	values := []reflect.Value{row}
	many := false
	for _, rel := range a.step.rels {
		if rel.Type == schema.HasMany || rel.Type == schema.Many2Many {
			many = true
		}
		var next []reflect.Value
		for _, v := range values {
			fv := reflect.Indirect(v).FieldByName(rel.Name)
			switch fv.Kind() {
			case reflect.Slice:
				for i := 0; i < fv.Len(); i++ {
					next = append(next, reflect.Indirect(fv.Index(i)))
				}
			case reflect.Ptr:
				if !fv.IsNil() {
					next = append(next, fv.Elem())
				}
			case reflect.Struct:
				next = append(next, fv)
			}
		}
		values = next
	}

	fs := a.step.rels[len(a.step.rels)-1].FieldSchema
	seen := map[any]bool{}
	objects := make([]resource.Map, 0, len(values))
	for _, v := range values {
		attrs := columns(ctx, fs, v)
		if id, ok := attrs["id"]; ok {
			if seen[id] {
				continue
			}
			seen[id] = true
		}
		objects = append(objects, resource.Only(attrs, a.fields))
	}
	if many {
		return objects
	}
	if len(objects) == 0 {
		return nil
	}
	return objects[0]
}

// columns reads every column value of v.
func columns(ctx context.Context, s *schema.Schema, v reflect.Value) resource.Map {
	out := resource.Map{}
	for _, f := range s.Fields {
		if f.DBName == "" {
			continue
		}
		val, _ := f.ValueOf(ctx, v)
		out[f.DBName] = val
	}
	return out
}
