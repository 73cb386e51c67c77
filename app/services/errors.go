package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/bodega/pkg/orm"
)

// ErrNotFound means the requested record does not exist. Malformed ids are
// reported the same way.
var ErrNotFound = errors.New("not found")

// ValidationError is a rejected write that the client can fix.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// StateError is an action not allowed in the record's current status.
type StateError struct {
	Message string
}

func (e *StateError) Error() string { return e.Message }

// ConflictError is a delete blocked by records that still reference the row.
type ConflictError struct {
	Model string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot delete %s: it is referenced by other records", e.Model)
}

// constraintLabels maps what SQLite reports for a unique violation
// (table.columns) to the constraint name the other dialects report.
var constraintLabels = map[string]string{
	"inventory_brand.name":                                         "uniq_brand_name",
	"inventory_category.name":                                      "uniq_category_name",
	"inventory_product.sku":                                        "uniq_product_sku",
	"inventory_customer.email":                                     "uniq_customer_email",
	"inventory_stock.product_id, inventory_stock.warehouse_id":     "unique_product_warehouse_stock",
	"inventory_orderitem.order_id, inventory_orderitem.product_id": "unique_order_product",
	"inventory_payment.order_id":                                   "uniq_payment_order",
	"users.email":                                                  "uniq_user_email",
}

func constraintLabel(name string) string {
	if label, ok := constraintLabels[name]; ok {
		return label
	}
	if name == "" {
		return "constraint"
	}
	// mysql reports "table.index"
	if i := strings.LastIndexByte(name, '.'); i >= 0 && !strings.Contains(name, " ") {
		return name[i+1:]
	}
	return name
}

// writeError converts a failed insert or update into the error the API
// reports: constraint violations become *ValidationError, the rest pass
// through.
func writeError(err error) error {
	if err == nil {
		return nil
	}
	var ce *orm.ConstraintError
	if !errors.As(orm.Classify(err), &ce) {
		return err
	}
	label := constraintLabel(ce.Constraint)
	switch ce.Kind {
	case orm.Unique:
		return invalid(label, "%s: value already exists", label)
	case orm.Check:
		return invalid(label, "%s: check constraint violated", label)
	case orm.ForeignKey:
		return invalid(label, "referenced record does not exist")
	case orm.NotNull:
		return invalid(label, "%s: value is required", label)
	}
	return err
}

// deleteError converts a failed delete: a foreign key violation means a
// RESTRICT relation still points at the row.
func deleteError(model string, err error) error {
	if err == nil {
		return nil
	}
	if orm.IsNotFound(err) {
		return ErrNotFound
	}
	var ce *orm.ConstraintError
	if errors.As(orm.Classify(err), &ce) && ce.Kind == orm.ForeignKey {
		return &ConflictError{Model: model}
	}
	return err
}

// findError maps gorm's record-not-found to ErrNotFound.
func findError(err error) error {
	if orm.IsNotFound(err) {
		return ErrNotFound
	}
	return err
}
