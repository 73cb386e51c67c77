package orm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// ConstraintKind says which database rule a write broke.
type ConstraintKind string

const (
	Unique     ConstraintKind = "unique"
	Check      ConstraintKind = "check"
	ForeignKey ConstraintKind = "foreign_key"
	NotNull    ConstraintKind = "not_null"
)

// ConstraintError is a driver error recognised as a constraint violation.
// Constraint holds the constraint name when the driver reports it, or the
// offending table.column for SQLite unique violations.
type ConstraintError struct {
	Kind       ConstraintKind
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Constraint == "" {
		return fmt.Sprintf("%s constraint violated", e.Kind)
	}
	return fmt.Sprintf("%s constraint %q violated", e.Kind, e.Constraint)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// IsNotFound reports whether err means no row matched.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Classify returns a *ConstraintError when err is a constraint violation
// raised by postgres, sqlite or mysql, and err unchanged otherwise.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return &ConstraintError{Kind: Unique, Constraint: pgErr.ConstraintName, Err: err}
		case "23514":
			return &ConstraintError{Kind: Check, Constraint: pgErr.ConstraintName, Err: err}
		case "23503":
			return &ConstraintError{Kind: ForeignKey, Constraint: pgErr.ConstraintName, Err: err}
		case "23502":
			return &ConstraintError{Kind: NotNull, Constraint: pgErr.ColumnName, Err: err}
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		if liteErr.Code != sqlite3.ErrConstraint {
			return err
		}
		name := sqliteConstraintName(liteErr.Error())
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &ConstraintError{Kind: Unique, Constraint: name, Err: err}
		case sqlite3.ErrConstraintCheck:
			return &ConstraintError{Kind: Check, Constraint: name, Err: err}
		case sqlite3.ErrConstraintForeignKey:
			return &ConstraintError{Kind: ForeignKey, Err: err}
		case sqlite3.ErrConstraintNotNull:
			return &ConstraintError{Kind: NotNull, Constraint: name, Err: err}
		}
		// Deferred and trigger-enforced FK checks arrive under other
		// extended codes, e.g. 1811 on delete.
		if strings.Contains(liteErr.Error(), "FOREIGN KEY constraint failed") {
			return &ConstraintError{Kind: ForeignKey, Err: err}
		}
		return err
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return &ConstraintError{Kind: Unique, Constraint: mysqlKeyName(myErr.Message), Err: err}
		case 3819:
			return &ConstraintError{Kind: Check, Err: err}
		case 1451, 1452:
			return &ConstraintError{Kind: ForeignKey, Err: err}
		case 1048:
			return &ConstraintError{Kind: NotNull, Err: err}
		}
		return err
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &ConstraintError{Kind: Unique, Err: err}
	}

	// sqlserver and anything else: match the message.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint"):
		return &ConstraintError{Kind: Unique, Err: err}
	case strings.Contains(msg, "check constraint"):
		return &ConstraintError{Kind: Check, Err: err}
	case strings.Contains(msg, "foreign key"):
		return &ConstraintError{Kind: ForeignKey, Err: err}
	}
	return err
}

// sqliteConstraintName extracts the part after "constraint failed: ", e.g.
// "inventory_brand.name" or "reserved_lte_qty".
func sqliteConstraintName(msg string) string {
	const marker = "constraint failed: "
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(msg[i+len(marker):])
}

// mysqlKeyName extracts the key from "Duplicate entry 'x' for key 'name'".
func mysqlKeyName(msg string) string {
	const marker = "for key '"
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return ""
	}
	return strings.TrimSuffix(msg[i+len(marker):], "'")
}
