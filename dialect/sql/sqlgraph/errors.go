// Package sqlgraph classifies driver errors returned by the store.
package sqlgraph

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"

	"github.com/syssam/collection"
)

// ConstraintKind is the kind of constraint a statement violated.
type ConstraintKind int

// Constraint kinds.
const (
	NoConstraint ConstraintKind = iota
	UniqueConstraint
	ForeignKeyConstraint
	CheckConstraint
	NotNullConstraint
)

// String returns the kind name used in error messages.
func (k ConstraintKind) String() string {
	switch k {
	case UniqueConstraint:
		return "unique"
	case ForeignKeyConstraint:
		return "foreign key"
	case CheckConstraint:
		return "check"
	case NotNullConstraint:
		return "not null"
	default:
		return "none"
	}
}

// PostgreSQL SQLSTATE codes (class 23).
var pgCodes = map[pq.ErrorCode]ConstraintKind{
	"23505": UniqueConstraint,
	"23503": ForeignKeyConstraint,
	"23514": CheckConstraint,
	"23502": NotNullConstraint,
}

// MySQL error numbers.
var mysqlCodes = map[uint16]ConstraintKind{
	1062: UniqueConstraint,     // ER_DUP_ENTRY
	1451: ForeignKeyConstraint, // ER_ROW_IS_REFERENCED_2
	1452: ForeignKeyConstraint, // ER_NO_REFERENCED_ROW_2
	3819: CheckConstraint,      // ER_CHECK_CONSTRAINT_VIOLATED
	1048: NotNullConstraint,    // ER_BAD_NULL_ERROR
}

// SQLite extended result codes.
var sqliteCodes = map[int]ConstraintKind{
	2067: UniqueConstraint,     // SQLITE_CONSTRAINT_UNIQUE
	1555: UniqueConstraint,     // SQLITE_CONSTRAINT_PRIMARYKEY
	787:  ForeignKeyConstraint, // SQLITE_CONSTRAINT_FOREIGNKEY
	275:  CheckConstraint,      // SQLITE_CONSTRAINT_CHECK
	1299: NotNullConstraint,    // SQLITE_CONSTRAINT_NOTNULL
}

// Messages matched when the driver error type is not available,
// for example when the error was flattened by a wrapping driver.
var fallbacks = []struct {
	substr string
	kind   ConstraintKind
}{
	{"UNIQUE constraint failed", UniqueConstraint},
	{"violates unique constraint", UniqueConstraint},
	{"Error 1062", UniqueConstraint},
	{"FOREIGN KEY constraint failed", ForeignKeyConstraint},
	{"violates foreign key constraint", ForeignKeyConstraint},
	{"Error 1451", ForeignKeyConstraint},
	{"Error 1452", ForeignKeyConstraint},
	{"CHECK constraint failed", CheckConstraint},
	{"violates check constraint", CheckConstraint},
	{"Error 3819", CheckConstraint},
	{"NOT NULL constraint failed", NotNullConstraint},
	{"violates not-null constraint", NotNullConstraint},
}

// Kind reports which constraint, if any, the error resulted from.
func Kind(err error) ConstraintKind {
	if err == nil {
		return NoConstraint
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pgCodes[pqErr.Code]
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return mysqlCodes[myErr.Number]
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return sqliteCodes[liteErr.Code()]
	}
	msg := err.Error()
	for _, f := range fallbacks {
		if strings.Contains(msg, f.substr) {
			return f.kind
		}
	}
	return NoConstraint
}

// IsConstraintError returns true if the error resulted from a database constraint violation.
func IsConstraintError(err error) bool {
	return collection.IsConstraintError(err) || Kind(err) != NoConstraint
}

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness constraint violation.
func IsUniqueConstraintError(err error) bool {
	return Kind(err) == UniqueConstraint
}

// IsForeignKeyConstraintError reports if the error resulted from a foreign-key constraint violation.
func IsForeignKeyConstraintError(err error) bool {
	return Kind(err) == ForeignKeyConstraint
}

// Wrap converts constraint violations into a collection.ConstraintError and
// returns every other error unchanged.
func Wrap(err error) error {
	if err == nil || collection.IsConstraintError(err) {
		return err
	}
	if k := Kind(err); k != NoConstraint {
		return collection.NewConstraintError(k.String()+": "+err.Error(), err)
	}
	return err
}
