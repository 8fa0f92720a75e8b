package sqlgraph

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/syssam/collection"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ConstraintKind
	}{
		{"nil", nil, NoConstraint},
		{"plain", errors.New("connection refused"), NoConstraint},
		{"pq unique", &pq.Error{Code: "23505"}, UniqueConstraint},
		{"pq foreign key", fmt.Errorf("exec: %w", &pq.Error{Code: "23503"}), ForeignKeyConstraint},
		{"pq other", &pq.Error{Code: "42P01"}, NoConstraint},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, UniqueConstraint},
		{"mysql child row", &mysql.MySQLError{Number: 1452}, ForeignKeyConstraint},
		{"mysql check", &mysql.MySQLError{Number: 3819}, CheckConstraint},
		{"sqlite message", errors.New("constraint failed: UNIQUE constraint failed: products.id (2067)"), UniqueConstraint},
		{"sqlite foreign key message", errors.New("FOREIGN KEY constraint failed (787)"), ForeignKeyConstraint},
		{"sqlite not null message", errors.New("NOT NULL constraint failed: product_groups.id"), NotNullConstraint},
		{"postgres message", errors.New(`pq: duplicate key value violates unique constraint "products_pkey"`), UniqueConstraint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestPredicates(t *testing.T) {
	unique := &pq.Error{Code: "23505"}
	fk := &mysql.MySQLError{Number: 1451}

	assert.True(t, IsUniqueConstraintError(unique))
	assert.False(t, IsUniqueConstraintError(fk))
	assert.True(t, IsForeignKeyConstraintError(fk))
	assert.True(t, IsConstraintError(unique))
	assert.True(t, IsConstraintError(collection.NewConstraintError("x", nil)))
	assert.False(t, IsConstraintError(errors.New("timeout")))
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil))

	plain := errors.New("timeout")
	assert.Same(t, plain, Wrap(plain))

	driverErr := &pq.Error{Code: "23505", Message: "duplicate key"}
	wrapped := Wrap(driverErr)
	assert.True(t, collection.IsConstraintError(wrapped))
	assert.ErrorIs(t, wrapped, driverErr)
	assert.Contains(t, wrapped.Error(), "unique")

	// Already classified errors are not wrapped twice.
	assert.Equal(t, wrapped, Wrap(wrapped))
}

func TestConstraintKindString(t *testing.T) {
	assert.Equal(t, "unique", UniqueConstraint.String())
	assert.Equal(t, "foreign key", ForeignKeyConstraint.String())
	assert.Equal(t, "check", CheckConstraint.String())
	assert.Equal(t, "not null", NotNullConstraint.String())
	assert.Equal(t, "none", NoConstraint.String())
}
