package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelector(t *testing.T) {
	s := &Selector{}
	query, args := s.Query()
	assert.Empty(t, query)
	assert.Nil(t, args)

	s.Where("id IN (?, ?)", "a", "b").Where("name = ?", "summer")
	query, args = s.Query()
	assert.Equal(t, " WHERE id IN (?, ?) AND name = ?", query)
	assert.Equal(t, []any{"a", "b", "summer"}, args)
}
