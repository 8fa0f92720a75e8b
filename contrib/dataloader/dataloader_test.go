package dataloader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type group struct {
	ID   string
	Name string
}

type link struct {
	GroupID   string
	ProductID string
}

func TestOrderByKeys(t *testing.T) {
	t.Parallel()

	keyFn := func(g *group) string { return g.ID }

	t.Run("all keys found", func(t *testing.T) {
		t.Parallel()
		values := []*group{{ID: "c", Name: "third"}, {ID: "a", Name: "first"}, {ID: "b", Name: "second"}}

		result, errs := OrderByKeys([]string{"a", "b", "c"}, values, keyFn)

		require.Len(t, result, 3)
		require.Len(t, errs, 3)
		assert.Equal(t, "first", result[0].Name)
		assert.Equal(t, "second", result[1].Name)
		assert.Equal(t, "third", result[2].Name)
		for _, err := range errs {
			assert.NoError(t, err)
		}
	})

	t.Run("some keys missing", func(t *testing.T) {
		t.Parallel()
		values := []*group{{ID: "a"}, {ID: "c"}}

		result, errs := OrderByKeys([]string{"a", "b", "c", "d"}, values, keyFn)

		require.Len(t, result, 4)
		assert.NotNil(t, result[0])
		assert.Nil(t, result[1])
		assert.NotNil(t, result[2])
		assert.Nil(t, result[3])
		assert.NoError(t, errs[0])
		assert.ErrorIs(t, errs[1], ErrNotFound)
		assert.NoError(t, errs[2])
		assert.ErrorIs(t, errs[3], ErrNotFound)
	})

	t.Run("repeated keys", func(t *testing.T) {
		t.Parallel()
		values := []*group{{ID: "a", Name: "first"}}

		result := OrderByKeysNoError([]string{"a", "x", "a"}, values, keyFn)

		require.Len(t, result, 3)
		assert.Same(t, result[0], result[2])
		assert.Nil(t, result[1])
	})

	t.Run("empty keys", func(t *testing.T) {
		t.Parallel()
		result, errs := OrderByKeys(nil, []*group{{ID: "a"}}, keyFn)
		assert.Empty(t, result)
		assert.Empty(t, errs)
	})
}

func TestGroupByKey(t *testing.T) {
	t.Parallel()

	links := []link{
		{GroupID: "g1", ProductID: "p1"},
		{GroupID: "g2", ProductID: "p3"},
		{GroupID: "g1", ProductID: "p2"},
	}

	grouped := GroupByKey(links, func(l link) string { return l.GroupID })

	require.Len(t, grouped, 2)
	require.Len(t, grouped["g1"], 2)
	assert.Equal(t, "p1", grouped["g1"][0].ProductID)
	assert.Equal(t, "p2", grouped["g1"][1].ProductID)
	assert.Equal(t, "p3", grouped["g2"][0].ProductID)

	assert.Empty(t, GroupByKey([]link{}, func(l link) string { return l.GroupID }))
}

func TestOrderGroupsByKeys(t *testing.T) {
	t.Parallel()

	groups := map[string][]string{
		"g1": {"p1", "p2"},
		"g2": {"p3"},
	}

	result := OrderGroupsByKeys([]string{"g2", "g3", "g1"}, groups)

	require.Len(t, result, 3)
	assert.Equal(t, []string{"p3"}, result[0])
	assert.Nil(t, result[1])
	assert.Equal(t, []string{"p1", "p2"}, result[2])
}

func TestUnique(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"p1", "p2", "p3"}, Unique([]string{"p1", "p2", "p1", "p3", "p2"}))
	assert.Empty(t, Unique[string](nil))
}

func BenchmarkOrderByKeys(b *testing.B) {
	keys := make([]int, 1000)
	values := make([]int, 1000)
	for i := range keys {
		keys[i] = i
		values[len(values)-1-i] = i
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = OrderByKeysNoError(keys, values, func(v int) int { return v })
	}
}
