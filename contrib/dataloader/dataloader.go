// Package dataloader provides generic helpers for batch loading entities by key.
//
// The store uses them to attach products to groups after a single join
// query, and the federation resolver uses them to answer `_entities` in
// the order the gateway asked:
//
//	groups, err := client.ProductGroup.Query().Where(productgroup.IDIn(ids...)).All(ctx)
//	if err != nil {
//	    return nil, err
//	}
//	ordered := dataloader.OrderByKeysNoError(ids, groups, func(g *store.ProductGroup) string { return g.ID })
package dataloader

import "errors"

// ErrNotFound is returned when an entity is not found in a batch result.
var ErrNotFound = errors.New("dataloader: entity not found")

// KeyFunc extracts a key from an entity.
type KeyFunc[K comparable, V any] func(V) K

// OrderByKeys reorders entities to match the order of requested keys.
// The result has one entry per key; missing entities are zero values with
// ErrNotFound at the same index of the error slice.
func OrderByKeys[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) ([]V, []error) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		lookup[keyFn(v)] = v
	}
	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		if v, ok := lookup[key]; ok {
			result[i] = v
		} else {
			errs[i] = ErrNotFound
		}
	}
	return result, errs
}

// OrderByKeysNoError is like OrderByKeys but leaves missing entities as zero
// values without reporting them.
func OrderByKeysNoError[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) []V {
	result, _ := OrderByKeys(keys, values, keyFn)
	return result
}

// GroupByKey groups entities by a key function, keeping their input order
// inside each group.
func GroupByKey[K comparable, V any](values []V, keyFn KeyFunc[K, V]) map[K][]V {
	result := make(map[K][]V)
	for _, v := range values {
		key := keyFn(v)
		result[key] = append(result[key], v)
	}
	return result
}

// OrderGroupsByKeys returns groups[keys[i]] at index i.
func OrderGroupsByKeys[K comparable, V any](keys []K, groups map[K][]V) [][]V {
	result := make([][]V, len(keys))
	for i, key := range keys {
		result[i] = groups[key]
	}
	return result
}

// Unique returns keys without duplicates, keeping the first occurrence.
func Unique[K comparable](keys []K) []K {
	seen := make(map[K]struct{}, len(keys))
	out := make([]K, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
