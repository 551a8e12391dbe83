package mapst

import (
	"cmp"
	"slices"
)

// Keys collects the keys of m in map iteration order.
func Keys[K comparable, V any, M ~map[K]V](m M) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K cmp.Ordered, V any, M ~map[K]V](m M) []K {
	keys := Keys(m)
	slices.Sort(keys)
	return keys
}
