package utils

import (
	"cmp"
	"slices"
)

// SortedKeys returns the keys of m in ascending order, so that map walks
// stay deterministic across runs.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	var keys = make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func SortedKeysFunc[K comparable, V any](m map[K]V, compare func(a, b K) int) []K {
	var keys = make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compare)
	return keys
}
