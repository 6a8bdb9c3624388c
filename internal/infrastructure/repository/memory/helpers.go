package memory

import (
	"fmt"
	"sort"
)

func errNotFound(entity string, id int64) error {
	return fmt.Errorf("%s %d not found", entity, id)
}

func sortedKeys[V any](m map[int64]V) []int64 {
	out := make([]int64, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
