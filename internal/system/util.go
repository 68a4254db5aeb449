package system

import (
	"slices"
	"strconv"
)

func checksumHex(sum uint64) string {
	return strconv.FormatUint(sum, 16)
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
