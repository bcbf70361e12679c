package stock

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// OptionSetHash returns the canonical hash of an option-id set: ids sorted
// ascending, joined, and hashed. Two selections of the same options hash
// identically regardless of input order; the empty set has a stable hash
// so variant-less products still get exactly one variant.
func OptionSetHash(optionIDs []int64) string {
	sorted := make([]int64, len(optionIDs))
	copy(sorted, optionIDs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, ",")))
	return hex.EncodeToString(sum[:])
}
