package filecache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// Key returns a deterministic cache key for a set of names. The names are
// sorted before hashing, so any ordering of the same set gives the same key.
// Duplicates are significant.
//
// Format: hex(SHA-256(JSON array of the sorted names))
func Key(names []string) (string, error) {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	canonical, err := json.Marshal(sorted)
	if err != nil {
		return "", fmt.Errorf("filecache: failed to canonicalize names: %w", err)
	}

	hash := sha256.Sum256(canonical)

	return hex.EncodeToString(hash[:]), nil
}
