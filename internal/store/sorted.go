package store

import (
	"sort"
	"strconv"

	"github.com/uhhhh15/starmark/internal/types"
)

// SortedByIndex returns the records ordered ascending by numeric
// message index. Records with non-numeric indices sort last; the
// ordering is otherwise stable.
func SortedByIndex(records []types.FavoriteRecord) []types.FavoriteRecord {
	out := append([]types.FavoriteRecord(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		a, aErr := strconv.Atoi(out[i].MessageID)
		b, bErr := strconv.Atoi(out[j].MessageID)
		if aErr == nil && bErr == nil {
			return a < b
		}
		return aErr == nil && bErr != nil
	})
	return out
}
