package store

import "github.com/uhhhh15/starmark/internal/types"

// IconStates computes the desired favorite-marker state for each
// visible message. Pure: the presentation layer applies the result.
func IconStates(records []types.FavoriteRecord, visibleIDs []string) map[string]bool {
	favorited := make(map[string]bool, len(records))
	for _, rec := range records {
		favorited[rec.MessageID] = true
	}
	out := make(map[string]bool, len(visibleIDs))
	for _, id := range visibleIDs {
		out[id] = favorited[id]
	}
	return out
}
