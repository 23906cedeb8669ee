package store

import (
	"testing"

	"github.com/uhhhh15/starmark/internal/types"
)

func TestSortedByIndex(t *testing.T) {
	records := []types.FavoriteRecord{
		{ID: "a", MessageID: "10"},
		{ID: "b", MessageID: "2"},
		{ID: "c", MessageID: "0"},
	}

	got := SortedByIndex(records)

	wantOrder := []string{"0", "2", "10"}
	for i, want := range wantOrder {
		if got[i].MessageID != want {
			t.Errorf("position %d: got %s, want %s", i, got[i].MessageID, want)
		}
	}

	// Numeric sort, not lexicographic: "10" comes after "2".
	if got[1].MessageID == "10" {
		t.Error("indices sorted lexicographically")
	}

	// Input untouched.
	if records[0].MessageID != "10" {
		t.Error("input slice was mutated")
	}
}

func TestSortedByIndexNonNumericLast(t *testing.T) {
	records := []types.FavoriteRecord{
		{ID: "a", MessageID: "junk"},
		{ID: "b", MessageID: "1"},
		{ID: "c", MessageID: "other"},
	}

	got := SortedByIndex(records)

	if got[0].MessageID != "1" {
		t.Errorf("numeric record should sort first, got %s", got[0].MessageID)
	}
	// Non-numeric records keep their relative order.
	if got[1].ID != "a" || got[2].ID != "c" {
		t.Errorf("non-numeric records reordered: %+v", got)
	}
}
