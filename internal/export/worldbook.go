package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Entry role constants: who authored the source message.
const (
	EntryRoleUser      = 1
	EntryRoleCharacter = 2
)

// EntryPosition 4 means "insert after the 0th depth marker" in the
// consuming system. Fixed for every exported entry.
const EntryPosition = 4

// Entry is the fixed structured-entry schema. Everything except uid,
// comment, content, order, role and displayIndex is a literal constant
// required by the consuming format.
type Entry struct {
	UID                 int      `json:"uid"`
	Key                 []string `json:"key"`
	Keysecondary        []string `json:"keysecondary"`
	Comment             string   `json:"comment"`
	Content             string   `json:"content"`
	Constant            bool     `json:"constant"`
	Vectorized          bool     `json:"vectorized"`
	Selective           bool     `json:"selective"`
	SelectiveLogic      int      `json:"selectiveLogic"`
	AddMemo             bool     `json:"addMemo"`
	Order               int      `json:"order"`
	Position            int      `json:"position"`
	Disable             bool     `json:"disable"`
	ExcludeRecursion    bool     `json:"excludeRecursion"`
	PreventRecursion    bool     `json:"preventRecursion"`
	DelayUntilRecursion bool     `json:"delayUntilRecursion"`
	Probability         int      `json:"probability"`
	UseProbability      bool     `json:"useProbability"`
	Depth               int      `json:"depth"`
	Group               string   `json:"group"`
	GroupOverride       bool     `json:"groupOverride"`
	GroupWeight         int      `json:"groupWeight"`
	Sticky              int      `json:"sticky"`
	Cooldown            int      `json:"cooldown"`
	Delay               int      `json:"delay"`
	Role                int      `json:"role"`
	DisplayIndex        int      `json:"displayIndex"`
}

// Document is the structured-entry export: entries keyed by the
// original message index as a string.
type Document struct {
	Entries map[string]Entry `json:"entries"`
}

// ErrNoEntries aborts the export when no record resolves.
var ErrNoEntries = errors.New("no favorited messages resolve to live messages")

// Worldbook renders the structured-entry document. Unresolvable
// records are omitted; the skip count is returned alongside.
func Worldbook(src Source) ([]byte, int, error) {
	entries := make(map[string]Entry)
	skipped := 0

	for _, rec := range SortRecords(src.Records) {
		msg, idx, ok := src.resolve(rec)
		if !ok {
			skipped++
			continue
		}
		role := EntryRoleCharacter
		if msg.IsUser {
			role = EntryRoleUser
		}
		entries[strconv.Itoa(idx)] = Entry{
			UID:            idx,
			Key:            []string{},
			Keysecondary:   []string{},
			Comment:        fmt.Sprintf("#%d - %s", idx, msg.Sender),
			Content:        msg.Body,
			Constant:       true,
			AddMemo:        true,
			Order:          idx,
			Position:       EntryPosition,
			Probability:    100,
			UseProbability: true,
			GroupWeight:    100,
			Role:           role,
			DisplayIndex:   idx,
		}
	}

	if len(entries) == 0 {
		return nil, skipped, ErrNoEntries
	}

	data, err := json.MarshalIndent(Document{Entries: entries}, "", "  ")
	if err != nil {
		return nil, skipped, fmt.Errorf("encode worldbook: %w", err)
	}
	return data, skipped, nil
}
