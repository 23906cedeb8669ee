package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingMetadata aborts the line-delimited export when the display
// names or conversation metadata the header requires are unavailable.
var ErrMissingMetadata = errors.New("display names or conversation metadata unavailable")

// linesHeader is the leading metadata line of the JSONL export.
type linesHeader struct {
	UserName      string `json:"user_name"`
	CharacterName string `json:"character_name"`
	ChatMetadata  any    `json:"chat_metadata"`
}

// Lines renders the line-delimited export: one metadata line followed
// by one independently parseable line per resolvable record. Records
// whose message no longer resolves are skipped; the skip count is
// returned alongside the output.
func Lines(src Source) ([]byte, int, error) {
	if src.UserName == "" || src.CharacterName == "" || src.Meta == nil {
		return nil, 0, ErrMissingMetadata
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	header := linesHeader{
		UserName:      src.UserName,
		CharacterName: src.CharacterName,
		ChatMetadata:  src.Meta,
	}
	if err := enc.Encode(header); err != nil {
		return nil, 0, fmt.Errorf("encode header: %w", err)
	}

	skipped := 0
	for _, rec := range SortRecords(src.Records) {
		msg, _, ok := src.resolve(rec)
		if !ok {
			skipped++
			continue
		}
		if err := enc.Encode(msg.Clone()); err != nil {
			return nil, 0, fmt.Errorf("encode message: %w", err)
		}
	}
	return buf.Bytes(), skipped, nil
}
