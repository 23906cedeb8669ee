// Package export serializes the favorites collection into the three
// supported formats: plain text, line-delimited records, and the
// structured-entry document.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/uhhhh15/starmark/internal/store"
	"github.com/uhhhh15/starmark/internal/types"
)

// Source is a read-only snapshot of everything the serializers need.
type Source struct {
	Subject        string // owning entity display name
	UserName       string
	CharacterName  string
	ConversationID string
	Meta           *types.ConversationMeta
	Messages       []types.Message
	Records        []types.FavoriteRecord
}

// resolve maps a record back to its message by positional index.
func (s Source) resolve(rec types.FavoriteRecord) (types.Message, int, bool) {
	idx, err := strconv.Atoi(rec.MessageID)
	if err != nil || idx < 0 || idx >= len(s.Messages) {
		return types.Message{}, 0, false
	}
	return s.Messages[idx], idx, true
}

// SortRecords orders records ascending by numeric message index,
// matching the store's canonical emission order.
func SortRecords(records []types.FavoriteRecord) []types.FavoriteRecord {
	return store.SortedByIndex(records)
}

const (
	filenameStamp   = "20060102150405"
	filenameBaseMax = 50
	forbiddenChars  = `\/:*?"<>|`
)

// SanitizeFilename strips filesystem-hostile characters and caps the
// base name at 50 characters.
func SanitizeFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenChars, r) {
			return -1
		}
		return r
	}, name)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		cleaned = "export"
	}
	if len(cleaned) > filenameBaseMax {
		cleaned = cleaned[:filenameBaseMax]
	}
	return cleaned
}

// Filename builds "<subject>-<tag>-<id>-<stamp>.<ext>".
func Filename(subject, tag, id string, t time.Time, ext string) string {
	return fmt.Sprintf("%s-%s-%s-%s.%s",
		SanitizeFilename(subject), tag, id, t.Format(filenameStamp), ext)
}

// Writer produces named export files in a directory.
type Writer struct {
	Dir string
	Now func() time.Time
}

func (w Writer) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w Writer) write(name string, data []byte) (string, error) {
	path := filepath.Join(w.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// WriteText writes the plain-text export and returns its path.
func (w Writer) WriteText(src Source) (string, error) {
	now := w.now()
	data := Text(src, now)
	return w.write(Filename(src.Subject, "favorites", src.ConversationID, now, "txt"), []byte(data))
}

// WriteLines writes the line-delimited export and returns its path.
func (w Writer) WriteLines(src Source) (string, error) {
	data, _, err := Lines(src)
	if err != nil {
		return "", err
	}
	return w.write(Filename(src.Subject, "messages", src.ConversationID, w.now(), "jsonl"), data)
}

// WriteWorldbook writes the structured-entry export and returns its path.
func (w Writer) WriteWorldbook(src Source) (string, error) {
	data, _, err := Worldbook(src)
	if err != nil {
		return "", err
	}
	return w.write(Filename(src.Subject, "worldbook", src.ConversationID, w.now(), "json"), data)
}
