package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/uhhhh15/starmark/internal/types"
)

func testSource() Source {
	return Source{
		Subject:        "Seraphina",
		UserName:       "User",
		CharacterName:  "Seraphina",
		ConversationID: "chat-abc12345",
		Meta: &types.ConversationMeta{
			Favorites: nil,
			Fields:    map[string]json.RawMessage{"host_field": json.RawMessage(`42`)},
		},
		Messages: []types.Message{
			{Sender: "User", IsUser: true, Body: "hello", SendDate: 1700000000},
			{Sender: "Seraphina", Body: "hi there", SendDate: 1700000060},
			{Sender: "User", IsUser: true, Body: "tell me a story", SendDate: 1700000120},
		},
		Records: []types.FavoriteRecord{
			{ID: "r2", MessageID: "2", Sender: "User", Role: types.RoleUser, Note: "good prompt"},
			{ID: "r1", MessageID: "1", Sender: "Seraphina", Role: types.RoleCharacter},
			{ID: "gone", MessageID: "17", Sender: "Seraphina", Role: types.RoleCharacter},
		},
	}
}

func TestTextExport(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	out := Text(testSource(), now)

	if !strings.HasPrefix(out, "Favorites - Seraphina\n") {
		t.Errorf("missing header: %q", out[:40])
	}
	if !strings.Contains(out, "Exported: 2026-08-27 12:00:00") {
		t.Error("missing export timestamp")
	}
	if !strings.Contains(out, "Total: 3") {
		t.Error("total should count every record, resolvable or not")
	}

	// Sections come in ascending index order.
	i1 := strings.Index(out, "[1] Seraphina")
	i2 := strings.Index(out, "[2] User")
	if i1 < 0 || i2 < 0 || i1 > i2 {
		t.Errorf("sections missing or out of order:\n%s", out)
	}
	if !strings.Contains(out, "note: good prompt") {
		t.Error("missing note line")
	}
	if !strings.Contains(out, "[17] "+UnavailableMarker) {
		t.Error("unresolvable record should render the unavailable marker")
	}
}

func TestLinesExport(t *testing.T) {
	data, skipped, err := Lines(testSource())
	if err != nil {
		t.Fatalf("Lines failed: %v", err)
	}
	if skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", skipped)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	// Header plus one line per resolvable record.
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	var header map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &header); err != nil {
		t.Fatalf("header not parseable: %v", err)
	}
	if header["user_name"] != "User" || header["character_name"] != "Seraphina" {
		t.Errorf("unexpected header: %v", header)
	}
	meta, ok := header["chat_metadata"].(map[string]any)
	if !ok {
		t.Fatalf("chat_metadata missing: %v", header)
	}
	if meta["host_field"] != float64(42) {
		t.Errorf("host metadata field not carried through: %v", meta)
	}

	var first types.Message
	if err := json.Unmarshal([]byte(lines[1]), &first); err != nil {
		t.Fatalf("message line not parseable: %v", err)
	}
	if first.Sender != "Seraphina" || first.Body != "hi there" {
		t.Errorf("lines out of order, first = %+v", first)
	}
}

func TestLinesMissingMetadata(t *testing.T) {
	src := testSource()
	src.Meta = nil
	if _, _, err := Lines(src); !errors.Is(err, ErrMissingMetadata) {
		t.Fatalf("expected ErrMissingMetadata, got %v", err)
	}

	src = testSource()
	src.UserName = ""
	if _, _, err := Lines(src); !errors.Is(err, ErrMissingMetadata) {
		t.Fatalf("expected ErrMissingMetadata, got %v", err)
	}
}

func TestWorldbookExport(t *testing.T) {
	data, skipped, err := Worldbook(testSource())
	if err != nil {
		t.Fatalf("Worldbook failed: %v", err)
	}
	if skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", skipped)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("document not parseable: %v", err)
	}
	if len(doc.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(doc.Entries))
	}

	char := doc.Entries["1"]
	if char.UID != 1 || char.Order != 1 || char.DisplayIndex != 1 {
		t.Errorf("index-derived fields wrong: %+v", char)
	}
	if char.Role != EntryRoleCharacter {
		t.Errorf("character role = %d", char.Role)
	}
	if char.Comment != "#1 - Seraphina" {
		t.Errorf("comment = %q", char.Comment)
	}
	if char.Content != "hi there" {
		t.Errorf("content = %q", char.Content)
	}
	if !char.Constant || !char.AddMemo || !char.UseProbability {
		t.Errorf("fixed booleans wrong: %+v", char)
	}
	if char.Position != EntryPosition || char.Probability != 100 || char.GroupWeight != 100 {
		t.Errorf("fixed numerics wrong: %+v", char)
	}
	if char.Key == nil || char.Keysecondary == nil {
		t.Error("key arrays must be present, not null")
	}

	user := doc.Entries["2"]
	if user.Role != EntryRoleUser {
		t.Errorf("user role = %d", user.Role)
	}
}

func TestWorldbookNoEntries(t *testing.T) {
	src := testSource()
	src.Records = []types.FavoriteRecord{{ID: "gone", MessageID: "99"}}
	_, skipped, err := Worldbook(src)
	if !errors.Is(err, ErrNoEntries) {
		t.Fatalf("expected ErrNoEntries, got %v", err)
	}
	if skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", skipped)
	}
}

func TestFormatsAgreeOnResolvableSet(t *testing.T) {
	src := testSource()

	txt := Text(src, time.Now())
	unavailable := strings.Count(txt, UnavailableMarker)

	_, linesSkipped, err := Lines(src)
	if err != nil {
		t.Fatalf("Lines failed: %v", err)
	}
	_, wbSkipped, err := Worldbook(src)
	if err != nil {
		t.Fatalf("Worldbook failed: %v", err)
	}

	if unavailable != linesSkipped || linesSkipped != wbSkipped {
		t.Errorf("formats disagree: txt=%d jsonl=%d worldbook=%d",
			unavailable, linesSkipped, wbSkipped)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`a/b\c:d`, "abcd"},
		{`what?"why"<ok>|`, "whatwhyok"},
		{"  padded  ", "padded"},
		{`\/:*?"<>|`, "export"},
		{"", "export"},
	}
	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	long := SanitizeFilename(strings.Repeat("x", 80))
	if len(long) != 50 {
		t.Errorf("expected 50-char cap, got %d", len(long))
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 8, 27, 9, 30, 15, 0, time.UTC)
	got := Filename("Sera/phina", "favorites", "chat-abc", at, "txt")
	want := "Seraphina-favorites-chat-abc-20260827093015.txt"
	if got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}
}

func TestWriterProducesFiles(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 8, 27, 9, 30, 15, 0, time.UTC)
	w := Writer{Dir: dir, Now: func() time.Time { return at }}
	src := testSource()

	for _, write := range []func(Source) (string, error){w.WriteText, w.WriteLines, w.WriteWorldbook} {
		path, err := write(src)
		if err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if filepath.Dir(path) != dir {
			t.Errorf("file written outside target dir: %s", path)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", path)
		}
	}
}
