package db

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/uhhhh15/starmark/internal/core"
	"github.com/uhhhh15/starmark/internal/types"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	root := t.TempDir()
	conn, err := OpenDatabase(core.Project{
		Root:   root,
		DBPath: filepath.Join(root, "starmark.db"),
	})
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestEntityRoundTrip(t *testing.T) {
	conn := openTestDB(t)

	entity := types.Entity{ID: "char-abc", Kind: "character", Name: "Seraphina"}
	if err := CreateEntity(conn, entity); err != nil {
		t.Fatalf("CreateEntity failed: %v", err)
	}

	got, err := GetEntity(conn, "char-abc")
	if err != nil {
		t.Fatalf("GetEntity failed: %v", err)
	}
	if got == nil || *got != entity {
		t.Errorf("got %+v, want %+v", got, entity)
	}

	missing, err := GetEntity(conn, "nope")
	if err != nil {
		t.Fatalf("GetEntity failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown entity, got %+v", missing)
	}
}

func TestMessagePositions(t *testing.T) {
	conn := openTestDB(t)

	if err := CreateEntity(conn, types.Entity{ID: "e1", Kind: "character", Name: "C"}); err != nil {
		t.Fatal(err)
	}
	if err := CreateConversation(conn, types.Conversation{ID: "c1", EntityID: "e1", Name: "Chat"}); err != nil {
		t.Fatal(err)
	}

	for i, body := range []string{"a", "b", "c"} {
		pos, err := AppendMessage(conn, "c1", types.Message{Sender: "C", Body: body})
		if err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
		if pos != i {
			t.Errorf("append %d got position %d", i, pos)
		}
	}

	if err := DeleteMessage(conn, "c1", 1); err != nil {
		t.Fatalf("DeleteMessage failed: %v", err)
	}

	// Positions renumber densely after a deletion.
	msgs, err := GetMessages(conn, "c1")
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Body != "a" || msgs[1].Body != "c" {
		t.Errorf("unexpected sequence: %+v", msgs)
	}
	pos, err := AppendMessage(conn, "c1", types.Message{Sender: "C", Body: "d"})
	if err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if pos != 2 {
		t.Errorf("append after delete got position %d, want 2", pos)
	}

	if err := DeleteMessage(conn, "c1", 9); err == nil {
		t.Error("expected error deleting a missing position")
	}

	if err := ClearMessages(conn, "c1"); err != nil {
		t.Fatalf("ClearMessages failed: %v", err)
	}
	count, err := CountMessages(conn, "c1")
	if err != nil || count != 0 {
		t.Errorf("count after clear = %d, err %v", count, err)
	}
}

func TestRenameConversationMovesID(t *testing.T) {
	conn := openTestDB(t)

	if err := CreateEntity(conn, types.Entity{ID: "e1", Kind: "character", Name: "C"}); err != nil {
		t.Fatal(err)
	}
	if err := CreateConversation(conn, types.Conversation{ID: "old-id", EntityID: "e1", Name: "Old"}); err != nil {
		t.Fatal(err)
	}
	if _, err := AppendMessage(conn, "old-id", types.Message{Sender: "C", Body: "hi"}); err != nil {
		t.Fatal(err)
	}
	if err := SetState(conn, StateCurrentConversation, "old-id"); err != nil {
		t.Fatal(err)
	}

	if err := RenameConversation(conn, "old-id", "new-id", "New"); err != nil {
		t.Fatalf("RenameConversation failed: %v", err)
	}

	old, err := GetConversation(conn, "old-id")
	if err != nil || old != nil {
		t.Errorf("old id still resolves: %+v err %v", old, err)
	}
	renamed, err := GetConversation(conn, "new-id")
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if renamed == nil || renamed.Name != "New" {
		t.Errorf("renamed row wrong: %+v", renamed)
	}

	msgs, err := GetMessages(conn, "new-id")
	if err != nil || len(msgs) != 1 {
		t.Errorf("messages did not follow the id: %+v err %v", msgs, err)
	}

	current, err := GetState(conn, StateCurrentConversation)
	if err != nil || current != "new-id" {
		t.Errorf("current pointer = %q err %v", current, err)
	}

	if err := RenameConversation(conn, "old-id", "x", "X"); err == nil {
		t.Error("expected error renaming a missing conversation")
	}
}

func TestMetadataPreservesHostFields(t *testing.T) {
	conn := openTestDB(t)

	if err := CreateEntity(conn, types.Entity{ID: "e1", Kind: "character", Name: "C"}); err != nil {
		t.Fatal(err)
	}
	if err := CreateConversation(conn, types.Conversation{ID: "c1", EntityID: "e1", Name: "Chat"}); err != nil {
		t.Fatal(err)
	}

	meta := &types.ConversationMeta{
		Favorites: []types.FavoriteRecord{{ID: "f1", MessageID: "0", Sender: "C", Role: types.RoleCharacter}},
		Fields:    map[string]json.RawMessage{"host_setting": json.RawMessage(`"keep me"`)},
	}
	if err := SaveMetadata(conn, "c1", meta); err != nil {
		t.Fatalf("SaveMetadata failed: %v", err)
	}

	got, err := GetMetadata(conn, "c1")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if len(got.Favorites) != 1 || got.Favorites[0].ID != "f1" {
		t.Errorf("favorites lost: %+v", got.Favorites)
	}
	if string(got.Fields["host_setting"]) != `"keep me"` {
		t.Errorf("host field lost: %s", got.Fields["host_setting"])
	}
}

func TestPreviewMapping(t *testing.T) {
	conn := openTestDB(t)

	_, ok, err := GetPreviewConversation(conn, "e1")
	if err != nil || ok {
		t.Errorf("expected miss, ok=%v err=%v", ok, err)
	}

	if err := SetPreviewConversation(conn, "e1", "c1"); err != nil {
		t.Fatalf("SetPreviewConversation failed: %v", err)
	}
	if err := SetPreviewConversation(conn, "e1", "c2"); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	id, ok, err := GetPreviewConversation(conn, "e1")
	if err != nil || !ok || id != "c2" {
		t.Errorf("got %q ok=%v err=%v, want c2", id, ok, err)
	}
}

func TestStateUpsert(t *testing.T) {
	conn := openTestDB(t)

	got, err := GetState(conn, StateUserName)
	if err != nil || got != "" {
		t.Errorf("unset key: got %q err %v", got, err)
	}

	if err := SetState(conn, StateUserName, "Alice"); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	if err := SetState(conn, StateUserName, "Bob"); err != nil {
		t.Fatalf("SetState upsert failed: %v", err)
	}

	got, err = GetState(conn, StateUserName)
	if err != nil || got != "Bob" {
		t.Errorf("got %q err %v, want Bob", got, err)
	}
}
