package host

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/uhhhh15/starmark/internal/core"
	"github.com/uhhhh15/starmark/internal/db"
	"github.com/uhhhh15/starmark/internal/types"
)

func openTestHost(t *testing.T) *Local {
	t.Helper()
	root := t.TempDir()
	project, err := core.InitProject(root, false)
	if err != nil {
		t.Fatalf("InitProject failed: %v", err)
	}

	conn, err := db.OpenDatabase(project)
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	if err := db.CreateEntity(conn, types.Entity{ID: "char-1", Kind: "character", Name: "Sera"}); err != nil {
		t.Fatal(err)
	}
	if err := db.SetState(conn, db.StateUserName, "Alice"); err != nil {
		t.Fatal(err)
	}
	conn.Close()

	l, err := Open(project)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestContextWithoutConversation(t *testing.T) {
	l := openTestHost(t)
	if _, err := l.Context(); !errors.Is(err, ErrNoContext) {
		t.Fatalf("expected ErrNoContext, got %v", err)
	}
	if _, err := l.Meta(); !errors.Is(err, ErrNoContext) {
		t.Fatalf("expected ErrNoContext, got %v", err)
	}
	if err := l.InsertMessage(types.Message{Body: "x"}); !errors.Is(err, ErrNoContext) {
		t.Fatalf("expected ErrNoContext, got %v", err)
	}
}

func TestCreateConversationBecomesLive(t *testing.T) {
	l := openTestHost(t)

	id, err := l.CreateConversation("char-1")
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}

	ctx, err := l.Context()
	if err != nil {
		t.Fatalf("Context failed: %v", err)
	}
	if ctx.ConversationID != id {
		t.Errorf("live id %s, created %s", ctx.ConversationID, id)
	}
	if ctx.CharacterID != "char-1" || ctx.GroupID != "" {
		t.Errorf("unexpected owner: %+v", ctx)
	}
	if ctx.UserName != "Alice" || ctx.CharacterName != "Sera" {
		t.Errorf("unexpected names: %+v", ctx)
	}

	// The marker file records the switch for other processes.
	data, err := os.ReadFile(l.Project().MarkerPath())
	if err != nil {
		t.Fatalf("marker missing: %v", err)
	}
	if strings.TrimSpace(string(data)) != id {
		t.Errorf("marker = %q, want %s", data, id)
	}
}

func TestInsertDeleteUpdate(t *testing.T) {
	l := openTestHost(t)
	if _, err := l.CreateConversation("char-1"); err != nil {
		t.Fatal(err)
	}

	for _, body := range []string{"one", "two", "three"} {
		if err := l.InsertMessage(types.Message{Sender: "Sera", Body: body}); err != nil {
			t.Fatalf("InsertMessage failed: %v", err)
		}
	}
	if l.MessageCount() != 3 {
		t.Fatalf("count = %d", l.MessageCount())
	}

	if err := l.DeleteMessage(1); err != nil {
		t.Fatalf("DeleteMessage failed: %v", err)
	}
	msg, ok := l.MessageAt(1)
	if !ok || msg.Body != "three" {
		t.Errorf("expected shifted message at 1, got %+v ok=%v", msg, ok)
	}
	if err := l.DeleteMessage(5); err == nil {
		t.Error("expected error for out-of-range delete")
	}

	if err := l.UpdateMessage(0, "edited"); err != nil {
		t.Fatalf("UpdateMessage failed: %v", err)
	}
	msg, _ = l.MessageAt(0)
	if msg.Body != "edited" {
		t.Errorf("update not applied: %q", msg.Body)
	}
}

func TestMessagesSurviveReopen(t *testing.T) {
	l := openTestHost(t)
	id, err := l.CreateConversation("char-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.InsertMessage(types.Message{Sender: "Sera", Body: "persisted"}); err != nil {
		t.Fatal(err)
	}
	project := l.Project()
	l.Close()

	reopened, err := Open(project)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	ctx, err := reopened.Context()
	if err != nil {
		t.Fatalf("Context after reopen failed: %v", err)
	}
	if ctx.ConversationID != id {
		t.Errorf("current conversation not restored: %s", ctx.ConversationID)
	}
	msg, ok := reopened.MessageAt(0)
	if !ok || msg.Body != "persisted" {
		t.Errorf("messages not restored: %+v ok=%v", msg, ok)
	}
}

func TestMetadataFlushPersists(t *testing.T) {
	l := openTestHost(t)
	id, err := l.CreateConversation("char-1")
	if err != nil {
		t.Fatal(err)
	}

	meta, err := l.Meta()
	if err != nil {
		t.Fatalf("Meta failed: %v", err)
	}
	meta.Favorites = []types.FavoriteRecord{{ID: "f1", MessageID: "0", Sender: "Sera", Role: types.RoleCharacter}}
	l.SaveDebounced()
	l.Flush()

	got, err := db.GetMetadata(l.DB(), id)
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if len(got.Favorites) != 1 || got.Favorites[0].ID != "f1" {
		t.Errorf("favorites not persisted: %+v", got.Favorites)
	}
}

func TestRenameChangesLiveID(t *testing.T) {
	l := openTestHost(t)
	oldID, err := l.CreateConversation("char-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.InsertMessage(types.Message{Sender: "Sera", Body: "kept"}); err != nil {
		t.Fatal(err)
	}

	if err := l.RenameConversation("Epic Adventure"); err != nil {
		t.Fatalf("RenameConversation failed: %v", err)
	}

	ctx, err := l.Context()
	if err != nil {
		t.Fatal(err)
	}
	if ctx.ConversationID == oldID {
		t.Error("conversation id should change with the name")
	}
	if !strings.HasPrefix(ctx.ConversationID, "epic-adventure-") {
		t.Errorf("id not derived from name: %s", ctx.ConversationID)
	}
	name, err := l.ConversationName(ctx.ConversationID)
	if err != nil || name != "Epic Adventure" {
		t.Errorf("name = %q err %v", name, err)
	}
	msg, ok := l.MessageAt(0)
	if !ok || msg.Body != "kept" {
		t.Errorf("messages lost across rename: %+v ok=%v", msg, ok)
	}
}

func TestSwitchEmitsConversationChanged(t *testing.T) {
	l := openTestHost(t)
	first, err := l.CreateConversation("char-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.CreateConversation("char-1"); err != nil {
		t.Fatal(err)
	}

	events, cancel := l.Bus().Subscribe()
	defer cancel()

	if err := l.SwitchConversation(first); err != nil {
		t.Fatalf("SwitchConversation failed: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Type != EventConversationChanged || ev.ConversationID != first {
			t.Errorf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("no event emitted")
	}
}

func TestClearConversation(t *testing.T) {
	l := openTestHost(t)
	if _, err := l.CreateConversation("char-1"); err != nil {
		t.Fatal(err)
	}
	if err := l.InsertMessage(types.Message{Sender: "Sera", Body: "x"}); err != nil {
		t.Fatal(err)
	}

	if err := l.ClearConversation(); err != nil {
		t.Fatalf("ClearConversation failed: %v", err)
	}
	if l.VisibleCount() != 0 {
		t.Errorf("visible count = %d after clear", l.VisibleCount())
	}
}

func TestDiscoverFromSubdirectory(t *testing.T) {
	l := openTestHost(t)
	root := l.Project().Root

	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	found, err := core.DiscoverProject(sub)
	if err != nil {
		t.Fatalf("DiscoverProject failed: %v", err)
	}
	if found.Root != root {
		t.Errorf("discovered %s, want %s", found.Root, root)
	}
}
