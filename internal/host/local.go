package host

import (
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/uhhhh15/starmark/internal/core"
	"github.com/uhhhh15/starmark/internal/db"
	"github.com/uhhhh15/starmark/internal/types"
)

const saveDelay = 100 * time.Millisecond

// Local is a SQLite-backed Host. It keeps the live conversation's
// messages and metadata in memory and flushes metadata through a
// debounced saver.
type Local struct {
	mu      sync.Mutex
	db      *sql.DB
	project core.Project
	bus     *Bus
	saver   *saveDebouncer

	current  string
	conv     *types.Conversation
	entity   *types.Entity
	messages []types.Message
	meta     *types.ConversationMeta
	userName string
}

// Open loads the project database and the current conversation, if any.
func Open(project core.Project) (*Local, error) {
	conn, err := db.OpenDatabase(project)
	if err != nil {
		return nil, err
	}

	l := &Local{
		db:      conn,
		project: project,
		bus:     NewBus(),
	}
	l.saver = newSaveDebouncer(saveDelay, l.flushMeta)

	current, err := db.GetState(conn, db.StateCurrentConversation)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	l.userName, err = db.GetState(conn, db.StateUserName)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if l.userName == "" {
		l.userName = "User"
	}

	if current != "" {
		if err := l.load(current); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	return l, nil
}

// DB exposes the underlying database for query helpers.
func (l *Local) DB() *sql.DB { return l.db }

// Project returns the project the host was opened on.
func (l *Local) Project() core.Project { return l.project }

// Bus returns the lifecycle signal stream.
func (l *Local) Bus() *Bus { return l.bus }

// Close flushes pending metadata and releases the database.
func (l *Local) Close() error {
	l.saver.Flush()
	return l.db.Close()
}

// load replaces the in-memory conversation state. Caller holds no lock.
func (l *Local) load(conversationID string) error {
	conv, err := db.GetConversation(l.db, conversationID)
	if err != nil {
		return err
	}
	if conv == nil {
		return fmt.Errorf("conversation not found: %s", conversationID)
	}
	entity, err := db.GetEntity(l.db, conv.EntityID)
	if err != nil {
		return err
	}
	msgs, err := db.GetMessages(l.db, conversationID)
	if err != nil {
		return err
	}
	meta, err := db.GetMetadata(l.db, conversationID)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.current = conversationID
	l.conv = conv
	l.entity = entity
	l.messages = msgs
	l.meta = meta
	l.mu.Unlock()
	return nil
}

// Context implements Host.
func (l *Local) Context() (types.ChatContext, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conv == nil || l.entity == nil {
		return types.ChatContext{}, ErrNoContext
	}
	ctx := types.ChatContext{
		ConversationID: l.current,
		UserName:       l.userName,
		CharacterName:  l.entity.Name,
	}
	if l.entity.Kind == "group" {
		ctx.GroupID = l.entity.ID
	} else {
		ctx.CharacterID = l.entity.ID
	}
	return ctx, nil
}

// Messages implements Host. The returned slice is a copy of the
// sequence; elements still share swipe/extra storage.
func (l *Local) Messages() []types.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// MessageAt implements Host.
func (l *Local) MessageAt(index int) (types.Message, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.messages) {
		return types.Message{}, false
	}
	return l.messages[index], true
}

// MessageCount implements Host.
func (l *Local) MessageCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}

// VisibleCount implements Host. The local renderer shows everything.
func (l *Local) VisibleCount() int {
	return l.MessageCount()
}

// Meta implements Host.
func (l *Local) Meta() (*types.ConversationMeta, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conv == nil {
		return nil, ErrNoContext
	}
	if l.meta == nil {
		l.meta = &types.ConversationMeta{}
	}
	return l.meta, nil
}

// ConversationName implements Host.
func (l *Local) ConversationName(id string) (string, error) {
	conv, err := db.GetConversation(l.db, id)
	if err != nil {
		return "", err
	}
	if conv == nil {
		return "", fmt.Errorf("conversation not found: %s", id)
	}
	return conv.Name, nil
}

// CreateConversation implements Host: creates, switches, announces.
func (l *Local) CreateConversation(entityID string) (string, error) {
	entity, err := db.GetEntity(l.db, entityID)
	if err != nil {
		return "", err
	}
	if entity == nil {
		return "", fmt.Errorf("entity not found: %s", entityID)
	}

	name := "New Chat " + time.Now().Format("2006-01-02 15:04:05")
	id, err := core.ConversationID(name)
	if err != nil {
		return "", err
	}
	if err := db.CreateConversation(l.db, types.Conversation{
		ID:       id,
		EntityID: entityID,
		Name:     name,
	}); err != nil {
		return "", err
	}
	if err := l.SwitchConversation(id); err != nil {
		return "", err
	}
	return id, nil
}

// SwitchConversation implements Host.
func (l *Local) SwitchConversation(id string) error {
	l.saver.Flush()
	if err := l.load(id); err != nil {
		return err
	}
	if err := db.SetState(l.db, db.StateCurrentConversation, id); err != nil {
		return err
	}
	l.writeMarker(id)
	l.bus.Emit(Event{Type: EventConversationChanged, ConversationID: id})
	return nil
}

// RenameConversation implements Host. The id changes with the name.
func (l *Local) RenameConversation(name string) error {
	l.saver.Flush()

	l.mu.Lock()
	if l.conv == nil {
		l.mu.Unlock()
		return ErrNoContext
	}
	oldID := l.current
	l.mu.Unlock()

	newID, err := core.ConversationID(name)
	if err != nil {
		return err
	}
	if err := db.RenameConversation(l.db, oldID, newID, name); err != nil {
		return err
	}

	l.mu.Lock()
	l.current = newID
	l.conv.ID = newID
	l.conv.Name = name
	l.mu.Unlock()

	l.writeMarker(newID)
	l.bus.Emit(Event{Type: EventConversationChanged, ConversationID: newID})
	return nil
}

// ClearConversation implements Host.
func (l *Local) ClearConversation() error {
	l.mu.Lock()
	if l.conv == nil {
		l.mu.Unlock()
		return ErrNoContext
	}
	id := l.current
	l.mu.Unlock()

	if err := db.ClearMessages(l.db, id); err != nil {
		return err
	}
	l.mu.Lock()
	l.messages = nil
	l.mu.Unlock()
	return nil
}

// InsertMessage implements Host.
func (l *Local) InsertMessage(msg types.Message) error {
	l.mu.Lock()
	if l.conv == nil {
		l.mu.Unlock()
		return ErrNoContext
	}
	id := l.current
	l.mu.Unlock()

	if msg.SendDate == 0 {
		msg.SendDate = time.Now().Unix()
	}
	if _, err := db.AppendMessage(l.db, id, msg); err != nil {
		return err
	}

	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()

	evType := EventMessageReceived
	if msg.IsUser {
		evType = EventMessageSent
	}
	l.bus.Emit(Event{Type: evType})
	return nil
}

// DeleteMessage removes the message at index and announces it.
func (l *Local) DeleteMessage(index int) error {
	l.mu.Lock()
	if l.conv == nil {
		l.mu.Unlock()
		return ErrNoContext
	}
	id := l.current
	if index < 0 || index >= len(l.messages) {
		l.mu.Unlock()
		return fmt.Errorf("no message at index %d", index)
	}
	l.mu.Unlock()

	if err := db.DeleteMessage(l.db, id, index); err != nil {
		return err
	}

	l.mu.Lock()
	l.messages = append(l.messages[:index], l.messages[index+1:]...)
	l.mu.Unlock()

	l.bus.Emit(Event{Type: EventMessageDeleted, Index: index})
	return nil
}

// UpdateMessage replaces the body of the message at index.
func (l *Local) UpdateMessage(index int, body string) error {
	l.mu.Lock()
	if l.conv == nil {
		l.mu.Unlock()
		return ErrNoContext
	}
	id := l.current
	if index < 0 || index >= len(l.messages) {
		l.mu.Unlock()
		return fmt.Errorf("no message at index %d", index)
	}
	l.messages[index].Body = body
	l.mu.Unlock()

	if _, err := l.db.Exec(`
		UPDATE star_messages SET body = ? WHERE conversation_id = ? AND position = ?
	`, body, id, index); err != nil {
		return err
	}
	l.bus.Emit(Event{Type: EventMessageUpdated, Index: index})
	return nil
}

// SaveDebounced implements Host.
func (l *Local) SaveDebounced() {
	l.saver.Schedule()
}

// Flush forces any pending metadata write. Used by tests and shutdown.
func (l *Local) Flush() {
	l.saver.Flush()
}

func (l *Local) flushMeta() {
	l.mu.Lock()
	id := l.current
	meta := l.meta
	l.mu.Unlock()
	if id == "" || meta == nil {
		return
	}
	if err := db.SaveMetadata(l.db, id, meta); err != nil {
		fmt.Fprintf(os.Stderr, "[host] metadata save failed: %v\n", err)
	}
}

func (l *Local) writeMarker(id string) {
	if err := os.WriteFile(l.project.MarkerPath(), []byte(id+"\n"), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "[host] marker write failed: %v\n", err)
	}
}
