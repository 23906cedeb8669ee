// Package host defines the conversation-engine contract the favorites
// system runs against, plus a local SQLite-backed implementation.
package host

import (
	"errors"

	"github.com/uhhhh15/starmark/internal/types"
)

// ErrNoContext is returned when no conversation is active.
var ErrNoContext = errors.New("no active conversation context")

// Host is the narrow contract consumed from the conversation engine.
type Host interface {
	// Context describes the live conversation and its owning entity.
	Context() (types.ChatContext, error)

	// Messages returns the current ordered message sequence.
	Messages() []types.Message
	// MessageAt resolves a message by zero-based index.
	MessageAt(index int) (types.Message, bool)
	// MessageCount returns the length of the message sequence.
	MessageCount() int
	// VisibleCount returns how many messages the renderer shows.
	VisibleCount() int

	// Meta returns the live conversation's metadata bag. The pointer
	// stays valid until the next conversation switch.
	Meta() (*types.ConversationMeta, error)

	// ConversationName resolves a conversation's display name.
	ConversationName(id string) (string, error)

	// CreateConversation creates a conversation for the entity,
	// switches to it, and returns its id.
	CreateConversation(entityID string) (string, error)
	// SwitchConversation makes the given conversation live.
	SwitchConversation(id string) error
	// RenameConversation renames the live conversation. Renaming
	// changes the conversation id; callers re-resolve via Context.
	RenameConversation(name string) error
	// ClearConversation removes every message from the live conversation.
	ClearConversation() error
	// InsertMessage appends a message to the live conversation.
	InsertMessage(msg types.Message) error

	// SaveDebounced schedules a metadata flush. Fire-and-forget.
	SaveDebounced()

	// Bus exposes the lifecycle signal stream.
	Bus() *Bus
}
