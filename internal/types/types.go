package types

import "encoding/json"

// Role identifies who authored a favorited message.
type Role string

const (
	RoleUser      Role = "user"
	RoleCharacter Role = "character"
)

// Message is one entry in a conversation's message sequence.
// JSON field names follow the on-disk chat line format.
type Message struct {
	Sender   string         `json:"name"`
	IsUser   bool           `json:"is_user"`
	Body     string         `json:"mes"`
	SendDate int64          `json:"send_date,omitempty"`
	Swipes   []string       `json:"swipes,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// Role returns the author role implied by the user flag.
func (m Message) Role() Role {
	if m.IsUser {
		return RoleUser
	}
	return RoleCharacter
}

// Clone deep-copies a message so callers can mutate it without
// aliasing the host's message array. Auxiliary collections are
// always materialized because the renderer expects them present.
func (m Message) Clone() Message {
	out := m
	out.Swipes = make([]string, len(m.Swipes))
	copy(out.Swipes, m.Swipes)
	out.Extra = make(map[string]any, len(m.Extra))
	for k, v := range m.Extra {
		out.Extra[k] = v
	}
	return out
}

// FavoriteRecord marks one message in a conversation as a favorite.
// MessageID is the string form of the message's position at favoriting
// time; the referenced message may later be deleted or reordered.
type FavoriteRecord struct {
	ID        string `json:"id"`
	MessageID string `json:"messageId"`
	Sender    string `json:"sender"`
	Role      Role   `json:"role"`
	Note      string `json:"note"`
}

// ChatContext identifies the live conversation and its owner.
// Exactly one of CharacterID or GroupID is set.
type ChatContext struct {
	CharacterID    string
	GroupID        string
	ConversationID string
	UserName       string
	CharacterName  string
}

// EntityID returns the owning entity: the group if the conversation
// belongs to one, the character otherwise.
func (c ChatContext) EntityID() string {
	if c.GroupID != "" {
		return c.GroupID
	}
	return c.CharacterID
}

// Valid reports whether an owning entity is selected.
func (c ChatContext) Valid() bool {
	return c.CharacterID != "" || c.GroupID != ""
}

// ConversationMeta is the host conversation's metadata bag. The
// favorites array is the one field this system owns; everything else
// belongs to the host and is carried through round-trips untouched.
type ConversationMeta struct {
	Favorites []FavoriteRecord
	Fields    map[string]json.RawMessage
}

// MarshalJSON emits host fields plus the favorites array.
func (m ConversationMeta) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(m.Fields)+1)
	for k, v := range m.Fields {
		out[k] = v
	}
	if m.Favorites != nil {
		raw, err := json.Marshal(m.Favorites)
		if err != nil {
			return nil, err
		}
		out["favorites"] = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits the favorites array out of the bag.
func (m *ConversationMeta) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if fav, ok := raw["favorites"]; ok {
		if err := json.Unmarshal(fav, &m.Favorites); err != nil {
			return err
		}
		delete(raw, "favorites")
	}
	m.Fields = raw
	return nil
}

// Entity is a character or group that conversations belong to.
type Entity struct {
	ID   string `json:"id"`
	Kind string `json:"kind"` // "character" | "group"
	Name string `json:"name"`
}

// Conversation is a host conversation row.
type Conversation struct {
	ID        string `json:"id"`
	EntityID  string `json:"entity_id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}
