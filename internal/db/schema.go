package db

import (
	"database/sql"
	"fmt"
)

const schemaSQL = `
-- Characters and groups that own conversations
CREATE TABLE IF NOT EXISTS star_entities (
  id TEXT PRIMARY KEY,                 -- e.g., "char-x9y8z7w6"
  kind TEXT NOT NULL,                  -- 'character' | 'group'
  name TEXT NOT NULL
);

-- Conversations. The id is derived from the display name, so a rename
-- produces a new id; callers must re-resolve after renaming.
CREATE TABLE IF NOT EXISTS star_conversations (
  id TEXT PRIMARY KEY,                 -- e.g., "late-night-a1b2c3d4"
  entity_id TEXT NOT NULL,
  name TEXT NOT NULL,
  created_at INTEGER NOT NULL,         -- unix timestamp
  metadata TEXT NOT NULL DEFAULT '{}', -- JSON bag; favorites live inside
  FOREIGN KEY (entity_id) REFERENCES star_entities(id)
);

CREATE INDEX IF NOT EXISTS idx_star_conversations_entity ON star_conversations(entity_id);

-- Ordered message sequence per conversation
CREATE TABLE IF NOT EXISTS star_messages (
  conversation_id TEXT NOT NULL,
  position INTEGER NOT NULL,           -- zero-based index
  sender TEXT NOT NULL,
  is_user INTEGER NOT NULL DEFAULT 0,
  body TEXT NOT NULL,
  send_date INTEGER,                   -- unix timestamp, optional
  extra TEXT NOT NULL DEFAULT '{}',    -- JSON auxiliary fields
  PRIMARY KEY (conversation_id, position)
);

-- One preview conversation per owning entity, reused across previews
CREATE TABLE IF NOT EXISTS star_preview_map (
  entity_id TEXT PRIMARY KEY,
  conversation_id TEXT NOT NULL
);

-- Process-shared key/value state (current conversation, user name)
CREATE TABLE IF NOT EXISTS star_state (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`

// InitSchema creates all tables if they do not exist.
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}
