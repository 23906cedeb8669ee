package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uhhhh15/starmark/internal/types"
)

// CreateConversation inserts a conversation with empty metadata.
func CreateConversation(db *sql.DB, conv types.Conversation) error {
	if conv.CreatedAt == 0 {
		conv.CreatedAt = time.Now().Unix()
	}
	_, err := db.Exec(`
		INSERT INTO star_conversations (id, entity_id, name, created_at, metadata)
		VALUES (?, ?, ?, ?, '{}')
	`, conv.ID, conv.EntityID, conv.Name, conv.CreatedAt)
	return err
}

// GetConversation returns a conversation by id, or nil if absent.
func GetConversation(db *sql.DB, id string) (*types.Conversation, error) {
	row := db.QueryRow(`
		SELECT id, entity_id, name, created_at FROM star_conversations WHERE id = ?
	`, id)
	var c types.Conversation
	err := row.Scan(&c.ID, &c.EntityID, &c.Name, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListConversations returns the conversations owned by an entity.
func ListConversations(db *sql.DB, entityID string) ([]types.Conversation, error) {
	rows, err := db.Query(`
		SELECT id, entity_id, name, created_at
		FROM star_conversations
		WHERE entity_id = ?
		ORDER BY created_at
	`, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []types.Conversation
	for rows.Next() {
		var c types.Conversation
		if err := rows.Scan(&c.ID, &c.EntityID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// RenameConversation moves a conversation to a new id and display name.
// Message rows and the current-state pointer follow the id change; the
// preview mapping is the caller's responsibility.
func RenameConversation(db *sql.DB, oldID, newID, newName string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE star_conversations SET id = ?, name = ? WHERE id = ?
	`, newID, newName, oldID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("conversation not found: %s", oldID)
	}
	if _, err := tx.Exec(`
		UPDATE star_messages SET conversation_id = ? WHERE conversation_id = ?
	`, newID, oldID); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		UPDATE star_state SET value = ? WHERE key = 'current_conversation' AND value = ?
	`, newID, oldID); err != nil {
		return err
	}
	return tx.Commit()
}

// GetMetadata loads the conversation metadata bag.
func GetMetadata(db *sql.DB, conversationID string) (*types.ConversationMeta, error) {
	var raw string
	err := db.QueryRow(`
		SELECT metadata FROM star_conversations WHERE id = ?
	`, conversationID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("conversation not found: %s", conversationID)
	}
	if err != nil {
		return nil, err
	}
	meta := &types.ConversationMeta{}
	if err := json.Unmarshal([]byte(raw), meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return meta, nil
}

// SaveMetadata writes the conversation metadata bag.
func SaveMetadata(db *sql.DB, conversationID string, meta *types.ConversationMeta) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	_, err = db.Exec(`
		UPDATE star_conversations SET metadata = ? WHERE id = ?
	`, string(raw), conversationID)
	return err
}
