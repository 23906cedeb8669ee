package db

import "database/sql"

// GetPreviewConversation returns the conversation id most recently used
// as an entity's preview conversation, if any.
func GetPreviewConversation(db *sql.DB, entityID string) (string, bool, error) {
	var id string
	err := db.QueryRow(`
		SELECT conversation_id FROM star_preview_map WHERE entity_id = ?
	`, entityID).Scan(&id)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// SetPreviewConversation records the preview conversation for an entity.
// Entries are updated in place and never expire.
func SetPreviewConversation(db *sql.DB, entityID, conversationID string) error {
	_, err := db.Exec(`
		INSERT INTO star_preview_map (entity_id, conversation_id)
		VALUES (?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET conversation_id = excluded.conversation_id
	`, entityID, conversationID)
	return err
}
