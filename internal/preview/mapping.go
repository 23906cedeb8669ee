package preview

import (
	"database/sql"

	"github.com/uhhhh15/starmark/internal/db"
)

// DBMapping persists the preview mapping in the project database.
type DBMapping struct {
	DB *sql.DB
}

// Get implements Mapping.
func (m DBMapping) Get(entityID string) (string, bool, error) {
	return db.GetPreviewConversation(m.DB, entityID)
}

// Set implements Mapping.
func (m DBMapping) Set(entityID, conversationID string) error {
	return db.SetPreviewConversation(m.DB, entityID, conversationID)
}
