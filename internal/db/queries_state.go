package db

import "database/sql"

const (
	StateCurrentConversation = "current_conversation"
	StateUserName            = "user_name"
	StatePreviewReturn       = "preview_return"
)

// GetState returns a state value, or empty string if unset.
func GetState(db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM star_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetState upserts a state value.
func SetState(db *sql.DB, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO star_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
