package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/uhhhh15/starmark/internal/types"
)

// AppendMessage inserts a message at the end of the sequence and
// returns its zero-based position.
func AppendMessage(db *sql.DB, conversationID string, msg types.Message) (int, error) {
	extra := "{}"
	if len(msg.Extra) > 0 {
		raw, err := json.Marshal(msg.Extra)
		if err != nil {
			return 0, fmt.Errorf("encode extra: %w", err)
		}
		extra = string(raw)
	}

	var next int
	err := db.QueryRow(`
		SELECT COALESCE(MAX(position) + 1, 0) FROM star_messages WHERE conversation_id = ?
	`, conversationID).Scan(&next)
	if err != nil {
		return 0, err
	}

	_, err = db.Exec(`
		INSERT INTO star_messages (conversation_id, position, sender, is_user, body, send_date, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, conversationID, next, msg.Sender, boolToInt(msg.IsUser), msg.Body, nullInt64(msg.SendDate), extra)
	if err != nil {
		return 0, err
	}
	return next, nil
}

// GetMessages returns the ordered message sequence of a conversation.
func GetMessages(db *sql.DB, conversationID string) ([]types.Message, error) {
	rows, err := db.Query(`
		SELECT sender, is_user, body, send_date, extra
		FROM star_messages
		WHERE conversation_id = ?
		ORDER BY position
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []types.Message
	for rows.Next() {
		var (
			m        types.Message
			isUser   int
			sendDate sql.NullInt64
			extra    string
		)
		if err := rows.Scan(&m.Sender, &isUser, &m.Body, &sendDate, &extra); err != nil {
			return nil, err
		}
		m.IsUser = isUser != 0
		if sendDate.Valid {
			m.SendDate = sendDate.Int64
		}
		if extra != "" && extra != "{}" {
			if err := json.Unmarshal([]byte(extra), &m.Extra); err != nil {
				return nil, fmt.Errorf("decode extra: %w", err)
			}
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// DeleteMessage removes the message at position and renumbers the
// remainder so positions stay dense.
func DeleteMessage(db *sql.DB, conversationID string, position int) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		DELETE FROM star_messages WHERE conversation_id = ? AND position = ?
	`, conversationID, position)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no message at index %d", position)
	}
	if _, err := tx.Exec(`
		UPDATE star_messages SET position = position - 1
		WHERE conversation_id = ? AND position > ?
	`, conversationID, position); err != nil {
		return err
	}
	return tx.Commit()
}

// ClearMessages removes every message in a conversation.
func ClearMessages(db *sql.DB, conversationID string) error {
	_, err := db.Exec(`
		DELETE FROM star_messages WHERE conversation_id = ?
	`, conversationID)
	return err
}

// CountMessages returns the number of messages in a conversation.
func CountMessages(db *sql.DB, conversationID string) (int, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM star_messages WHERE conversation_id = ?
	`, conversationID).Scan(&count)
	return count, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullInt64(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}
