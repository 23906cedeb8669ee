package db

import (
	"database/sql"

	"github.com/uhhhh15/starmark/internal/types"
)

// CreateEntity inserts a character or group.
func CreateEntity(db *sql.DB, entity types.Entity) error {
	_, err := db.Exec(`
		INSERT INTO star_entities (id, kind, name)
		VALUES (?, ?, ?)
	`, entity.ID, entity.Kind, entity.Name)
	return err
}

// GetEntity returns an entity by id, or nil if absent.
func GetEntity(db *sql.DB, id string) (*types.Entity, error) {
	row := db.QueryRow(`
		SELECT id, kind, name FROM star_entities WHERE id = ?
	`, id)
	var e types.Entity
	err := row.Scan(&e.ID, &e.Kind, &e.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEntities returns all entities.
func ListEntities(db *sql.DB) ([]types.Entity, error) {
	rows, err := db.Query(`SELECT id, kind, name FROM star_entities ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []types.Entity
	for rows.Next() {
		var e types.Entity
		if err := rows.Scan(&e.ID, &e.Kind, &e.Name); err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}
