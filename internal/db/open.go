package db

import (
	"database/sql"

	"github.com/uhhhh15/starmark/internal/core"
	_ "modernc.org/sqlite"
)

// OpenDatabase opens the project database and applies the schema.
func OpenDatabase(project core.Project) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", project.DBPath)
	if err != nil {
		return nil, err
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY between the debounced saver and foreground queries.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := InitSchema(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}
