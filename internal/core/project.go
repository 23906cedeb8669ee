package core

import (
	"fmt"
	"os"
	"path/filepath"
)

// Project represents a starmark data directory.
type Project struct {
	Root   string
	DBPath string
}

// DataDir returns the .starmark directory for the project.
func (p Project) DataDir() string {
	return filepath.Dir(p.DBPath)
}

// MarkerPath returns the current-conversation marker file, written on
// every switch so other processes can observe navigation.
func (p Project) MarkerPath() string {
	return filepath.Join(p.DataDir(), "current")
}

// DiscoverProject walks up from startDir to find a .starmark directory.
func DiscoverProject(startDir string) (Project, error) {
	current := startDir
	if current == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Project{}, err
		}
		current = cwd
	}
	current, err := filepath.Abs(current)
	if err != nil {
		return Project{}, err
	}

	for {
		dir := filepath.Join(current, ".starmark")
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			dbPath := filepath.Join(dir, "starmark.db")
			if _, err := os.Stat(dbPath); err != nil {
				return Project{}, fmt.Errorf("starmark database not found. Run 'starmark init' first")
			}
			return Project{Root: current, DBPath: dbPath}, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return Project{}, fmt.Errorf("not initialized. Run 'starmark init' first")
		}
		current = parent
	}
}

// InitProject initializes a new starmark project at dir.
func InitProject(dir string, force bool) (Project, error) {
	root := dir
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Project{}, err
		}
		root = cwd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return Project{}, err
	}

	dataDir := filepath.Join(root, ".starmark")
	dbPath := filepath.Join(dataDir, "starmark.db")

	if _, err := os.Stat(dbPath); err == nil && !force {
		return Project{}, fmt.Errorf("already initialized. Use --force to reinitialize")
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return Project{}, err
	}
	if force {
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			return Project{}, err
		}
	}

	return Project{Root: root, DBPath: dbPath}, nil
}
