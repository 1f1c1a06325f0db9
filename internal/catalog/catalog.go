// Package catalog owns the on-disk song catalogue: opening the SQLite file,
// creating the schema, applying additive migrations and deleting the file set
// on reset. All other packages receive the *sql.DB it opens.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "melodex"
	dbFileName = "melodex.db"
)

// Catalog wraps the catalogue database file.
type Catalog struct {
	db   *sql.DB
	path string
}

// DefaultPath returns the catalogue location in the user data directory.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

// Open opens (or creates) the catalogue at path and brings the schema up to
// date. WAL mode keeps readers unblocked during scans and survives an abrupt
// process kill.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create catalogue directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalogue: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{db: db, path: path}, nil
}

// DB exposes the underlying connection for the repository packages.
func (c *Catalog) DB() *sql.DB {
	return c.db
}

// Path returns the catalogue file location.
func (c *Catalog) Path() string {
	return c.path
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// Reset closes the catalogue and removes the database file together with its
// WAL sidecars. The caller is expected to restart the process afterwards.
func (c *Catalog) Reset() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close catalogue: %w", err)
	}

	for _, name := range []string{c.path, c.path + "-wal", c.path + "-shm"} {
		if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}
