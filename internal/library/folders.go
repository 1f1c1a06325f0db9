package library

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/avernet/melodex/internal/catalog"
)

// MusicDirectories returns the watched folder paths.
func (l *Library) MusicDirectories() ([]string, error) {
	rows, err := l.db.Query(`SELECT path FROM music_directories ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dirs []string
	for rows.Next() {
		var dir string
		if err := rows.Scan(&dir); err != nil {
			return nil, err
		}
		dirs = append(dirs, dir)
	}
	return dirs, rows.Err()
}

// AddMusicDirectory registers a folder for scanning. Re-adding an existing
// folder is a no-op. Callers must pass normalized absolute paths: folder
// removal deletes songs by path prefix.
func (l *Library) AddMusicDirectory(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path is required")
	}
	_, err := l.db.Exec(`INSERT OR IGNORE INTO music_directories (path) VALUES (?)`, path)
	return err
}

// RemoveMusicDirectory unregisters a folder, deletes every song whose path is
// prefixed by it and sweeps the orphaned albums and artists, all in one
// transaction. The filesystem is not re-walked.
func (l *Library) RemoveMusicDirectory(path string) error {
	return catalog.WithTx(l.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM music_directories WHERE path = ?`, path); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM songs WHERE path LIKE ?`, path+"%"); err != nil {
			return err
		}
		return sweepOrphans(tx)
	})
}
