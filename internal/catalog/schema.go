package catalog

import (
	"database/sql"
	"fmt"
	"log/slog"
)

const currentSchemaVersion = 3

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT
		);

		CREATE TABLE IF NOT EXISTS music_directories (
			path TEXT PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS artists (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS albums (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			artist_id INTEGER REFERENCES artists(id),
			year INTEGER,
			artwork_path TEXT,
			UNIQUE(name, artist_id)
		);

		CREATE TABLE IF NOT EXISTS songs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			path TEXT NOT NULL UNIQUE,
			duration REAL,
			album_id INTEGER REFERENCES albums(id),
			artist_id INTEGER REFERENCES artists(id),
			artwork_path TEXT
		);

		CREATE TABLE IF NOT EXISTS playlists (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT,
			artwork_path TEXT,
			created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS playlist_songs (
			playlist_id INTEGER NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			song_id INTEGER NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
			UNIQUE(playlist_id, song_id)
		);

		CREATE TABLE IF NOT EXISTS recently_played (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			item_id INTEGER NOT NULL,
			item_type TEXT NOT NULL,
			play_count INTEGER NOT NULL DEFAULT 1,
			played_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS favorites (
			item_id INTEGER NOT NULL,
			item_type TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY(item_id, item_type)
		);

		CREATE INDEX IF NOT EXISTS idx_songs_album_id ON songs(album_id);
		CREATE INDEX IF NOT EXISTS idx_songs_artist_id ON songs(artist_id);
		CREATE INDEX IF NOT EXISTS idx_albums_artist_id ON albums(artist_id);
		CREATE INDEX IF NOT EXISTS idx_artists_name ON artists(name);
		CREATE INDEX IF NOT EXISTS idx_recently_played_at ON recently_played(played_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	migrate(db)

	_, err = db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, currentSchemaVersion)
	if err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

// migrate adds columns introduced after the initial release. Catalogues are
// only ever extended with nullable columns, so failures are logged and the
// engine continues on whatever schema state resulted.
func migrate(db *sql.DB) {
	migrations := []struct {
		table  string
		column string
		ddl    string
	}{
		{"albums", "artwork_path", `ALTER TABLE albums ADD COLUMN artwork_path TEXT`},
		{"albums", "year", `ALTER TABLE albums ADD COLUMN year INTEGER`},
		{"songs", "artwork_path", `ALTER TABLE songs ADD COLUMN artwork_path TEXT`},
		{"playlists", "created_at", `ALTER TABLE playlists ADD COLUMN created_at INTEGER NOT NULL DEFAULT 0`},
	}

	for _, m := range migrations {
		has, err := hasColumn(db, m.table, m.column)
		if err != nil {
			slog.Warn("schema inspection failed", "table", m.table, "error", err)
			continue
		}
		if has {
			continue
		}
		if _, err := db.Exec(m.ddl); err != nil {
			slog.Warn("schema migration failed", "table", m.table, "column", m.column, "error", err)
		}
	}
}

func hasColumn(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name       string
			colType    string
			notNull    int
			dfltValue  sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &primaryKey); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// SchemaVersion reports the recorded schema version, 0 when unrecorded.
func SchemaVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	return version, err
}
