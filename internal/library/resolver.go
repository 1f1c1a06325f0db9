package library

import (
	"database/sql"
	"errors"
)

// resolveArtist looks up an artist by exact name, inserting it on first
// sight. Identity is byte-exact string equality; no case folding is applied.
func resolveArtist(ex executor, name string) (int64, error) {
	var id int64
	err := ex.QueryRow(`SELECT id FROM artists WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	result, err := ex.Exec(`INSERT INTO artists (name) VALUES (?)`, name)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// resolveAlbum looks up an album by (name, artist), inserting it on first
// sight. An existing album without artwork is filled in once when the
// incoming song supplies a cover; stored artwork is never overwritten.
func resolveAlbum(ex executor, name string, artistID int64, year *int, artwork *string) (int64, error) {
	var (
		id     int64
		stored sql.NullString
	)
	err := ex.QueryRow(
		`SELECT id, artwork_path FROM albums WHERE name = ? AND artist_id = ?`,
		name, artistID,
	).Scan(&id, &stored)
	if err == nil {
		if artwork != nil && !stored.Valid {
			if _, err := ex.Exec(`UPDATE albums SET artwork_path = ? WHERE id = ?`, *artwork, id); err != nil {
				return 0, err
			}
		}
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	result, err := ex.Exec(
		`INSERT INTO albums (name, artist_id, year, artwork_path) VALUES (?, ?, ?, ?)`,
		name, artistID, year, artwork,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
