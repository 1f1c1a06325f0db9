// Package playlists manages user playlists, the recently-played history and
// the favorites set.
package playlists

import (
	"database/sql"
	"errors"
	"time"

	"github.com/avernet/melodex/internal/catalog"
	"github.com/avernet/melodex/internal/library"
)

// Playlist is a user playlist with its aggregated song count.
type Playlist struct {
	ID          int64
	Name        string
	Description *string
	Artwork     *string
	SongCount   int
	CreatedAt   int64
}

// Playlists provides database operations for playlists, history and
// favorites.
type Playlists struct {
	db *sql.DB
}

// New creates a new Playlists instance.
func New(db *sql.DB) *Playlists {
	return &Playlists{db: db}
}

// Create creates an empty playlist and returns its id.
func (p *Playlists) Create(name string, description, artwork *string) (int64, error) {
	if name == "" {
		return 0, errors.New("playlist name is required")
	}
	result, err := p.db.Exec(`
		INSERT INTO playlists (name, description, artwork_path, created_at)
		VALUES (?, ?, ?, ?)
	`, name, description, artwork, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// CreateWithSongs atomically creates a playlist and its memberships.
// Duplicate song ids in the input are absorbed by the unique pair constraint.
func (p *Playlists) CreateWithSongs(name string, description, artwork *string, songIDs []int64) (int64, error) {
	if name == "" {
		return 0, errors.New("playlist name is required")
	}

	var id int64
	err := catalog.WithTx(p.db, func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			INSERT INTO playlists (name, description, artwork_path, created_at)
			VALUES (?, ?, ?, ?)
		`, name, description, artwork, time.Now().Unix())
		if err != nil {
			return err
		}
		id, err = result.LastInsertId()
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT OR IGNORE INTO playlist_songs (playlist_id, song_id) VALUES (?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, songID := range songIDs {
			if _, err := stmt.Exec(id, songID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// List returns all playlists with their song counts, ordered by name.
// Empty playlists count zero.
func (p *Playlists) List() ([]Playlist, error) {
	rows, err := p.db.Query(`
		SELECT pl.id, pl.name, pl.description, pl.artwork_path, pl.created_at,
			COUNT(ps.song_id)
		FROM playlists pl
		LEFT JOIN playlist_songs ps ON ps.playlist_id = pl.id
		GROUP BY pl.id
		ORDER BY pl.name COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	playlists := make([]Playlist, 0)
	for rows.Next() {
		pl, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, pl)
	}
	return playlists, rows.Err()
}

func scanPlaylist(rows *sql.Rows) (Playlist, error) {
	var (
		pl          Playlist
		description sql.NullString
		artwork     sql.NullString
	)
	err := rows.Scan(&pl.ID, &pl.Name, &description, &artwork, &pl.CreatedAt, &pl.SongCount)
	if err != nil {
		return Playlist{}, err
	}
	pl.Description = catalog.NullStringToPtr(description)
	pl.Artwork = catalog.NullStringToPtr(artwork)
	return pl, nil
}

// Get returns a playlist by id, or nil when absent.
func (p *Playlists) Get(id int64) (*Playlist, error) {
	row := p.db.QueryRow(`
		SELECT pl.id, pl.name, pl.description, pl.artwork_path, pl.created_at,
			COUNT(ps.song_id)
		FROM playlists pl
		LEFT JOIN playlist_songs ps ON ps.playlist_id = pl.id
		WHERE pl.id = ?
		GROUP BY pl.id
	`, id)

	var (
		pl          Playlist
		description sql.NullString
		artwork     sql.NullString
	)
	err := row.Scan(&pl.ID, &pl.Name, &description, &artwork, &pl.CreatedAt, &pl.SongCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	pl.Description = catalog.NullStringToPtr(description)
	pl.Artwork = catalog.NullStringToPtr(artwork)
	return &pl, nil
}

// Rename renames a playlist.
func (p *Playlists) Rename(id int64, name string) error {
	if name == "" {
		return errors.New("playlist name is required")
	}
	_, err := p.db.Exec(`UPDATE playlists SET name = ? WHERE id = ?`, name, id)
	return err
}

// Delete deletes a playlist; memberships cascade.
func (p *Playlists) Delete(id int64) error {
	_, err := p.db.Exec(`DELETE FROM playlists WHERE id = ?`, id)
	return err
}

// Songs returns a playlist's songs in the order they were added.
func (p *Playlists) Songs(playlistID int64) ([]library.Song, error) {
	rows, err := p.db.Query(`
		SELECT s.id, s.title, s.path, s.duration, s.album_id, s.artist_id,
			al.name, ar.name, COALESCE(s.artwork_path, al.artwork_path)
		FROM playlist_songs ps
		JOIN songs s ON s.id = ps.song_id
		JOIN albums al ON s.album_id = al.id
		JOIN artists ar ON s.artist_id = ar.id
		WHERE ps.playlist_id = ?
		ORDER BY ps.rowid
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	songs := make([]library.Song, 0)
	for rows.Next() {
		var (
			s        library.Song
			duration sql.NullFloat64
			artwork  sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Title, &s.Path, &duration, &s.AlbumID, &s.ArtistID,
			&s.Album, &s.Artist, &artwork); err != nil {
			return nil, err
		}
		s.Duration = catalog.NullFloatToPtr(duration)
		s.Artwork = catalog.NullStringToPtr(artwork)
		songs = append(songs, s)
	}
	return songs, rows.Err()
}

// AddSong adds a song to a playlist. Adding an existing membership is a
// no-op.
func (p *Playlists) AddSong(playlistID, songID int64) error {
	_, err := p.db.Exec(`
		INSERT OR IGNORE INTO playlist_songs (playlist_id, song_id) VALUES (?, ?)
	`, playlistID, songID)
	return err
}
