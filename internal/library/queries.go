package library

import (
	"database/sql"
	"errors"

	"github.com/avernet/melodex/internal/catalog"
)

const songColumns = `
	s.id, s.title, s.path, s.duration, s.album_id, s.artist_id,
	al.name, ar.name, COALESCE(s.artwork_path, al.artwork_path)
`

const songJoins = `
	FROM songs s
	JOIN albums al ON s.album_id = al.id
	JOIN artists ar ON s.artist_id = ar.id
`

func scanSong(rows *sql.Rows) (Song, error) {
	var (
		s        Song
		duration sql.NullFloat64
		artwork  sql.NullString
	)
	err := rows.Scan(&s.ID, &s.Title, &s.Path, &duration, &s.AlbumID, &s.ArtistID,
		&s.Album, &s.Artist, &artwork)
	if err != nil {
		return Song{}, err
	}
	s.Duration = catalog.NullFloatToPtr(duration)
	s.Artwork = catalog.NullStringToPtr(artwork)
	return s, nil
}

func collectSongs(rows *sql.Rows) ([]Song, error) {
	defer rows.Close()

	songs := make([]Song, 0)
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, s)
	}
	return songs, rows.Err()
}

// Songs returns a page of the library in stable browse order: artist name,
// album name, song id. limit <= 0 returns the whole library.
func (l *Library) Songs(limit, offset int) ([]Song, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := l.db.Query(`
		SELECT `+songColumns+songJoins+`
		ORDER BY ar.name, al.name, s.id
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectSongs(rows)
}

// CountSongs returns the total number of catalogued songs.
func (l *Library) CountSongs() (int, error) {
	var count int
	err := l.db.QueryRow(`SELECT COUNT(*) FROM songs`).Scan(&count)
	return count, err
}

// SongByID returns a song by id, or nil when absent.
func (l *Library) SongByID(id int64) (*Song, error) {
	rows, err := l.db.Query(`SELECT `+songColumns+songJoins+` WHERE s.id = ?`, id)
	if err != nil {
		return nil, err
	}
	songs, err := collectSongs(rows)
	if err != nil {
		return nil, err
	}
	if len(songs) == 0 {
		return nil, nil
	}
	return &songs[0], nil
}

// Albums returns all albums ordered by artist name then album name.
func (l *Library) Albums() ([]Album, error) {
	rows, err := l.db.Query(`
		SELECT al.id, al.name, al.artist_id, ar.name, al.year, al.artwork_path
		FROM albums al
		JOIN artists ar ON al.artist_id = ar.id
		ORDER BY ar.name, al.name
	`)
	if err != nil {
		return nil, err
	}
	return collectAlbums(rows)
}

func collectAlbums(rows *sql.Rows) ([]Album, error) {
	defer rows.Close()

	albums := make([]Album, 0)
	for rows.Next() {
		var (
			a       Album
			year    sql.NullInt64
			artwork sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.ArtistID, &a.Artist, &year, &artwork); err != nil {
			return nil, err
		}
		a.Year = catalog.NullIntToPtr(year)
		a.Artwork = catalog.NullStringToPtr(artwork)
		albums = append(albums, a)
	}
	return albums, rows.Err()
}

// Artists returns all artists ordered by name. Artwork is the first non-null
// album cover belonging to the artist.
func (l *Library) Artists() ([]Artist, error) {
	rows, err := l.db.Query(`
		SELECT ar.id, ar.name,
			(SELECT al.artwork_path FROM albums al
			 WHERE al.artist_id = ar.id AND al.artwork_path IS NOT NULL LIMIT 1)
		FROM artists ar
		ORDER BY ar.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	artists := make([]Artist, 0)
	for rows.Next() {
		var (
			a       Artist
			artwork sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Name, &artwork); err != nil {
			return nil, err
		}
		a.Artwork = catalog.NullStringToPtr(artwork)
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

// AlbumByID returns an album by id, or nil when absent.
func (l *Library) AlbumByID(id int64) (*Album, error) {
	row := l.db.QueryRow(`
		SELECT al.id, al.name, al.artist_id, ar.name, al.year, al.artwork_path
		FROM albums al
		JOIN artists ar ON al.artist_id = ar.id
		WHERE al.id = ?
	`, id)

	var (
		a       Album
		year    sql.NullInt64
		artwork sql.NullString
	)
	err := row.Scan(&a.ID, &a.Name, &a.ArtistID, &a.Artist, &year, &artwork)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Year = catalog.NullIntToPtr(year)
	a.Artwork = catalog.NullStringToPtr(artwork)
	return &a, nil
}

// ArtistByID returns an artist by id, or nil when absent.
func (l *Library) ArtistByID(id int64) (*Artist, error) {
	row := l.db.QueryRow(`
		SELECT ar.id, ar.name,
			(SELECT al.artwork_path FROM albums al
			 WHERE al.artist_id = ar.id AND al.artwork_path IS NOT NULL LIMIT 1)
		FROM artists ar
		WHERE ar.id = ?
	`, id)

	var (
		a       Artist
		artwork sql.NullString
	)
	err := row.Scan(&a.ID, &a.Name, &artwork)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Artwork = catalog.NullStringToPtr(artwork)
	return &a, nil
}

// SongsByAlbumID returns the songs of an album in insertion order.
func (l *Library) SongsByAlbumID(albumID int64) ([]Song, error) {
	rows, err := l.db.Query(`
		SELECT `+songColumns+songJoins+`
		WHERE s.album_id = ?
		ORDER BY s.id
	`, albumID)
	if err != nil {
		return nil, err
	}
	return collectSongs(rows)
}

// AlbumsByArtistID returns an artist's albums ordered by year then name.
func (l *Library) AlbumsByArtistID(artistID int64) ([]Album, error) {
	rows, err := l.db.Query(`
		SELECT al.id, al.name, al.artist_id, ar.name, al.year, al.artwork_path
		FROM albums al
		JOIN artists ar ON al.artist_id = ar.id
		WHERE al.artist_id = ?
		ORDER BY (al.year IS NULL), al.year, al.name
	`, artistID)
	if err != nil {
		return nil, err
	}
	return collectAlbums(rows)
}

// SongsByArtistID returns an artist's songs ordered by album year, album
// name, then song id.
func (l *Library) SongsByArtistID(artistID int64) ([]Song, error) {
	rows, err := l.db.Query(`
		SELECT `+songColumns+songJoins+`
		WHERE s.artist_id = ?
		ORDER BY (al.year IS NULL), al.year, al.name, s.id
	`, artistID)
	if err != nil {
		return nil, err
	}
	return collectSongs(rows)
}
