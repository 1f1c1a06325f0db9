// Package library implements the indexing and query engine over the song
// catalogue: watched-folder reconciliation, artist/album resolution, the
// orphan sweep and the read-oriented browse queries.
package library

import (
	"database/sql"

	"github.com/avernet/melodex/internal/metadata"
)

// Fallback identities for files with missing tag data.
const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
)

const defaultScanWorkers = 8

// Song is a catalogued audio file joined with its album and artist names.
// Artwork falls back to the album cover when the song carries none.
type Song struct {
	ID       int64
	Title    string
	Path     string
	Duration *float64
	AlbumID  int64
	ArtistID int64
	Album    string
	Artist   string
	Artwork  *string
}

// Album is a normalized album row joined with its artist name.
type Album struct {
	ID       int64
	Name     string
	ArtistID int64
	Artist   string
	Year     *int
	Artwork  *string
}

// Artist is a normalized artist row. Artwork is derived from the first album
// cover belonging to the artist, not stored.
type Artist struct {
	ID      int64
	Name    string
	Artwork *string
}

// executor abstracts *sql.DB and *sql.Tx so resolver and sweep queries can
// run either standalone or inside an ingestion transaction.
type executor interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Library provides all catalogue operations on songs, albums and artists.
type Library struct {
	db      *sql.DB
	meta    metadata.Reader
	workers int
}

// New creates a Library using meta for tag extraction during scans.
func New(db *sql.DB, meta metadata.Reader) *Library {
	return &Library{db: db, meta: meta, workers: defaultScanWorkers}
}

// SetScanWorkers overrides the metadata-extraction concurrency for scans.
func (l *Library) SetScanWorkers(n int) {
	if n > 0 {
		l.workers = n
	}
}
