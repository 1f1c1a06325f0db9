package library

import (
	"database/sql"
	"strings"

	"github.com/avernet/melodex/internal/catalog"
)

// Search result discriminants.
const (
	SearchTypeSong     = "song"
	SearchTypeAlbum    = "album"
	SearchTypeArtist   = "artist"
	SearchTypePlaylist = "playlist"
)

const searchLimit = 10

// SearchFilters selects which entity types a search covers.
type SearchFilters struct {
	Songs     bool
	Albums    bool
	Artists   bool
	Playlists bool
}

// PlaylistHit is the minimal playlist shape surfaced by search.
type PlaylistHit struct {
	ID   int64
	Name string
}

// SearchResult is one search hit; exactly one entity field is set, matching
// Type.
type SearchResult struct {
	Type     string
	Song     *Song
	Album    *Album
	Artist   *Artist
	Playlist *PlaylistHit
}

// Search runs a case-insensitive substring match against the name field of
// each enabled entity type, capped at 10 results per type. An empty or
// whitespace query returns no results without touching the catalogue.
func (l *Library) Search(query string, filters SearchFilters) ([]SearchResult, error) {
	results := make([]SearchResult, 0)
	if strings.TrimSpace(query) == "" {
		return results, nil
	}
	pattern := "%" + strings.ToLower(query) + "%"

	if filters.Songs {
		rows, err := l.db.Query(`
			SELECT `+songColumns+songJoins+`
			WHERE LOWER(s.title) LIKE ?
			ORDER BY s.title
			LIMIT ?
		`, pattern, searchLimit)
		if err != nil {
			return nil, err
		}
		songs, err := collectSongs(rows)
		if err != nil {
			return nil, err
		}
		for i := range songs {
			results = append(results, SearchResult{Type: SearchTypeSong, Song: &songs[i]})
		}
	}

	if filters.Albums {
		rows, err := l.db.Query(`
			SELECT al.id, al.name, al.artist_id, ar.name, al.year, al.artwork_path
			FROM albums al
			JOIN artists ar ON al.artist_id = ar.id
			WHERE LOWER(al.name) LIKE ?
			ORDER BY al.name
			LIMIT ?
		`, pattern, searchLimit)
		if err != nil {
			return nil, err
		}
		albums, err := collectAlbums(rows)
		if err != nil {
			return nil, err
		}
		for i := range albums {
			results = append(results, SearchResult{Type: SearchTypeAlbum, Album: &albums[i]})
		}
	}

	if filters.Artists {
		rows, err := l.db.Query(`
			SELECT ar.id, ar.name,
				(SELECT al.artwork_path FROM albums al
				 WHERE al.artist_id = ar.id AND al.artwork_path IS NOT NULL LIMIT 1)
			FROM artists ar
			WHERE LOWER(ar.name) LIKE ?
			ORDER BY ar.name
			LIMIT ?
		`, pattern, searchLimit)
		if err != nil {
			return nil, err
		}
		func() {
			defer rows.Close()
			for rows.Next() {
				var (
					a       Artist
					artwork sql.NullString
				)
				if err = rows.Scan(&a.ID, &a.Name, &artwork); err != nil {
					return
				}
				a.Artwork = catalog.NullStringToPtr(artwork)
				results = append(results, SearchResult{Type: SearchTypeArtist, Artist: &a})
			}
			err = rows.Err()
		}()
		if err != nil {
			return nil, err
		}
	}

	if filters.Playlists {
		rows, err := l.db.Query(`
			SELECT id, name FROM playlists
			WHERE LOWER(name) LIKE ?
			ORDER BY name
			LIMIT ?
		`, pattern, searchLimit)
		if err != nil {
			return nil, err
		}
		func() {
			defer rows.Close()
			for rows.Next() {
				var hit PlaylistHit
				if err = rows.Scan(&hit.ID, &hit.Name); err != nil {
					return
				}
				results = append(results, SearchResult{Type: SearchTypePlaylist, Playlist: &hit})
			}
			err = rows.Err()
		}()
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
