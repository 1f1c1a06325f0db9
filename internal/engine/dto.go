package engine

import (
	"github.com/avernet/melodex/internal/library"
	"github.com/avernet/melodex/internal/playlists"
)

// The wire DTOs. Row ids travel as opaque strings, durations as both the
// formatted M:SS string and the raw seconds.

type songDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Artist      string  `json:"artist"`
	Album       string  `json:"album"`
	Duration    string  `json:"duration"`
	Artwork     *string `json:"artwork"`
	Path        string  `json:"path"`
	RawDuration float64 `json:"rawDuration"`
}

type albumDTO struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Artist  string  `json:"artist"`
	Year    *int    `json:"year"`
	Artwork *string `json:"artwork"`
}

type artistDTO struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Artwork *string `json:"artwork"`
}

type playlistDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Artwork     *string `json:"artwork"`
	SongCount   int     `json:"songCount"`
}

type recentDTO struct {
	ID          string   `json:"id"`
	ItemID      string   `json:"itemId"`
	ItemType    string   `json:"itemType"`
	PlayCount   int      `json:"playCount"`
	PlayedAt    int64    `json:"playedAt"`
	Name        string   `json:"name"`
	Artist      string   `json:"artist,omitempty"`
	Artwork     *string  `json:"artwork"`
	Duration    string   `json:"duration"`
	RawDuration *float64 `json:"rawDuration"`
}

type scanStatsDTO struct {
	FilesSeen int `json:"filesSeen"`
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Skipped   int `json:"skipped"`
}

type favoriteStateDTO struct {
	IsFavorite bool `json:"isFavorite"`
}

type favoriteIDsDTO struct {
	Songs   []string `json:"songs"`
	Albums  []string `json:"albums"`
	Artists []string `json:"artists"`
}

type idResult struct {
	ID string `json:"id"`
}

func newSongDTO(s library.Song) songDTO {
	var raw float64
	if s.Duration != nil {
		raw = *s.Duration
	}
	return songDTO{
		ID:          formatID(s.ID),
		Name:        s.Title,
		Artist:      s.Artist,
		Album:       s.Album,
		Duration:    library.FormatDuration(s.Duration),
		Artwork:     s.Artwork,
		Path:        s.Path,
		RawDuration: raw,
	}
}

func songDTOs(songs []library.Song) []songDTO {
	out := make([]songDTO, 0, len(songs))
	for _, s := range songs {
		out = append(out, newSongDTO(s))
	}
	return out
}

func newAlbumDTO(a library.Album) albumDTO {
	return albumDTO{
		ID:      formatID(a.ID),
		Name:    a.Name,
		Artist:  a.Artist,
		Year:    a.Year,
		Artwork: a.Artwork,
	}
}

func albumDTOs(albums []library.Album) []albumDTO {
	out := make([]albumDTO, 0, len(albums))
	for _, a := range albums {
		out = append(out, newAlbumDTO(a))
	}
	return out
}

func newArtistDTO(a library.Artist) artistDTO {
	return artistDTO{
		ID:      formatID(a.ID),
		Name:    a.Name,
		Artwork: a.Artwork,
	}
}

func newPlaylistDTO(p playlists.Playlist) playlistDTO {
	return playlistDTO{
		ID:          formatID(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Artwork:     p.Artwork,
		SongCount:   p.SongCount,
	}
}

func newRecentDTO(it playlists.RecentItem) recentDTO {
	return recentDTO{
		ID:          formatID(it.ID),
		ItemID:      formatID(it.ItemID),
		ItemType:    it.ItemType,
		PlayCount:   it.PlayCount,
		PlayedAt:    it.PlayedAt,
		Name:        it.Name,
		Artist:      it.Artist,
		Artwork:     it.Artwork,
		Duration:    library.FormatDuration(it.Duration),
		RawDuration: it.Duration,
	}
}

// searchHit flattens a typed search result into its entity DTO tagged with
// searchType, matching the shape the search surface consumes.
func searchHit(r library.SearchResult) any {
	switch r.Type {
	case library.SearchTypeSong:
		return struct {
			songDTO
			SearchType string `json:"searchType"`
		}{newSongDTO(*r.Song), r.Type}
	case library.SearchTypeAlbum:
		return struct {
			albumDTO
			SearchType string `json:"searchType"`
		}{newAlbumDTO(*r.Album), r.Type}
	case library.SearchTypeArtist:
		return struct {
			artistDTO
			SearchType string `json:"searchType"`
		}{newArtistDTO(*r.Artist), r.Type}
	case library.SearchTypePlaylist:
		return struct {
			ID         string `json:"id"`
			Name       string `json:"name"`
			SearchType string `json:"searchType"`
		}{formatID(r.Playlist.ID), r.Playlist.Name, r.Type}
	}
	return nil
}
