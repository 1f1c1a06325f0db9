package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/avernet/melodex/internal/catalog"
	"github.com/avernet/melodex/internal/library"
)

func (e *Engine) handle(req Request) (any, error) {
	switch req.Type {
	case "get-setting":
		key, err := decode[string](req.Payload)
		if err != nil {
			return nil, err
		}
		return e.cat.GetSetting(key)

	case "set-setting":
		p, err := decode[struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		}](req.Payload)
		if err != nil {
			return nil, err
		}
		return nil, e.cat.SetSetting(p.Key, p.Value)

	case "get-music-directories":
		return e.lib.MusicDirectories()

	case "add-music-directory":
		path, err := decode[string](req.Payload)
		if err != nil {
			return nil, err
		}
		if err := e.lib.AddMusicDirectory(path); err != nil {
			return nil, err
		}
		return true, nil

	case "remove-music-directory":
		path, err := decode[string](req.Payload)
		if err != nil {
			return nil, err
		}
		return nil, e.lib.RemoveMusicDirectory(path)

	case "scan-folders":
		return e.scanFolders(req.Payload)

	case "get-songs":
		limit, offset := -1, 0
		if len(req.Payload) > 0 {
			p, err := decode[struct {
				Limit  int `json:"limit"`
				Offset int `json:"offset"`
			}](req.Payload)
			if err != nil {
				return nil, err
			}
			limit, offset = p.Limit, p.Offset
		}
		songs, err := e.lib.Songs(limit, offset)
		if err != nil {
			return nil, err
		}
		return songDTOs(songs), nil

	case "get-songs-count":
		return e.lib.CountSongs()

	case "get-albums":
		albums, err := e.lib.Albums()
		if err != nil {
			return nil, err
		}
		return albumDTOs(albums), nil

	case "get-artists":
		artists, err := e.lib.Artists()
		if err != nil {
			return nil, err
		}
		out := make([]artistDTO, 0, len(artists))
		for _, a := range artists {
			out = append(out, newArtistDTO(a))
		}
		return out, nil

	case "get-album":
		id, err := decodeID(req.Payload)
		if err != nil {
			return nil, err
		}
		album, err := e.lib.AlbumByID(id)
		if err != nil || album == nil {
			return nil, err
		}
		dto := newAlbumDTO(*album)
		return &dto, nil

	case "get-artist":
		id, err := decodeID(req.Payload)
		if err != nil {
			return nil, err
		}
		artist, err := e.lib.ArtistByID(id)
		if err != nil || artist == nil {
			return nil, err
		}
		dto := newArtistDTO(*artist)
		return &dto, nil

	case "get-songs-by-album-id":
		return e.songList(req.Payload, e.lib.SongsByAlbumID)

	case "get-albums-by-artist-id":
		id, err := decodeID(req.Payload)
		if err != nil {
			return nil, err
		}
		albums, err := e.lib.AlbumsByArtistID(id)
		if err != nil {
			return nil, err
		}
		return albumDTOs(albums), nil

	case "get-songs-by-artist-id":
		return e.songList(req.Payload, e.lib.SongsByArtistID)

	case "search":
		return e.search(req.Payload)

	case "create-playlist":
		p, err := decode[createPlaylistPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		id, err := e.lists.Create(p.Name, p.Description, p.Artwork)
		if err != nil {
			return nil, err
		}
		return idResult{ID: formatID(id)}, nil

	case "create-playlist-with-songs":
		p, err := decode[createPlaylistPayload](req.Payload)
		if err != nil {
			return nil, err
		}
		songIDs, err := parseIDs(p.SongIDs)
		if err != nil {
			return nil, err
		}
		id, err := e.lists.CreateWithSongs(p.Name, p.Description, p.Artwork, songIDs)
		if err != nil {
			return nil, err
		}
		return idResult{ID: formatID(id)}, nil

	case "get-playlists":
		lists, err := e.lists.List()
		if err != nil {
			return nil, err
		}
		out := make([]playlistDTO, 0, len(lists))
		for _, pl := range lists {
			out = append(out, newPlaylistDTO(pl))
		}
		return out, nil

	case "get-playlist":
		id, err := decodeID(req.Payload)
		if err != nil {
			return nil, err
		}
		pl, err := e.lists.Get(id)
		if err != nil || pl == nil {
			return nil, err
		}
		dto := newPlaylistDTO(*pl)
		return &dto, nil

	case "get-songs-by-playlist-id":
		return e.songList(req.Payload, e.lists.Songs)

	case "add-song-to-playlist":
		p, err := decode[struct {
			PlaylistID string `json:"playlistId"`
			SongID     string `json:"songId"`
		}](req.Payload)
		if err != nil {
			return nil, err
		}
		playlistID, err := parseID(p.PlaylistID)
		if err != nil {
			return nil, err
		}
		songID, err := parseID(p.SongID)
		if err != nil {
			return nil, err
		}
		return nil, e.lists.AddSong(playlistID, songID)

	case "rename-playlist":
		p, err := decode[struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}](req.Payload)
		if err != nil {
			return nil, err
		}
		id, err := parseID(p.ID)
		if err != nil {
			return nil, err
		}
		return nil, e.lists.Rename(id, p.Name)

	case "delete-playlist":
		id, err := decodeID(req.Payload)
		if err != nil {
			return nil, err
		}
		return nil, e.lists.Delete(id)

	case "add-recently-played":
		itemID, itemType, err := decodeItem(req.Payload)
		if err != nil {
			return nil, err
		}
		return nil, e.lists.AddRecentlyPlayed(itemID, itemType)

	case "get-recently-played":
		items, err := e.lists.RecentlyPlayed()
		if err != nil {
			return nil, err
		}
		out := make([]recentDTO, 0, len(items))
		for _, it := range items {
			out = append(out, newRecentDTO(it))
		}
		return out, nil

	case "toggle-favorite":
		itemID, itemType, err := decodeItem(req.Payload)
		if err != nil {
			return nil, err
		}
		isFavorite, err := e.lists.ToggleFavorite(itemID, itemType)
		if err != nil {
			return nil, err
		}
		return favoriteStateDTO{IsFavorite: isFavorite}, nil

	case "get-favorite-ids":
		ids, err := e.lists.FavoriteIDs()
		if err != nil {
			return nil, err
		}
		return favoriteIDsDTO{
			Songs:   formatIDs(ids.Songs),
			Albums:  formatIDs(ids.Albums),
			Artists: formatIDs(ids.Artists),
		}, nil

	case "close":
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()
		return nil, e.cat.Close()

	case "reset":
		return nil, e.reset()

	default:
		return nil, fmt.Errorf("unknown engine command: %s", req.Type)
	}
}

// scanFolders reconciles the given folders, or every watched folder when the
// payload is absent.
func (e *Engine) scanFolders(payload json.RawMessage) (any, error) {
	var folders []string
	if len(payload) > 0 {
		var err error
		folders, err = decode[[]string](payload)
		if err != nil {
			return nil, err
		}
	}
	if len(folders) == 0 {
		var err error
		folders, err = e.lib.MusicDirectories()
		if err != nil {
			return nil, err
		}
	}
	stats, err := e.lib.Reconcile(folders)
	if err != nil {
		return nil, err
	}
	return scanStatsDTO{
		FilesSeen: stats.FilesSeen,
		Added:     stats.Added,
		Removed:   stats.Removed,
		Skipped:   stats.Skipped,
	}, nil
}

func (e *Engine) search(payload json.RawMessage) (any, error) {
	p, err := decode[struct {
		Query   string `json:"query"`
		Filters struct {
			Songs     bool `json:"songs"`
			Albums    bool `json:"albums"`
			Artists   bool `json:"artists"`
			Playlists bool `json:"playlists"`
		} `json:"filters"`
	}](payload)
	if err != nil {
		return nil, err
	}
	results, err := e.lib.Search(p.Query, library.SearchFilters{
		Songs:     p.Filters.Songs,
		Albums:    p.Filters.Albums,
		Artists:   p.Filters.Artists,
		Playlists: p.Filters.Playlists,
	})
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(results))
	for _, r := range results {
		out = append(out, searchHit(r))
	}
	return out, nil
}

// reset wipes the catalogue from disk, reopens it empty and rebinds the
// repositories.
func (e *Engine) reset() error {
	if err := e.cat.Close(); err != nil {
		return err
	}
	if err := e.cat.Reset(); err != nil {
		return err
	}
	cat, err := catalog.Open(e.cat.Path())
	if err != nil {
		return err
	}
	e.cat = cat
	e.bind()
	return nil
}

// songList decodes a string id and maps the queried songs to DTOs.
func (e *Engine) songList(payload json.RawMessage, query func(int64) ([]library.Song, error)) (any, error) {
	id, err := decodeID(payload)
	if err != nil {
		return nil, err
	}
	songs, err := query(id)
	if err != nil {
		return nil, err
	}
	return songDTOs(songs), nil
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, errors.New("missing command payload")
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode payload: %w", err)
	}
	return v, nil
}

func decodeID(raw json.RawMessage) (int64, error) {
	s, err := decode[string](raw)
	if err != nil {
		return 0, err
	}
	return parseID(s)
}

func decodeItem(raw json.RawMessage) (int64, string, error) {
	p, err := decode[struct {
		ItemID   string `json:"itemId"`
		ItemType string `json:"itemType"`
	}](raw)
	if err != nil {
		return 0, "", err
	}
	id, err := parseID(p.ItemID)
	if err != nil {
		return 0, "", err
	}
	return id, p.ItemType, nil
}

// parseID converts an external opaque string id back to a row id.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func formatIDs(ids []int64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, formatID(id))
	}
	return out
}

type createPlaylistPayload struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Artwork     *string  `json:"artwork"`
	SongIDs     []string `json:"songIds"`
}

func parseIDs(ss []string) ([]int64, error) {
	out := make([]int64, 0, len(ss))
	for _, s := range ss {
		id, err := parseID(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
