package playlists

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avernet/melodex/internal/catalog"
)

// Item types accepted by the history and favorites primitives.
const (
	ItemTypeSong     = "song"
	ItemTypeAlbum    = "album"
	ItemTypeArtist   = "artist"
	ItemTypePlaylist = "playlist"
)

const recentLimit = 100

// RecentItem is one run-length-collapsed history entry joined with its
// catalogue row. Artist and Duration are empty for non-song items.
type RecentItem struct {
	ID        int64
	ItemID    int64
	ItemType  string
	PlayCount int
	PlayedAt  int64
	Name      string
	Artist    string
	Artwork   *string
	Duration  *float64
}

func validItemType(itemType string, allowPlaylist bool) bool {
	switch itemType {
	case ItemTypeSong, ItemTypeAlbum, ItemTypeArtist:
		return true
	case ItemTypePlaylist:
		return allowPlaylist
	}
	return false
}

// AddRecentlyPlayed records a play. Consecutive repeats of the same item
// collapse into the newest row by incrementing its play count and refreshing
// its timestamp; a different item in between starts a new row.
func (p *Playlists) AddRecentlyPlayed(itemID int64, itemType string) error {
	if !validItemType(itemType, true) {
		return fmt.Errorf("invalid item type %q", itemType)
	}

	return catalog.WithTx(p.db, func(tx *sql.Tx) error {
		var (
			lastID       int64
			lastItemID   int64
			lastItemType string
		)
		err := tx.QueryRow(`
			SELECT id, item_id, item_type FROM recently_played
			ORDER BY played_at DESC, id DESC
			LIMIT 1
		`).Scan(&lastID, &lastItemID, &lastItemType)

		now := time.Now().Unix()
		switch {
		case err == nil && lastItemID == itemID && lastItemType == itemType:
			_, err = tx.Exec(`
				UPDATE recently_played SET play_count = play_count + 1, played_at = ?
				WHERE id = ?
			`, now, lastID)
			return err
		case err == nil || errors.Is(err, sql.ErrNoRows):
			_, err = tx.Exec(`
				INSERT INTO recently_played (item_id, item_type, play_count, played_at)
				VALUES (?, ?, 1, ?)
			`, itemID, itemType, now)
			return err
		default:
			return err
		}
	})
}

// RecentlyPlayed returns the newest history entries joined with their
// catalogue rows, newest first, capped at 100. Entries whose referent has
// been deleted are dropped by the joins.
func (p *Playlists) RecentlyPlayed() ([]RecentItem, error) {
	rows, err := p.db.Query(`
		SELECT rp.id AS id, rp.item_id, rp.item_type, rp.play_count, rp.played_at AS played_at,
			s.title, ar.name, COALESCE(s.artwork_path, al.artwork_path), s.duration
		FROM recently_played rp
		JOIN songs s ON s.id = rp.item_id
		JOIN albums al ON s.album_id = al.id
		JOIN artists ar ON s.artist_id = ar.id
		WHERE rp.item_type = 'song'
		UNION ALL
		SELECT rp.id, rp.item_id, rp.item_type, rp.play_count, rp.played_at,
			al.name, ar.name, al.artwork_path, NULL
		FROM recently_played rp
		JOIN albums al ON al.id = rp.item_id
		JOIN artists ar ON al.artist_id = ar.id
		WHERE rp.item_type = 'album'
		UNION ALL
		SELECT rp.id, rp.item_id, rp.item_type, rp.play_count, rp.played_at,
			ar.name, '',
			(SELECT al.artwork_path FROM albums al
			 WHERE al.artist_id = ar.id AND al.artwork_path IS NOT NULL LIMIT 1),
			NULL
		FROM recently_played rp
		JOIN artists ar ON ar.id = rp.item_id
		WHERE rp.item_type = 'artist'
		UNION ALL
		SELECT rp.id, rp.item_id, rp.item_type, rp.play_count, rp.played_at,
			pl.name, '', pl.artwork_path, NULL
		FROM recently_played rp
		JOIN playlists pl ON pl.id = rp.item_id
		WHERE rp.item_type = 'playlist'
		ORDER BY played_at DESC, id DESC
		LIMIT ?
	`, recentLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]RecentItem, 0)
	for rows.Next() {
		var (
			item     RecentItem
			artwork  sql.NullString
			duration sql.NullFloat64
		)
		if err := rows.Scan(&item.ID, &item.ItemID, &item.ItemType, &item.PlayCount,
			&item.PlayedAt, &item.Name, &item.Artist, &artwork, &duration); err != nil {
			return nil, err
		}
		item.Artwork = catalog.NullStringToPtr(artwork)
		item.Duration = catalog.NullFloatToPtr(duration)
		items = append(items, item)
	}
	return items, rows.Err()
}
