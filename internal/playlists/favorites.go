package playlists

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/avernet/melodex/internal/catalog"
)

// FavoriteIDs holds the favorited ids per entity type.
type FavoriteIDs struct {
	Songs   []int64
	Albums  []int64
	Artists []int64
}

// ToggleFavorite flips the favorite state of an item and returns the new
// state (true = now favorited). Playlists cannot be favorited.
func (p *Playlists) ToggleFavorite(itemID int64, itemType string) (bool, error) {
	if !validItemType(itemType, false) {
		return false, fmt.Errorf("invalid item type %q", itemType)
	}

	var isFavorite bool
	err := catalog.WithTx(p.db, func(tx *sql.Tx) error {
		var count int
		err := tx.QueryRow(`
			SELECT COUNT(*) FROM favorites WHERE item_id = ? AND item_type = ?
		`, itemID, itemType).Scan(&count)
		if err != nil {
			return err
		}

		if count > 0 {
			_, err = tx.Exec(`
				DELETE FROM favorites WHERE item_id = ? AND item_type = ?
			`, itemID, itemType)
			isFavorite = false
			return err
		}

		_, err = tx.Exec(`
			INSERT INTO favorites (item_id, item_type, created_at) VALUES (?, ?, ?)
		`, itemID, itemType, time.Now().Unix())
		isFavorite = true
		return err
	})
	if err != nil {
		return false, err
	}
	return isFavorite, nil
}

// FavoriteIDs returns the favorited ids as three flat lists.
func (p *Playlists) FavoriteIDs() (FavoriteIDs, error) {
	rows, err := p.db.Query(`SELECT item_id, item_type FROM favorites ORDER BY created_at`)
	if err != nil {
		return FavoriteIDs{}, err
	}
	defer rows.Close()

	ids := FavoriteIDs{
		Songs:   make([]int64, 0),
		Albums:  make([]int64, 0),
		Artists: make([]int64, 0),
	}
	for rows.Next() {
		var (
			itemID   int64
			itemType string
		)
		if err := rows.Scan(&itemID, &itemType); err != nil {
			return FavoriteIDs{}, err
		}
		switch itemType {
		case ItemTypeSong:
			ids.Songs = append(ids.Songs, itemID)
		case ItemTypeAlbum:
			ids.Albums = append(ids.Albums, itemID)
		case ItemTypeArtist:
			ids.Artists = append(ids.Artists, itemID)
		}
	}
	return ids, rows.Err()
}
