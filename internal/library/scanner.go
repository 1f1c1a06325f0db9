package library

import (
	"log/slog"

	"github.com/dustin/go-humanize"
)

// ScanStats summarizes a completed reconciliation.
type ScanStats struct {
	FilesSeen int // audio files found on disk
	Added     int // songs inserted
	Removed   int // vanished songs deleted
	Skipped   int // files skipped (extraction failure or missing duration)
}

// Reconcile aligns the catalogue with the audio files currently under the
// given folders: new files are ingested, vanished songs deleted, then albums
// and artists without any remaining song are swept. Per-file failures are
// logged and skipped, never aborting the rest of the scan. Re-running on an
// unchanged tree is a no-op.
func (l *Library) Reconcile(folders []string) (ScanStats, error) {
	stats := ScanStats{}

	found := discoverFiles(folders)
	stats.FilesSeen = len(found)

	existing, err := l.existingSongPaths(folders)
	if err != nil {
		return stats, err
	}

	var toAdd []string
	for _, path := range found {
		if _, ok := existing[path]; !ok {
			toAdd = append(toAdd, path)
		}
	}

	foundSet := make(map[string]struct{}, len(found))
	for _, path := range found {
		foundSet[path] = struct{}{}
	}
	var toRemove []string
	for path := range existing {
		if _, ok := foundSet[path]; !ok {
			toRemove = append(toRemove, path)
		}
	}

	added, skipped := l.ingestFiles(toAdd)
	stats.Added = added
	stats.Skipped = skipped

	for _, path := range toRemove {
		if _, err := l.db.Exec(`DELETE FROM songs WHERE path = ?`, path); err != nil {
			return stats, err
		}
		stats.Removed++
	}

	if err := sweepOrphans(l.db); err != nil {
		return stats, err
	}

	slog.Info("scan complete",
		"files", humanize.Comma(int64(stats.FilesSeen)),
		"added", humanize.Comma(int64(stats.Added)),
		"removed", humanize.Comma(int64(stats.Removed)),
		"skipped", humanize.Comma(int64(stats.Skipped)),
	)
	return stats, nil
}

// existingSongPaths returns the set of catalogued song paths prefixed by one
// of the folders.
func (l *Library) existingSongPaths(folders []string) (map[string]struct{}, error) {
	paths := make(map[string]struct{})
	for _, folder := range folders {
		rows, err := l.db.Query(`SELECT path FROM songs WHERE path LIKE ?`, folder+"%")
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var path string
			if err := rows.Scan(&path); err != nil {
				rows.Close()
				return nil, err
			}
			paths[path] = struct{}{}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return paths, nil
}

// sweepOrphans deletes albums with no referencing song, then artists with no
// referencing song. Albums go first since they reference artists.
func sweepOrphans(ex executor) error {
	if _, err := ex.Exec(`
		DELETE FROM albums
		WHERE id NOT IN (SELECT DISTINCT album_id FROM songs WHERE album_id IS NOT NULL)
	`); err != nil {
		return err
	}
	_, err := ex.Exec(`
		DELETE FROM artists
		WHERE id NOT IN (SELECT DISTINCT artist_id FROM songs WHERE artist_id IS NOT NULL)
	`)
	return err
}
