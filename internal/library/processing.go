package library

import (
	"database/sql"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/avernet/melodex/internal/catalog"
	"github.com/avernet/melodex/internal/metadata"
)

// extractResult pairs a discovered path with its extracted metadata.
type extractResult struct {
	path string
	meta *metadata.Metadata
}

// ingestFiles extracts metadata for the given paths in parallel and inserts
// the resulting songs. Extraction runs on a worker pool; all catalogue writes
// stay on the collecting goroutine so the single-writer model holds. Each
// file commits in its own transaction so one bad file cannot abort the scan.
func (l *Library) ingestFiles(paths []string) (added, skipped int) {
	if len(paths) == 0 {
		return 0, 0
	}

	workCh := make(chan string, len(paths))
	resultCh := make(chan extractResult, l.workers)

	var wg sync.WaitGroup
	for range l.workers {
		wg.Go(func() {
			for path := range workCh {
				meta, err := l.meta.Read(path)
				if err != nil {
					slog.Warn("skipping file, metadata extraction failed", "path", path, "error", err)
					resultCh <- extractResult{path: path}
					continue
				}
				resultCh <- extractResult{path: path, meta: meta}
			}
		})
	}

	go func() {
		for _, path := range paths {
			workCh <- path
		}
		close(workCh)
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for result := range resultCh {
		if result.meta == nil {
			skipped++
			continue
		}
		if result.meta.Duration == nil || *result.meta.Duration <= 0 {
			// Indeterminate duration means an unplayable entry; deliberately
			// not stored.
			slog.Warn("skipping file, no duration derivable", "path", result.path)
			skipped++
			continue
		}
		if err := l.ingestSong(result.path, result.meta); err != nil {
			slog.Warn("skipping file, ingestion failed", "path", result.path, "error", err)
			skipped++
			continue
		}
		added++
	}
	return added, skipped
}

// ingestSong resolves the song's artist and album and inserts the row, all in
// one transaction so a crash mid-ingestion cannot leave a song pointing at a
// missing parent.
func (l *Library) ingestSong(path string, meta *metadata.Metadata) error {
	return catalog.WithTx(l.db, func(tx *sql.Tx) error {
		artistName := meta.Artist
		if artistName == "" {
			artistName = UnknownArtist
		}
		albumName := meta.Album
		if albumName == "" {
			albumName = UnknownAlbum
		}
		title := meta.Title
		if title == "" {
			title = filepath.Base(path)
		}

		artistID, err := resolveArtist(tx, artistName)
		if err != nil {
			return err
		}
		albumID, err := resolveAlbum(tx, albumName, artistID, meta.Year, meta.Artwork)
		if err != nil {
			return err
		}

		// Path uniqueness is the dedup key: re-ingesting a catalogued path is
		// absorbed here.
		_, err = tx.Exec(`
			INSERT OR IGNORE INTO songs (title, path, duration, album_id, artist_id, artwork_path)
			VALUES (?, ?, ?, ?, ?, ?)
		`, title, path, *meta.Duration, albumID, artistID, meta.Artwork)
		return err
	})
}
