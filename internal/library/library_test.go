package library

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/avernet/melodex/internal/catalog"
	"github.com/avernet/melodex/internal/metadata"
)

// fakeReader serves canned metadata keyed by file base name, standing in for
// the tag extractor during scan tests.
type fakeReader struct {
	byName map[string]*metadata.Metadata
}

func (f *fakeReader) Read(path string) (*metadata.Metadata, error) {
	m, ok := f.byName[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("unreadable file: %s", path)
	}
	return m, nil
}

func newTestLibrary(t *testing.T, reader metadata.Reader) *Library {
	t.Helper()
	c, err := catalog.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return New(c.DB(), reader)
}

func writeAudioFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("not really audio"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func track(artist, album, title string, duration float64) *metadata.Metadata {
	return &metadata.Metadata{
		Title:    title,
		Artist:   artist,
		Album:    album,
		Duration: &duration,
	}
}

func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

// seedSong inserts a song with resolved artist and album directly, for query
// tests that don't need a scan.
func seedSong(t *testing.T, l *Library, artist, album, title string, duration float64) int64 {
	t.Helper()
	artistID, err := resolveArtist(l.db, artist)
	if err != nil {
		t.Fatalf("resolveArtist: %v", err)
	}
	albumID, err := resolveAlbum(l.db, album, artistID, nil, nil)
	if err != nil {
		t.Fatalf("resolveAlbum: %v", err)
	}
	res, err := l.db.Exec(`
		INSERT INTO songs (title, path, duration, album_id, artist_id)
		VALUES (?, ?, ?, ?, ?)
	`, title, "/music/"+artist+"/"+album+"/"+title+".mp3", duration, albumID, artistID)
	if err != nil {
		t.Fatalf("insert song: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("LastInsertId: %v", err)
	}
	return id
}
