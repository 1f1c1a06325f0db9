package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avernet/melodex/internal/catalog"
	"github.com/avernet/melodex/internal/metadata"
)

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

func newTestEngine(t *testing.T, reader metadata.Reader) *Engine {
	t.Helper()
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	e := New(cat, reader, 2)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func payload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestDispatch_CorrelationID(t *testing.T) {
	e := newTestEngine(t, &fakeReader{})

	res := e.Dispatch(Request{ID: "req-42", Type: "get-songs-count"})
	require.Equal(t, "req-42", res.ID)
	require.Empty(t, res.Error)

	// A missing id gets assigned so the response is still correlatable
	res = e.Dispatch(Request{Type: "get-songs-count"})
	require.NotEmpty(t, res.ID)
}

func TestDispatch_UnknownCommand(t *testing.T) {
	e := newTestEngine(t, &fakeReader{})

	res := e.Dispatch(Request{ID: "x", Type: "explode"})
	require.Equal(t, "x", res.ID)
	require.Contains(t, res.Error, "unknown engine command")
	require.Nil(t, res.Result)
}

func TestDispatch_SettingsRoundTrip(t *testing.T) {
	e := newTestEngine(t, &fakeReader{})

	res := e.Dispatch(Request{Type: "get-setting", Payload: payload(t, "theme")})
	require.Empty(t, res.Error)
	require.Nil(t, res.Result)

	res = e.Dispatch(Request{Type: "set-setting", Payload: payload(t, map[string]string{
		"key": "theme", "value": "dark",
	})})
	require.Empty(t, res.Error)

	res = e.Dispatch(Request{Type: "get-setting", Payload: payload(t, "theme")})
	require.Empty(t, res.Error)
	v, ok := res.Result.(*string)
	require.True(t, ok, "result type %T", res.Result)
	require.Equal(t, "dark", *v)
}

func TestDispatch_ScanAndQuery(t *testing.T) {
	dir := t.TempDir()
	duration := 125.8
	reader := &fakeReader{byName: map[string]*metadata.Metadata{
		"one.mp3": {Title: "Paperthin Hymn", Artist: "Anberlin", Album: "Cities", Duration: &duration},
	}}
	e := newTestEngine(t, reader)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.mp3"), []byte("x"), 0o644))

	res := e.Dispatch(Request{Type: "add-music-directory", Payload: payload(t, dir)})
	require.Empty(t, res.Error)
	require.Equal(t, true, res.Result)

	res = e.Dispatch(Request{Type: "scan-folders"})
	require.Empty(t, res.Error)
	stats, ok := res.Result.(scanStatsDTO)
	require.True(t, ok, "result type %T", res.Result)
	require.Equal(t, 1, stats.Added)

	res = e.Dispatch(Request{Type: "get-songs"})
	require.Empty(t, res.Error)
	songs, ok := res.Result.([]songDTO)
	require.True(t, ok, "result type %T", res.Result)
	require.Len(t, songs, 1)
	require.Equal(t, "Paperthin Hymn", songs[0].Name)
	require.Equal(t, "Anberlin", songs[0].Artist)
	require.Equal(t, "2:05", songs[0].Duration)
	require.Equal(t, duration, songs[0].RawDuration)

	// Ids travel as strings and parse back at the boundary
	res = e.Dispatch(Request{Type: "get-artist", Payload: payload(t, "1")})
	require.Empty(t, res.Error)
	artist, ok := res.Result.(*artistDTO)
	require.True(t, ok, "result type %T", res.Result)
	require.Equal(t, "Anberlin", artist.Name)

	res = e.Dispatch(Request{Type: "get-artist", Payload: payload(t, "not-a-number")})
	require.Contains(t, res.Error, "invalid id")
}

func TestDispatch_FavoritesAndHistory(t *testing.T) {
	e := newTestEngine(t, &fakeReader{})

	res := e.Dispatch(Request{Type: "toggle-favorite", Payload: payload(t, map[string]string{
		"itemId": "3", "itemType": "album",
	})})
	require.Empty(t, res.Error)
	require.Equal(t, favoriteStateDTO{IsFavorite: true}, res.Result)

	res = e.Dispatch(Request{Type: "get-favorite-ids"})
	require.Empty(t, res.Error)
	ids, ok := res.Result.(favoriteIDsDTO)
	require.True(t, ok, "result type %T", res.Result)
	require.Equal(t, []string{"3"}, ids.Albums)
	require.Empty(t, ids.Songs)

	res = e.Dispatch(Request{Type: "add-recently-played", Payload: payload(t, map[string]string{
		"itemId": "9", "itemType": "song",
	})})
	require.Empty(t, res.Error)

	// The referenced song does not exist, so the joins drop the entry
	res = e.Dispatch(Request{Type: "get-recently-played"})
	require.Empty(t, res.Error)
	items, ok := res.Result.([]recentDTO)
	require.True(t, ok, "result type %T", res.Result)
	require.Empty(t, items)
}

func TestToggleFavorite_WireShape(t *testing.T) {
	e := newTestEngine(t, &fakeReader{})

	// The response result is an object, not a bare bool: callers read
	// result.isFavorite
	res := e.Dispatch(Request{ID: "p1", Type: "toggle-favorite", Payload: payload(t, map[string]string{
		"itemId": "5", "itemType": "song",
	})})
	require.Empty(t, res.Error)
	raw, err := json.Marshal(res)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"isFavorite":true`)

	res = e.Dispatch(Request{Type: "toggle-favorite", Payload: payload(t, map[string]string{
		"itemId": "5", "itemType": "song",
	})})
	require.Empty(t, res.Error)
	raw, err = json.Marshal(res)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"isFavorite":false`)
}

func TestDispatch_SearchEmptyQuery(t *testing.T) {
	e := newTestEngine(t, &fakeReader{})

	res := e.Dispatch(Request{Type: "search", Payload: payload(t, map[string]any{
		"query":   "   ",
		"filters": map[string]bool{"songs": true, "albums": true, "artists": true, "playlists": true},
	})})
	require.Empty(t, res.Error)
	hits, ok := res.Result.([]any)
	require.True(t, ok, "result type %T", res.Result)
	require.Empty(t, hits)
}

func TestClose_RejectsFurtherCommands(t *testing.T) {
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	e := New(cat, &fakeReader{}, 0)

	res := e.Dispatch(Request{ID: "bye", Type: "close"})
	require.Equal(t, "bye", res.ID)
	require.Empty(t, res.Error)
	<-e.Done()

	res = e.Dispatch(Request{Type: "get-songs-count"})
	require.Equal(t, "engine is closed", res.Error)
}

func TestClose_ConcurrentDispatchers(t *testing.T) {
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	e := New(cat, &fakeReader{}, 0)

	// Far more dispatchers than the queue buffer holds, racing a close:
	// every one must get a reply, either a result or the closed error
	var wg sync.WaitGroup
	for range 200 {
		wg.Go(func() {
			res := e.Dispatch(Request{Type: "get-songs-count"})
			if res.Error != "" && res.Error != "engine is closed" {
				t.Errorf("unexpected error: %q", res.Error)
			}
		})
	}

	res := e.Dispatch(Request{Type: "close"})
	require.Empty(t, res.Error)

	wg.Wait()
	<-e.Done()
}

func TestReset_EmptiesCatalogue(t *testing.T) {
	e := newTestEngine(t, &fakeReader{})

	res := e.Dispatch(Request{Type: "set-setting", Payload: payload(t, map[string]string{
		"key": "theme", "value": "dark",
	})})
	require.Empty(t, res.Error)

	res = e.Dispatch(Request{Type: "reset"})
	require.Empty(t, res.Error)

	// The engine keeps serving over the fresh catalogue
	res = e.Dispatch(Request{Type: "get-setting", Payload: payload(t, "theme")})
	require.Empty(t, res.Error)
	require.Nil(t, res.Result)

	res = e.Dispatch(Request{Type: "get-songs-count"})
	require.Empty(t, res.Error)
	require.Equal(t, 0, res.Result)
}
