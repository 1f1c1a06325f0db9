package playlists

import (
	"testing"
)

func TestAddRecentlyPlayed_CollapsesRepeats(t *testing.T) {
	p, db := newTestPlaylists(t)
	song := seedSong(t, db, "Anberlin", "Cities", "Godspeed")

	for range 3 {
		if err := p.AddRecentlyPlayed(song, ItemTypeSong); err != nil {
			t.Fatalf("AddRecentlyPlayed: %v", err)
		}
	}

	items, err := p.RecentlyPlayed()
	if err != nil {
		t.Fatalf("RecentlyPlayed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("item count = %d, want 1 collapsed row", len(items))
	}
	if items[0].PlayCount != 3 {
		t.Errorf("play count = %d, want 3", items[0].PlayCount)
	}
	if items[0].Name != "Godspeed" {
		t.Errorf("name = %q, want Godspeed", items[0].Name)
	}
	if items[0].Artist != "Anberlin" {
		t.Errorf("artist = %q, want Anberlin", items[0].Artist)
	}
}

func TestAddRecentlyPlayed_InterleavedStartsNewRow(t *testing.T) {
	p, db := newTestPlaylists(t)
	a := seedSong(t, db, "Anberlin", "Cities", "Godspeed")
	b := seedSong(t, db, "Thrice", "Vheissu", "Atlantic")

	// A, B, A: the second A is not adjacent to the first, so no collapse
	for _, id := range []int64{a, b, a} {
		if err := p.AddRecentlyPlayed(id, ItemTypeSong); err != nil {
			t.Fatalf("AddRecentlyPlayed: %v", err)
		}
	}

	items, err := p.RecentlyPlayed()
	if err != nil {
		t.Fatalf("RecentlyPlayed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("item count = %d, want 3 rows", len(items))
	}

	// Newest first
	wantNames := []string{"Godspeed", "Atlantic", "Godspeed"}
	for i, name := range wantNames {
		if items[i].Name != name {
			t.Errorf("items[%d].Name = %q, want %q", i, items[i].Name, name)
		}
		if items[i].PlayCount != 1 {
			t.Errorf("items[%d].PlayCount = %d, want 1", i, items[i].PlayCount)
		}
	}
}

func TestAddRecentlyPlayed_TypeMatters(t *testing.T) {
	p, db := newTestPlaylists(t)
	song := seedSong(t, db, "Anberlin", "Cities", "Godspeed")

	// Same id played as song then album: distinct identities, no collapse
	if err := p.AddRecentlyPlayed(song, ItemTypeSong); err != nil {
		t.Fatalf("AddRecentlyPlayed: %v", err)
	}
	var albumID int64
	if err := db.QueryRow(`SELECT id FROM albums WHERE name = 'Cities'`).Scan(&albumID); err != nil {
		t.Fatalf("album id: %v", err)
	}
	if err := p.AddRecentlyPlayed(albumID, ItemTypeAlbum); err != nil {
		t.Fatalf("AddRecentlyPlayed: %v", err)
	}

	items, err := p.RecentlyPlayed()
	if err != nil {
		t.Fatalf("RecentlyPlayed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("item count = %d, want 2", len(items))
	}
	if items[0].ItemType != ItemTypeAlbum || items[0].Name != "Cities" {
		t.Errorf("newest = %+v, want the Cities album", items[0])
	}
}

func TestAddRecentlyPlayed_RejectsUnknownType(t *testing.T) {
	p, _ := newTestPlaylists(t)

	if err := p.AddRecentlyPlayed(1, "genre"); err == nil {
		t.Error("expected error for unknown item type")
	}
}

func TestRecentlyPlayed_DropsDeletedReferents(t *testing.T) {
	p, db := newTestPlaylists(t)
	song := seedSong(t, db, "Anberlin", "Cities", "Godspeed")

	if err := p.AddRecentlyPlayed(song, ItemTypeSong); err != nil {
		t.Fatalf("AddRecentlyPlayed: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM songs WHERE id = ?`, song); err != nil {
		t.Fatalf("delete song: %v", err)
	}

	items, err := p.RecentlyPlayed()
	if err != nil {
		t.Fatalf("RecentlyPlayed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %+v, want entry dropped with its song", items)
	}
}
