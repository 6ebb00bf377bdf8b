package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := NewAdapter(":memory:")
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func fixturePlaylist() domain.Playlist {
	return domain.Playlist{
		ID:   "pl-1",
		Name: "Test Playlist",
		Tracks: []domain.Track{
			{
				ID:           "t2",
				Title:        "Song Two",
				Artist:       "Artist B",
				Album:        "Album B",
				Duration:     201.5,
				ISRC:         "ISRC-2",
				PreviewURL:   "https://cdn.test/2.mp3",
				Year:         domain.Int(1999),
				Genres:       []string{"rock", "indie"},
				BPM:          domain.Float(128),
				Key:          "A",
				Mode:         domain.Int(domain.ModeMinor),
				Energy:       domain.Float(0.8),
				Danceability: domain.Float(0.6),
				Valence:      domain.Float(0.3),
			},
			{
				ID:     "t1",
				Title:  "Song One",
				Artist: "Artist A",
			},
		},
	}
}

func TestAdapter_GetPlaylistTracks(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(t *testing.T, a *Adapter) string
		wantErr    error
		wantTracks []string
	}{
		{
			name: "not found",
			setup: func(t *testing.T, a *Adapter) string {
				return "missing"
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "empty playlist",
			setup: func(t *testing.T, a *Adapter) string {
				if err := a.Save(context.Background(), domain.Playlist{ID: "pl-empty", Name: "Empty"}); err != nil {
					t.Fatalf("save playlist: %v", err)
				}
				return "pl-empty"
			},
			wantTracks: []string{},
		},
		{
			name: "keeps playlist order",
			setup: func(t *testing.T, a *Adapter) string {
				if err := a.Save(context.Background(), fixturePlaylist()); err != nil {
					t.Fatalf("save playlist: %v", err)
				}
				return "pl-1"
			},
			wantTracks: []string{"t2", "t1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t)

			got, err := a.GetPlaylistTracks(context.Background(), tt.setup(t, a))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got == nil {
				t.Fatalf("expected non-nil slice")
			}
			if len(got) != len(tt.wantTracks) {
				t.Fatalf("tracks: got %d, want %d", len(got), len(tt.wantTracks))
			}
			for i, id := range tt.wantTracks {
				if got[i].ID != id {
					t.Fatalf("track %d: got %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestAdapter_RoundTripsOptionalFields(t *testing.T) {
	a := newTestAdapter(t)
	if err := a.Save(context.Background(), fixturePlaylist()); err != nil {
		t.Fatalf("save playlist: %v", err)
	}

	got, err := a.GetByID(context.Background(), "pl-1")
	if err != nil {
		t.Fatalf("get playlist: %v", err)
	}
	if got.Name != "Test Playlist" || len(got.Tracks) != 2 {
		t.Fatalf("unexpected playlist %+v", got)
	}

	full := got.Tracks[0]
	if full.Year == nil || *full.Year != 1999 {
		t.Fatalf("year: got %v", full.Year)
	}
	if full.BPM == nil || *full.BPM != 128 || full.Key != "A" || full.Mode == nil || *full.Mode != domain.ModeMinor {
		t.Fatalf("tempo/key not populated: %+v", full)
	}
	if full.Energy == nil || *full.Energy != 0.8 || full.Acousticness != nil {
		t.Fatalf("features: energy=%v acousticness=%v", full.Energy, full.Acousticness)
	}
	if len(full.Genres) != 2 || full.Genres[0] != "rock" || full.Genres[1] != "indie" {
		t.Fatalf("genres: got %v", full.Genres)
	}
	if full.Duration != 201.5 || full.PreviewURL != "https://cdn.test/2.mp3" {
		t.Fatalf("metadata: %+v", full)
	}

	bare := got.Tracks[1]
	if bare.Year != nil || bare.BPM != nil || bare.Mode != nil || bare.Key != "" || bare.Energy != nil || len(bare.Genres) != 0 {
		t.Fatalf("expected unknown fields to stay nil: %+v", bare)
	}
}

func TestAdapter_SaveReplacesTracks(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	p := fixturePlaylist()
	if err := a.Save(ctx, p); err != nil {
		t.Fatalf("save playlist: %v", err)
	}

	p.Name = "Renamed"
	p.Tracks = []domain.Track{p.Tracks[1]}
	p.Tracks[0].Genres = []string{"jazz"}
	if err := a.Save(ctx, p); err != nil {
		t.Fatalf("resave playlist: %v", err)
	}

	got, err := a.GetByID(ctx, "pl-1")
	if err != nil {
		t.Fatalf("get playlist: %v", err)
	}
	if got.Name != "Renamed" || len(got.Tracks) != 1 || got.Tracks[0].ID != "t1" {
		t.Fatalf("unexpected playlist after resave: %+v", got)
	}
	if len(got.Tracks[0].Genres) != 1 || got.Tracks[0].Genres[0] != "jazz" {
		t.Fatalf("genres: got %v", got.Tracks[0].Genres)
	}
}

func TestAdapter_GetByIDNotFound(t *testing.T) {
	a := newTestAdapter(t)
	if _, err := a.GetByID(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewAdapter_MigratesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadence.db")

	first, err := NewAdapter(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := first.Save(context.Background(), fixturePlaylist()); err != nil {
		t.Fatalf("save playlist: %v", err)
	}
	_ = first.Close()

	second, err := NewAdapter(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	tracks, err := second.GetPlaylistTracks(context.Background(), "pl-1")
	if err != nil || len(tracks) != 2 {
		t.Fatalf("expected 2 tracks after reopen, got %d (%v)", len(tracks), err)
	}
}
