package ports

import (
	"context"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

// TrackStore is the read-only query the analysis core depends on.
type TrackStore interface {
	// GetPlaylistTracks returns the playlist's tracks in playlist order. An
	// unknown playlist yields domain.ErrNotFound; a known playlist without
	// tracks yields an empty slice.
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]domain.Track, error)
}

type PlaylistRepository interface {
	TrackStore
	GetByID(ctx context.Context, id string) (domain.Playlist, error)
	Save(ctx context.Context, p domain.Playlist) error
}
