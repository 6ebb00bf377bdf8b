package domain

import "github.com/google/uuid"

type Playlist struct {
	ID     string
	Name   string
	Tracks []Track
}

// NewPlaylist creates an empty playlist. An empty id is replaced with a fresh UUID.
func NewPlaylist(id, name string) (*Playlist, error) {
	if name == "" {
		return nil, ErrInvalidArgument
	}
	if id == "" {
		id = uuid.NewString()
	}
	return &Playlist{
		ID:     id,
		Name:   name,
		Tracks: []Track{},
	}, nil
}

// AddTrack appends a track to the playlist while preventing duplicate ISRCs.
// If the incoming track has a non-empty ISRC and that ISRC already exists in
// the playlist, AddTrack returns ErrDuplicateISRC. Tracks without an ID get one.
func (p *Playlist) AddTrack(t Track) error {
	if t.ISRC != "" {
		for _, ex := range p.Tracks {
			if ex.ISRC != "" && ex.ISRC == t.ISRC {
				return ErrDuplicateISRC
			}
		}
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	p.Tracks = append(p.Tracks, t)
	return nil
}

// Analyze computes the aggregate statistics for the playlist in track order.
func (p Playlist) Analyze() (PlaylistStats, error) {
	return ComputeStats(p.Tracks)
}
