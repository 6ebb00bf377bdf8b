package spotify

import "github.com/ewilliams-labs/cadence/internal/core/domain"

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []spotifyArtist `json:"artists"`
	DurationMs int             `json:"duration_ms"`
}

type searchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

// spotifyAudioFeatures is the /audio-features payload. Key is a pitch class
// index with -1 for "not detected".
type spotifyAudioFeatures struct {
	ID               string  `json:"id"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Key              int     `json:"key"`
	Mode             int     `json:"mode"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
}

func (f spotifyAudioFeatures) toDomain() domain.AudioFeatures {
	out := domain.AudioFeatures{
		BPM:              f.Tempo,
		Mode:             f.Mode,
		Danceability:     f.Danceability,
		Energy:           f.Energy,
		Acousticness:     f.Acousticness,
		Instrumentalness: f.Instrumentalness,
		Valence:          f.Valence,
	}
	if f.Key >= 0 && f.Key < len(domain.PitchClasses) {
		out.Key = domain.PitchClasses[f.Key]
	}
	return out
}
