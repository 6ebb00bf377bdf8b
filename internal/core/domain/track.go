package domain

// Track represents a musical track in the domain layer.
// Pointer fields are optional: nil means the value is unknown.
type Track struct {
	ID         string
	Title      string
	Artist     string
	Album      string   // optional
	Duration   float64  // seconds, 0 when unknown
	ISRC       string   // International Standard Recording Code for matching
	CoverURL   string   // optional
	PreviewURL string   // optional; resolvable to decodable audio
	Year       *int     // release year
	Genres     []string // optional genre set
	BPM        *float64
	Key        string // pitch-class name, "" when unknown
	Mode       *int   // 0 minor, 1 major

	Energy           *float64
	Danceability     *float64
	Valence          *float64
	Acousticness     *float64
	Instrumentalness *float64
}

// Float returns a pointer to v. It is a helper for the optional track fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// AudioRef returns the reference the audio decoder and feature providers
// resolve for this track.
func (t Track) AudioRef() AudioRef {
	return AudioRef{
		URL:     t.PreviewURL,
		TrackID: t.ID,
		Title:   t.Title,
		Artist:  t.Artist,
	}
}

// NeedsAnalysis reports whether the track is missing locally derivable features
// and has audio that could provide them.
func (t Track) NeedsAnalysis() bool {
	return t.PreviewURL != "" && (t.BPM == nil || t.Key == "")
}

// WithFeatures fills the track's unknown feature fields from f. Known values
// are kept, and zero scores in f are treated as unknown.
func (t Track) WithFeatures(f AudioFeatures) Track {
	if t.BPM == nil && f.BPM > 0 {
		t.BPM = Float(f.BPM)
	}
	if t.Key == "" && f.Key != "" {
		t.Key = f.Key
		if t.Mode == nil {
			t.Mode = Int(f.Mode)
		}
	}
	fill(&t.Energy, f.Energy)
	fill(&t.Danceability, f.Danceability)
	fill(&t.Valence, f.Valence)
	fill(&t.Acousticness, f.Acousticness)
	fill(&t.Instrumentalness, f.Instrumentalness)
	return t
}

func fill(dst **float64, v float64) {
	if *dst == nil && v > 0 {
		*dst = Float(v)
	}
}
