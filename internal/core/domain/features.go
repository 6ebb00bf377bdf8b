package domain

import "slices"

const (
	// DefaultSampleRate is assumed when a decoder does not report one.
	DefaultSampleRate = 44100

	MinBPM = 40.0
	MaxBPM = 220.0

	ModeMinor = 0
	ModeMajor = 1
)

// PitchClasses is the fixed pitch-class ordering used for key names and chroma bins.
var PitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// AudioFeatures is the fused per-track descriptor. All fields except BPM, Key
// and Mode are normalized [0,1] scores.
type AudioFeatures struct {
	BPM              float64 `json:"bpm"`
	Key              string  `json:"key"`
	Mode             int     `json:"mode"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Valence          float64 `json:"valence"`
}

// AudioRef identifies audio to decode or describe. Decoders use URL or Data;
// feature providers may use TrackID or Title/Artist instead.
type AudioRef struct {
	URL     string `json:"url,omitempty"`
	Data    []byte `json:"-"`
	TrackID string `json:"track_id,omitempty"`
	Title   string `json:"title,omitempty"`
	Artist  string `json:"artist,omitempty"`
}

// IsZero reports whether the reference points at nothing.
func (r AudioRef) IsZero() bool {
	return r.URL == "" && len(r.Data) == 0 && r.TrackID == "" && r.Title == ""
}

// Samples is a decoded mono signal. It must not be modified after decoding.
type Samples struct {
	Data       []float64
	SampleRate int
}

// Rate returns the sample rate, falling back to DefaultSampleRate.
func (s Samples) Rate() int {
	if s.SampleRate <= 0 {
		return DefaultSampleRate
	}
	return s.SampleRate
}

// Duration returns the signal length in seconds.
func (s Samples) Duration() float64 {
	return float64(len(s.Data)) / float64(s.Rate())
}

type Beat struct {
	Start      float64 `json:"start"`
	Duration   float64 `json:"duration"`
	Confidence float64 `json:"confidence"`
}

type TempoEstimate struct {
	BPM        float64 `json:"bpm"`
	Confidence float64 `json:"confidence"`
	Beats      []Beat  `json:"beats"`
}

// FallbackTempo is returned whenever tempo cannot be estimated.
func FallbackTempo() TempoEstimate {
	return TempoEstimate{BPM: 120, Confidence: 0.5, Beats: []Beat{}}
}

type KeyEstimate struct {
	Key        string  `json:"key"`
	Mode       int     `json:"mode"`
	Confidence float64 `json:"confidence"`
}

// FallbackKey is returned whenever the key cannot be estimated.
func FallbackKey() KeyEstimate {
	return KeyEstimate{Key: "C", Mode: ModeMajor, Confidence: 0.5}
}

// Name renders the key as "C major" or "A minor".
func (k KeyEstimate) Name() string {
	return KeyName(k.Key, k.Mode)
}

// KeyName renders a pitch class and mode. An unknown mode yields the bare pitch class.
func KeyName(key string, mode int) string {
	switch mode {
	case ModeMajor:
		return key + " major"
	case ModeMinor:
		return key + " minor"
	default:
		return key
	}
}

// IsPitchClass reports whether name is one of PitchClasses.
func IsPitchClass(name string) bool {
	return slices.Contains(PitchClasses[:], name)
}
