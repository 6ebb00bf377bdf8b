package domain

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Tempo bucket labels, in ascending order.
const (
	TempoVerySlow = "Very Slow"
	TempoSlow     = "Slow"
	TempoModerate = "Moderate"
	TempoFast     = "Fast"
	TempoVeryFast = "Very Fast"
)

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type MoodProfile struct {
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
	Valence      float64 `json:"valence"`
}

type MoodPoint struct {
	Position int     `json:"position"`
	Energy   float64 `json:"energy"`
	Valence  float64 `json:"valence"`
}

// PlaylistStats is the aggregate report for an ordered track list.
type PlaylistStats struct {
	TrackCount        int            `json:"track_count"`
	TotalDuration     float64        `json:"total_duration"`
	AverageBPM        float64        `json:"average_bpm"`
	BPMRange          Range          `json:"bpm_range"`
	KeyDistribution   map[string]int `json:"key_distribution"`
	GenreDistribution map[string]int `json:"genre_distribution"`
	TempoDistribution map[string]int `json:"tempo_distribution"`
	YearDistribution  map[int]int    `json:"year_distribution"`
	ArtistDiversity   float64        `json:"artist_diversity"`
	MoodProfile       MoodProfile    `json:"mood_profile"`
	MoodProgression   []MoodPoint    `json:"mood_progression"`
}

// TempoBucket labels a tempo. Unknown tempo should be passed as 0.
func TempoBucket(bpm float64) string {
	switch {
	case bpm <= 60:
		return TempoVerySlow
	case bpm <= 90:
		return TempoSlow
	case bpm <= 120:
		return TempoModerate
	case bpm <= 150:
		return TempoFast
	default:
		return TempoVeryFast
	}
}

// Decade returns the decade a year belongs to, e.g. 1987 -> 1980.
func Decade(year int) int {
	return int(math.Floor(float64(year)/10)) * 10
}

// ComputeStats aggregates tracks in order. Tracks missing a value are left out
// of that value's mean and range instead of counting as zero.
func ComputeStats(tracks []Track) (PlaylistStats, error) {
	if len(tracks) == 0 {
		return PlaylistStats{}, ErrNoTracks
	}

	s := PlaylistStats{
		TrackCount:        len(tracks),
		KeyDistribution:   make(map[string]int),
		GenreDistribution: make(map[string]int),
		TempoDistribution: make(map[string]int),
		YearDistribution:  make(map[int]int),
		MoodProgression:   make([]MoodPoint, 0, len(tracks)),
	}

	var bpms, energy, dance, valence []float64
	artists := NewArtistCounter()

	for i, t := range tracks {
		s.TotalDuration += t.Duration
		artists.Add(t.Artist)

		tempo := 0.0
		if t.BPM != nil {
			tempo = *t.BPM
			bpms = append(bpms, tempo)
		}
		s.TempoDistribution[TempoBucket(tempo)]++

		if t.Key != "" {
			mode := -1
			if t.Mode != nil {
				mode = *t.Mode
			}
			s.KeyDistribution[KeyName(t.Key, mode)]++
		}
		for _, g := range t.Genres {
			if g = strings.TrimSpace(g); g != "" {
				s.GenreDistribution[g]++
			}
		}
		if t.Year != nil {
			s.YearDistribution[Decade(*t.Year)]++
		}

		point := MoodPoint{Position: i}
		if t.Energy != nil {
			point.Energy = *t.Energy
			energy = append(energy, *t.Energy)
		}
		if t.Valence != nil {
			point.Valence = *t.Valence
			valence = append(valence, *t.Valence)
		}
		if t.Danceability != nil {
			dance = append(dance, *t.Danceability)
		}
		s.MoodProgression = append(s.MoodProgression, point)
	}

	if len(bpms) > 0 {
		s.AverageBPM = stat.Mean(bpms, nil)
		s.BPMRange = Range{Min: floats.Min(bpms), Max: floats.Max(bpms)}
	}
	s.MoodProfile = MoodProfile{
		Energy:       mean(energy),
		Danceability: mean(dance),
		Valence:      mean(valence),
	}
	s.ArtistDiversity = 1 - float64(artists.Max())/float64(len(tracks))

	return s, nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// ArtistCounter counts tracks per artist, treating names that differ only in
// case or surrounding space as the same artist. It is not safe for concurrent use.
type ArtistCounter struct {
	fold   cases.Caser
	counts map[string]int
}

func NewArtistCounter() *ArtistCounter {
	return &ArtistCounter{fold: cases.Fold(), counts: make(map[string]int)}
}

// Key returns the identity used for artist.
func (c *ArtistCounter) Key(artist string) string {
	return c.fold.String(strings.TrimSpace(artist))
}

func (c *ArtistCounter) Add(artist string) {
	c.counts[c.Key(artist)]++
}

func (c *ArtistCounter) Count(artist string) int {
	return c.counts[c.Key(artist)]
}

// Max returns the largest single-artist count.
func (c *ArtistCounter) Max() int {
	best := 0
	for _, n := range c.counts {
		best = max(best, n)
	}
	return best
}

// Distinct returns the number of distinct artists seen.
func (c *ArtistCounter) Distinct() int {
	return len(c.counts)
}
