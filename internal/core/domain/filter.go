package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Contains reports whether v lies in the closed range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

type IntRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r IntRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// FilterCriteria is a conjunction of optional constraints. A nil range or an
// empty set means no constraint.
type FilterCriteria struct {
	BPM             *Range    `json:"bpm,omitempty" yaml:"bpm,omitempty"`
	IncludeGenres   []string  `json:"include_genres,omitempty" yaml:"include_genres,omitempty"`
	ExcludeGenres   []string  `json:"exclude_genres,omitempty" yaml:"exclude_genres,omitempty"`
	Keys            []string  `json:"keys,omitempty" yaml:"keys,omitempty"`
	Duration        *Range    `json:"duration,omitempty" yaml:"duration,omitempty"`
	Year            *IntRange `json:"year,omitempty" yaml:"year,omitempty"`
	ArtistFrequency *IntRange `json:"artist_frequency,omitempty" yaml:"artist_frequency,omitempty"`
}

// Validate rejects inverted ranges.
func (c FilterCriteria) Validate() error {
	if c.BPM != nil && c.BPM.Min > c.BPM.Max {
		return fmt.Errorf("%w: bpm min %.2f exceeds max %.2f", ErrInvalidArgument, c.BPM.Min, c.BPM.Max)
	}
	if c.Duration != nil && c.Duration.Min > c.Duration.Max {
		return fmt.Errorf("%w: duration min %.2f exceeds max %.2f", ErrInvalidArgument, c.Duration.Min, c.Duration.Max)
	}
	if c.Year != nil && c.Year.Min > c.Year.Max {
		return fmt.Errorf("%w: year min %d exceeds max %d", ErrInvalidArgument, c.Year.Min, c.Year.Max)
	}
	if c.ArtistFrequency != nil && c.ArtistFrequency.Min > c.ArtistFrequency.Max {
		return fmt.Errorf("%w: artist frequency min %d exceeds max %d", ErrInvalidArgument, c.ArtistFrequency.Min, c.ArtistFrequency.Max)
	}
	return nil
}

// FilterTracks returns the tracks satisfying every criterion, in input order.
//
// A track lacking bpm or duration fails a bpm or duration constraint. A track
// lacking genres, key or year passes the genre, key or year constraint.
// Artist frequency is counted over the tracks that pass the other
// constraints, so filtering a result again with the same criteria is a no-op.
func FilterTracks(tracks []Track, c FilterCriteria) []Track {
	m := newMatcher(c)

	passed := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if m.match(t) {
			passed = append(passed, t)
		}
	}
	if c.ArtistFrequency == nil {
		return passed
	}

	artists := NewArtistCounter()
	for _, t := range passed {
		artists.Add(t.Artist)
	}
	out := make([]Track, 0, len(passed))
	for _, t := range passed {
		if c.ArtistFrequency.Contains(artists.Count(t.Artist)) {
			out = append(out, t)
		}
	}
	return out
}

type matcher struct {
	c       FilterCriteria
	fold    cases.Caser
	include map[string]struct{}
	exclude map[string]struct{}
	keys    map[string]struct{}
}

func newMatcher(c FilterCriteria) *matcher {
	m := &matcher{c: c, fold: cases.Fold()}
	m.include = m.set(c.IncludeGenres)
	m.exclude = m.set(c.ExcludeGenres)
	m.keys = m.set(c.Keys)
	return m
}

func (m *matcher) norm(s string) string {
	return m.fold.String(strings.TrimSpace(s))
}

func (m *matcher) set(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[m.norm(v)] = struct{}{}
	}
	return out
}

func (m *matcher) match(t Track) bool {
	if m.c.BPM != nil {
		if t.BPM == nil || !m.c.BPM.Contains(*t.BPM) {
			return false
		}
	}
	if m.c.Duration != nil {
		if t.Duration <= 0 || !m.c.Duration.Contains(t.Duration) {
			return false
		}
	}
	if m.c.Year != nil && t.Year != nil && !m.c.Year.Contains(*t.Year) {
		return false
	}
	if m.keys != nil && t.Key != "" && !m.keyMatches(t) {
		return false
	}
	if len(t.Genres) > 0 {
		if m.include != nil && !m.anyGenreIn(t.Genres, m.include) {
			return false
		}
		if m.exclude != nil && m.anyGenreIn(t.Genres, m.exclude) {
			return false
		}
	}
	return true
}

func (m *matcher) keyMatches(t Track) bool {
	if _, ok := m.keys[m.norm(t.Key)]; ok {
		return true
	}
	if t.Mode == nil {
		return false
	}
	_, ok := m.keys[m.norm(KeyName(t.Key, *t.Mode))]
	return ok
}

func (m *matcher) anyGenreIn(genres []string, set map[string]struct{}) bool {
	for _, g := range genres {
		if _, ok := set[m.norm(g)]; ok {
			return true
		}
	}
	return false
}
