package domain

import (
	"math"
	"sort"
)

// OptimizeArtistDiversity reorders tracks so that rarer artists surface first
// while aiming for ceil(n*targetDiversity) distinct artists up front.
//
// Tracks are stably sorted by ascending artist frequency and admitted in that
// order while the distinct-artist budget lasts; once it is spent only artists
// already admitted are taken. Tracks of artists that never fit the budget are
// appended in the same sorted order, so the result always has len(tracks)
// entries. targetDiversity is clamped to [0,1].
func OptimizeArtistDiversity(tracks []Track, targetDiversity float64) []Track {
	n := len(tracks)
	if n == 0 {
		return []Track{}
	}
	if math.IsNaN(targetDiversity) || targetDiversity < 0 {
		targetDiversity = 0
	}
	if targetDiversity > 1 {
		targetDiversity = 1
	}

	artists := NewArtistCounter()
	for _, t := range tracks {
		artists.Add(t.Artist)
	}

	sorted := make([]Track, n)
	copy(sorted, tracks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return artists.Count(sorted[i].Artist) < artists.Count(sorted[j].Artist)
	})

	targetUnique := int(math.Ceil(float64(n) * targetDiversity))

	out := make([]Track, 0, n)
	deferred := make([]Track, 0)
	admitted := make(map[string]struct{})
	for _, t := range sorted {
		key := artists.Key(t.Artist)
		if _, seen := admitted[key]; seen || len(admitted) < targetUnique {
			admitted[key] = struct{}{}
			out = append(out, t)
			continue
		}
		deferred = append(deferred, t)
	}

	return append(out, deferred...)
}
