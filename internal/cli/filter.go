package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

type filterFlags struct {
	bpmMin, bpmMax           float64
	durationMin, durationMax float64
	yearMin, yearMax         int
	artistMin, artistMax     int
	genres, excludeGenres    []string
	keys                     []string
}

func newFilterCmd(a *app) *cobra.Command {
	var f filterFlags

	cmd := &cobra.Command{
		Use:   "filter <playlist>",
		Short: "List the tracks of a playlist matching the given criteria",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			criteria := f.criteria(cmd.Flags())
			tracks, err := a.newAnalyzer(store).FilterPlaylist(cmd.Context(), args[0], criteria)
			if err != nil {
				return err
			}
			return a.printTracks(cmd.OutOrStdout(), tracks)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&f.bpmMin, "bpm-min", 0, "minimum tempo")
	flags.Float64Var(&f.bpmMax, "bpm-max", domain.MaxBPM, "maximum tempo")
	flags.Float64Var(&f.durationMin, "duration-min", 0, "minimum duration in seconds")
	flags.Float64Var(&f.durationMax, "duration-max", 24*60*60, "maximum duration in seconds")
	flags.IntVar(&f.yearMin, "year-min", 0, "earliest release year")
	flags.IntVar(&f.yearMax, "year-max", 9999, "latest release year")
	flags.IntVar(&f.artistMin, "artist-min", 1, "minimum tracks per artist in the playlist")
	flags.IntVar(&f.artistMax, "artist-max", 1<<20, "maximum tracks per artist in the playlist")
	flags.StringSliceVar(&f.genres, "genre", nil, "include tracks with any of these genres")
	flags.StringSliceVar(&f.excludeGenres, "exclude-genre", nil, "exclude tracks with any of these genres")
	flags.StringSliceVar(&f.keys, "key", nil, `allowed keys, e.g. "C" or "A minor"`)
	return cmd
}

// criteria constrains only the dimensions whose flags were given.
func (f filterFlags) criteria(flags *pflag.FlagSet) domain.FilterCriteria {
	changed := func(names ...string) bool {
		for _, n := range names {
			if flags.Changed(n) {
				return true
			}
		}
		return false
	}

	var c domain.FilterCriteria
	if changed("bpm-min", "bpm-max") {
		c.BPM = &domain.Range{Min: f.bpmMin, Max: f.bpmMax}
	}
	if changed("duration-min", "duration-max") {
		c.Duration = &domain.Range{Min: f.durationMin, Max: f.durationMax}
	}
	if changed("year-min", "year-max") {
		c.Year = &domain.IntRange{Min: f.yearMin, Max: f.yearMax}
	}
	if changed("artist-min", "artist-max") {
		c.ArtistFrequency = &domain.IntRange{Min: f.artistMin, Max: f.artistMax}
	}
	c.IncludeGenres = f.genres
	c.ExcludeGenres = f.excludeGenres
	c.Keys = f.keys
	return c
}
