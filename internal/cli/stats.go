package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/cadence/internal/core/domain"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <playlist>",
		Short: "Aggregate statistics for a stored playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := a.newAnalyzer(store).AnalyzePlaylist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printStats(cmd.OutOrStdout(), stats)
		},
	}
}

func (a *app) printStats(w io.Writer, s domain.PlaylistStats) error {
	return a.render(w, s, func(w io.Writer) error {
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Metric", "Value"})
		rows := [][]string{
			{"Tracks", strconv.Itoa(s.TrackCount)},
			{"Total duration", formatDuration(s.TotalDuration)},
			{"Average BPM", strconv.FormatFloat(s.AverageBPM, 'f', 1, 64)},
			{"BPM range", fmt.Sprintf("%.1f - %.1f", s.BPMRange.Min, s.BPMRange.Max)},
			{"Artist diversity", strconv.FormatFloat(s.ArtistDiversity, 'f', 2, 64)},
			{"Energy", strconv.FormatFloat(s.MoodProfile.Energy, 'f', 2, 64)},
			{"Danceability", strconv.FormatFloat(s.MoodProfile.Danceability, 'f', 2, 64)},
			{"Valence", strconv.FormatFloat(s.MoodProfile.Valence, 'f', 2, 64)},
		}
		for _, row := range rows {
			if err := table.Append(row); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}

		if err := printDistribution(w, "Key", s.KeyDistribution); err != nil {
			return err
		}
		if err := printDistribution(w, "Genre", s.GenreDistribution); err != nil {
			return err
		}
		if err := printDistribution(w, "Tempo", s.TempoDistribution); err != nil {
			return err
		}
		decades := make(map[string]int, len(s.YearDistribution))
		for decade, n := range s.YearDistribution {
			decades[fmt.Sprintf("%ds", decade)] = n
		}
		return printDistribution(w, "Decade", decades)
	})
}

// printDistribution renders counts highest first, ties by label.
func printDistribution(w io.Writer, label string, counts map[string]int) error {
	if len(counts) == 0 {
		return nil
	}
	labels := make([]string, 0, len(counts))
	for k := range counts {
		labels = append(labels, k)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})

	fmt.Fprintln(w)
	table := tablewriter.NewWriter(w)
	table.Header([]string{label, "Tracks"})
	for _, l := range labels {
		if err := table.Append([]string{l, strconv.Itoa(counts[l])}); err != nil {
			return err
		}
	}
	return table.Render()
}
