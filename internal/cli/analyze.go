package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/cadence/internal/adapters/mp3"
	"github.com/ewilliams-labs/cadence/internal/core/domain"
	"github.com/ewilliams-labs/cadence/internal/core/services"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var ref domain.AudioRef

	cmd := &cobra.Command{
		Use:   "analyze <file|url>",
		Short: "Estimate tempo, key and features of an mp3 file or URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref.URL = args[0]
			report, err := a.newAnalyzer(nil, mp3.WithLocalFiles()).AnalyzeAudioReport(cmd.Context(), ref)
			if err != nil {
				return err
			}
			return a.printReport(cmd.OutOrStdout(), report)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&ref.TrackID, "track-id", "", "catalogue id passed to the feature provider")
	flags.StringVar(&ref.Title, "title", "", "track title passed to the feature provider")
	flags.StringVar(&ref.Artist, "artist", "", "track artist passed to the feature provider")
	return cmd
}

func (a *app) printReport(w io.Writer, r services.Report) error {
	return a.render(w, r, func(w io.Writer) error {
		f := r.Features
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Feature", "Value"})
		rows := [][]string{
			{"Duration", formatDuration(r.Duration)},
			{"BPM", strconv.FormatFloat(f.BPM, 'f', 1, 64)},
			{"Key", domain.KeyName(f.Key, f.Mode)},
			{"Local tempo", fmt.Sprintf("%.1f (confidence %.2f, %d beats)", r.Tempo.BPM, r.Tempo.Confidence, len(r.Tempo.Beats))},
			{"Local key", fmt.Sprintf("%s (confidence %.2f)", r.Key.Name(), r.Key.Confidence)},
			{"Energy", strconv.FormatFloat(f.Energy, 'f', 2, 64)},
			{"Danceability", strconv.FormatFloat(f.Danceability, 'f', 2, 64)},
			{"Valence", strconv.FormatFloat(f.Valence, 'f', 2, 64)},
			{"Acousticness", strconv.FormatFloat(f.Acousticness, 'f', 2, 64)},
			{"Instrumentalness", strconv.FormatFloat(f.Instrumentalness, 'f', 2, 64)},
		}
		for _, row := range rows {
			if err := table.Append(row); err != nil {
				return err
			}
		}
		return table.Render()
	})
}
