package cli

import (
	"github.com/spf13/cobra"
)

func newDiversifyCmd(a *app) *cobra.Command {
	var target float64

	cmd := &cobra.Command{
		Use:   "diversify <playlist>",
		Short: "Reorder a playlist so rarer artists come first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			tracks, err := a.newAnalyzer(store).DiversifyPlaylist(cmd.Context(), args[0], target)
			if err != nil {
				return err
			}
			return a.printTracks(cmd.OutOrStdout(), tracks)
		},
	}

	cmd.Flags().Float64Var(&target, "target", 0.6, "target artist diversity between 0 and 1")
	return cmd
}
