package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show post counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := client.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if done, err := render(cmd.OutOrStdout(), stats); done {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total:      %s\n", humanize.Comma(int64(stats.Total)))
			fmt.Fprintf(out, "Published:  %s\n", humanize.Comma(int64(stats.Published)))
			fmt.Fprintf(out, "Drafts:     %s\n", humanize.Comma(int64(stats.Drafts)))
			return nil
		},
	}
}
