package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <post-id>",
		Short: "Delete a post after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			vm, term, err := loadDetail(cmd, id)
			if err != nil {
				return err
			}

			if !vm.Delete(cmd.Context()) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			if term.failed {
				return fmt.Errorf("delete post %d failed", id)
			}
			return nil
		},
	}
}
