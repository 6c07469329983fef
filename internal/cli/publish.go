package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/nekohub/pkg/model"
)

func newPublishCmd(publish bool) *cobra.Command {
	use, short := "publish", "Publish a post"
	if !publish {
		use, short = "unpublish", "Return a post to draft"
	}

	return &cobra.Command{
		Use:   use + " <post-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var post *model.Post
			if publish {
				post, err = client.Publish(cmd.Context(), id)
			} else {
				post, err = client.Unpublish(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Post %d is now %s\n", post.ID, post.Status())
			return nil
		},
	}
}

func newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <post-id>",
		Short: "Publish a draft or unpublish a published post",
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

			vm.TogglePublish(cmd.Context())
			if term.failed {
				return fmt.Errorf("toggle post %d failed", id)
			}
			post := vm.Snapshot().Post
			fmt.Fprintf(cmd.OutOrStdout(), "Post %d is now %s\n", post.ID, post.Status())
			return nil
		},
	}
}
