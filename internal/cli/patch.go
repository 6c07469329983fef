package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/me/nekohub/pkg/model"
)

func newPatchCmd() *cobra.Command {
	var (
		title     string
		content   string
		published bool
	)

	cmd := &cobra.Command{
		Use:   "patch <post-id>",
		Short: "Change individual fields of a post",
		Long:  "Send only the fields given as flags; everything else is left unchanged on the server.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var req model.PostPatchRequest
			flags := cmd.Flags()
			if flags.Changed("title") {
				req.Title = &title
			}
			if flags.Changed("content") {
				req.Content = &content
			}
			if flags.Changed("published") {
				req.IsPublished = &published
			}
			if req.IsEmpty() {
				return errors.New("nothing to change: pass --title, --content or --published")
			}

			post, err := client.Patch(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			logger.Debug("post patched", "post_id", post.ID)
			return showPost(cmd, *post)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&content, "content", "", "New content")
	cmd.Flags().BoolVar(&published, "published", false, "Published flag")

	return cmd
}

func showPost(cmd *cobra.Command, post model.Post) error {
	if done, err := render(cmd.OutOrStdout(), toRecord(post)); done {
		return err
	}
	printPost(cmd.OutOrStdout(), post)
	return nil
}
