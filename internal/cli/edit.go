package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/nekohub/internal/viewmodel"
)

// errValidation is returned when the server rejected the submitted form.
var errValidation = errors.New("post was not saved")

func newCreateCmd() *cobra.Command {
	var (
		title     string
		content   string
		published bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			term := newTerminal(cmd)
			vm := viewmodel.NewEditViewModel(client, term, term, logger)
			vm.SetTitle(title)
			vm.SetContent(content)
			vm.SetPublished(published)
			return save(cmd, vm)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Post title")
	cmd.Flags().StringVar(&content, "content", "", "Post content")
	cmd.Flags().BoolVar(&published, "published", false, "Publish immediately")

	return cmd
}

func newEditCmd() *cobra.Command {
	var (
		title     string
		content   string
		published bool
	)

	cmd := &cobra.Command{
		Use:   "edit <post-id>",
		Short: "Replace a post's title, content and published flag",
		Long: `Load a post, apply the given flags on top of its current values and
save the whole post back. Flags that are not given keep their current value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			term := newTerminal(cmd)
			vm := viewmodel.NewEditViewModel(client, term, term, logger)
			vm.Load(cmd.Context(), id)
			if snap := vm.Snapshot(); snap.Mode != viewmodel.EditEditing {
				return fmt.Errorf("post %d: %s", id, snap.ErrorMessage)
			}

			flags := cmd.Flags()
			if flags.Changed("title") {
				vm.SetTitle(title)
			}
			if flags.Changed("content") {
				vm.SetContent(content)
			}
			if flags.Changed("published") {
				vm.SetPublished(published)
			}
			return save(cmd, vm)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&content, "content", "", "New content")
	cmd.Flags().BoolVar(&published, "published", false, "Published flag")

	return cmd
}

// save submits the form and reports field errors when the server rejects it.
func save(cmd *cobra.Command, vm *viewmodel.EditViewModel) error {
	vm.Save(cmd.Context())
	snap := vm.Snapshot()
	if snap.ErrorMessage == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Post %d: %s\n", snap.PostID, snap.Title)
		return nil
	}

	w := cmd.ErrOrStderr()
	printFieldErrors(w, "title", snap.TitleErrors)
	printFieldErrors(w, "content", snap.ContentErrors)
	fmt.Fprintln(w, snap.ErrorMessage)
	return errValidation
}

func printFieldErrors(w io.Writer, field string, errs []string) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s: %s\n", field, strings.Join(errs, "; "))
}
