package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/me/nekohub/internal/viewmodel"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <post-id>",
		Short: "Show a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			vm, _, err := loadDetail(cmd, id)
			if err != nil {
				return err
			}
			return showPost(cmd, *vm.Snapshot().Post)
		},
	}
}

// loadDetail builds a detail view model and loads the post, turning a load
// failure into a command error.
func loadDetail(cmd *cobra.Command, id int) (*viewmodel.DetailViewModel, *terminal, error) {
	term := newTerminal(cmd)
	vm := viewmodel.NewDetailViewModel(client, term, term, logger)
	vm.Load(cmd.Context(), id)
	snap := vm.Snapshot()
	if snap.State != viewmodel.DetailLoaded {
		if snap.ErrorMessage != "" {
			return nil, nil, fmt.Errorf("post %d: %s", id, snap.ErrorMessage)
		}
		return nil, nil, fmt.Errorf("post %d: not loaded", id)
	}
	return vm, term, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, errors.New("post id must be a positive integer")
	}
	return id, nil
}
