package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// terminal implements the view models' Navigator and Dialogs for a one-shot
// command. Navigation prints the follow-up command to run.
type terminal struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
	failed    bool // an "Error" alert was shown
}

func newTerminal(cmd *cobra.Command) *terminal {
	return &terminal{
		in:        bufio.NewReader(cmd.InOrStdin()),
		out:       cmd.OutOrStdout(),
		assumeYes: flagAssumeYes,
	}
}

func (t *terminal) GoBack(ctx context.Context) error {
	return nil
}

func (t *terminal) GoToDetail(ctx context.Context, id int) error {
	fmt.Fprintf(t.out, "Next: nekohub show %d\n", id)
	return nil
}

func (t *terminal) GoToEdit(ctx context.Context, id int) error {
	if id == 0 {
		fmt.Fprintln(t.out, "Next: nekohub create --title ... --content ...")
		return nil
	}
	fmt.Fprintf(t.out, "Next: nekohub edit %d\n", id)
	return nil
}

func (t *terminal) Alert(ctx context.Context, title, message string) error {
	if title == "Error" {
		t.failed = true
	}
	_, err := fmt.Fprintf(t.out, "%s: %s\n", title, message)
	return err
}

func (t *terminal) Confirm(ctx context.Context, title, message, accept, cancel string) (bool, error) {
	if t.assumeYes {
		return true, nil
	}
	fmt.Fprintf(t.out, "%s [%s/%s]: ", message, strings.ToLower(accept[:1]), strings.ToUpper(cancel[:1]))
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes" || answer == strings.ToLower(accept), nil
}
