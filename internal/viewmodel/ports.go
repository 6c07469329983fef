package viewmodel

import (
	"context"
	"errors"

	"github.com/me/nekohub/pkg/posts"
)

// Navigator moves between screens. Implemented by the UI layer.
type Navigator interface {
	// GoBack returns to the previous screen.
	GoBack(ctx context.Context) error
	// GoToDetail opens the detail screen for a post.
	GoToDetail(ctx context.Context, id int) error
	// GoToEdit opens the editor; id 0 means a new post.
	GoToEdit(ctx context.Context, id int) error
}

// Dialogs shows modal alerts and confirmations. Implemented by the UI layer.
type Dialogs interface {
	Alert(ctx context.Context, title, message string) error
	Confirm(ctx context.Context, title, message, accept, cancel string) (bool, error)
}

// describe returns the user-facing text for a failed operation.
func describe(err error) string {
	if apiErr, ok := posts.AsAPIError(err); ok {
		return apiErr.Message
	}
	return err.Error()
}

// cancelled reports whether err comes from the caller abandoning the
// operation. Such failures are not shown to the user.
func cancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
