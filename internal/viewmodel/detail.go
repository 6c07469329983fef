package viewmodel

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/me/nekohub/pkg/model"
	"github.com/me/nekohub/pkg/posts"
)

// DetailState is the lifecycle state of the detail screen.
type DetailState string

const (
	DetailIdle    DetailState = "idle"
	DetailLoading DetailState = "loading"
	DetailLoaded  DetailState = "loaded"
	DetailError   DetailState = "error"
)

// DetailSnapshot is the observable state of the detail screen.
type DetailSnapshot struct {
	State        DetailState
	PostID       int
	Post         *model.Post
	Busy         bool
	ErrorMessage string
}

func cloneDetail(s DetailSnapshot) DetailSnapshot {
	if s.Post != nil {
		p := *s.Post
		s.Post = &p
	}
	return s
}

// DetailViewModel shows a single post and runs its actions.
type DetailViewModel struct {
	*Store[DetailSnapshot]
	api     posts.PostsAPI
	nav     Navigator
	dialogs Dialogs
	logger  *slog.Logger
}

// NewDetailViewModel creates an idle detail view model.
func NewDetailViewModel(api posts.PostsAPI, nav Navigator, dialogs Dialogs, logger *slog.Logger) *DetailViewModel {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &DetailViewModel{
		Store:   newStore(DetailSnapshot{State: DetailIdle}, cloneDetail),
		api:     api,
		nav:     nav,
		dialogs: dialogs,
		logger:  logger.With("component", "detail-viewmodel"),
	}
}

// Load fetches the post with the given id.
func (vm *DetailViewModel) Load(ctx context.Context, id int) bool {
	started := vm.updateIf(func(s *DetailSnapshot) bool {
		if s.Busy {
			return false
		}
		s.PostID = id
		s.Busy = true
		s.State = DetailLoading
		s.ErrorMessage = ""
		return true
	})
	if !started {
		return false
	}

	post, err := vm.api.Get(ctx, id)
	vm.update(func(s *DetailSnapshot) {
		s.Busy = false
		if err != nil {
			if cancelled(err) {
				s.State = stateAfterCancel(s.Post)
				return
			}
			vm.logger.Error("failed to load post", "post_id", id, "error", err)
			s.ErrorMessage = describe(err)
			s.State = DetailError
			return
		}
		s.Post = post
		s.State = DetailLoaded
	})
	return true
}

func stateAfterCancel(p *model.Post) DetailState {
	if p != nil {
		return DetailLoaded
	}
	return DetailIdle
}

// Refresh reloads the current post.
func (vm *DetailViewModel) Refresh(ctx context.Context) bool {
	id := vm.Snapshot().PostID
	if id == 0 {
		return false
	}
	return vm.Load(ctx, id)
}

// Edit navigates to the editor for the loaded post.
func (vm *DetailViewModel) Edit(ctx context.Context) bool {
	post := vm.Snapshot().Post
	if post == nil {
		return false
	}
	if err := vm.nav.GoToEdit(ctx, post.ID); err != nil {
		vm.logger.Error("navigation to editor failed", "post_id", post.ID, "error", err)
	}
	return true
}

// Delete asks for confirmation and deletes the loaded post. Declining, or a
// confirmation dialog that fails, leaves everything unchanged. On success
// the user is told and navigation returns to the previous screen; failures
// are shown as an alert.
func (vm *DetailViewModel) Delete(ctx context.Context) bool {
	snap := vm.Snapshot()
	if snap.Post == nil || snap.Busy {
		return false
	}
	post := snap.Post

	ok, err := vm.dialogs.Confirm(ctx, "Delete", fmt.Sprintf("Delete %q?", post.Title), "Delete", "Cancel")
	if err != nil {
		vm.logger.Warn("delete confirmation failed", "post_id", post.ID, "error", err)
		return false
	}
	if !ok {
		return false
	}

	if !vm.begin() {
		return false
	}
	err = vm.api.Delete(ctx, post.ID)
	vm.end()

	if err != nil {
		if !cancelled(err) {
			vm.logger.Error("delete failed", "post_id", post.ID, "error", err)
			vm.alert(ctx, "Error", describe(err))
		}
		return true
	}

	vm.alert(ctx, "Deleted", "Post deleted")
	if err := vm.nav.GoBack(ctx); err != nil {
		vm.logger.Error("navigation back failed", "error", err)
	}
	return true
}

// TogglePublish publishes a draft or unpublishes a published post, then
// replaces the cached post with the server's copy.
func (vm *DetailViewModel) TogglePublish(ctx context.Context) bool {
	var post model.Post
	started := vm.updateIf(func(s *DetailSnapshot) bool {
		if s.Post == nil || s.Busy {
			return false
		}
		post = *s.Post
		s.Busy = true
		return true
	})
	if !started {
		return false
	}

	var updated *model.Post
	var err error
	if post.IsPublished {
		updated, err = vm.api.Unpublish(ctx, post.ID)
	} else {
		updated, err = vm.api.Publish(ctx, post.ID)
	}

	vm.update(func(s *DetailSnapshot) {
		s.Busy = false
		if err == nil {
			s.Post = updated
		}
	})
	if err != nil && !cancelled(err) {
		vm.logger.Error("toggle publish failed", "post_id", post.ID, "error", err)
		vm.alert(ctx, "Error", describe(err))
	}
	return true
}

func (vm *DetailViewModel) begin() bool {
	return vm.updateIf(func(s *DetailSnapshot) bool {
		if s.Busy {
			return false
		}
		s.Busy = true
		return true
	})
}

func (vm *DetailViewModel) end() {
	vm.update(func(s *DetailSnapshot) {
		s.Busy = false
	})
}

func (vm *DetailViewModel) alert(ctx context.Context, title, message string) {
	if err := vm.dialogs.Alert(ctx, title, message); err != nil {
		vm.logger.Warn("alert failed", "title", title, "error", err)
	}
}
