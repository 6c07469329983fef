package viewmodel

import (
	"context"
	"io"
	"log/slog"
	"slices"

	"github.com/me/nekohub/pkg/posts"
)

// Field names that validation messages are projected onto.
const (
	FieldTitle   = "title"
	FieldContent = "content"
)

// EditMode tells whether the editor creates or updates on save.
type EditMode string

const (
	EditNew     EditMode = "new"
	EditEditing EditMode = "editing"
)

// EditSnapshot is the observable state of the editor.
type EditSnapshot struct {
	Mode          EditMode
	PostID        int
	Title         string
	Content       string
	IsPublished   bool
	TitleErrors   []string
	ContentErrors []string
	Busy          bool
	ErrorMessage  string
}

// CanSave reports whether Save would run.
func (s EditSnapshot) CanSave() bool {
	return !s.Busy
}

func cloneEdit(s EditSnapshot) EditSnapshot {
	s.TitleErrors = slices.Clone(s.TitleErrors)
	s.ContentErrors = slices.Clone(s.ContentErrors)
	return s
}

// EditViewModel creates a new post or edits an existing one.
type EditViewModel struct {
	*Store[EditSnapshot]
	api     posts.PostsAPI
	nav     Navigator
	dialogs Dialogs
	logger  *slog.Logger
}

// NewEditViewModel creates an editor in new-post mode.
func NewEditViewModel(api posts.PostsAPI, nav Navigator, dialogs Dialogs, logger *slog.Logger) *EditViewModel {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &EditViewModel{
		Store: newStore(EditSnapshot{
			Mode:          EditNew,
			TitleErrors:   []string{},
			ContentErrors: []string{},
		}, cloneEdit),
		api:     api,
		nav:     nav,
		dialogs: dialogs,
		logger:  logger.With("component", "edit-viewmodel"),
	}
}

// Load fills the form from an existing post and switches to editing mode.
// On failure the editor stays in its previous mode.
func (vm *EditViewModel) Load(ctx context.Context, id int) bool {
	started := vm.updateIf(func(s *EditSnapshot) bool {
		if s.Busy {
			return false
		}
		s.Busy = true
		s.ErrorMessage = ""
		return true
	})
	if !started {
		return false
	}

	post, err := vm.api.Get(ctx, id)
	vm.update(func(s *EditSnapshot) {
		s.Busy = false
		if err != nil {
			if !cancelled(err) {
				vm.logger.Error("load for edit failed", "post_id", id, "error", err)
				s.ErrorMessage = describe(err)
			}
			return
		}
		s.Mode = EditEditing
		s.PostID = id
		s.Title = post.Title
		s.Content = post.Content
		s.IsPublished = post.IsPublished
	})
	return true
}

// SetTitle edits the title field.
func (vm *EditViewModel) SetTitle(title string) {
	vm.update(func(s *EditSnapshot) { s.Title = title })
}

// SetContent edits the content field.
func (vm *EditViewModel) SetContent(content string) {
	vm.update(func(s *EditSnapshot) { s.Content = content })
}

// SetPublished edits the published flag.
func (vm *EditViewModel) SetPublished(published bool) {
	vm.update(func(s *EditSnapshot) { s.IsPublished = published })
}

// Save creates the post when no id is assigned yet, remembering the id the
// server returns; otherwise it replaces the existing post. Field errors are
// rebuilt from scratch on every attempt. On success the user is told and
// navigation returns to the previous screen.
func (vm *EditViewModel) Save(ctx context.Context) bool {
	var form EditSnapshot
	started := vm.updateIf(func(s *EditSnapshot) bool {
		if s.Busy {
			return false
		}
		s.Busy = true
		s.ErrorMessage = ""
		s.TitleErrors = []string{}
		s.ContentErrors = []string{}
		form = *s
		return true
	})
	if !started {
		return false
	}

	var err error
	if form.Mode == EditEditing {
		_, err = vm.api.Update(ctx, form.PostID, form.Title, form.Content, form.IsPublished)
	} else {
		created, cerr := vm.api.Create(ctx, form.Title, form.Content, form.IsPublished)
		err = cerr
		if cerr == nil {
			vm.update(func(s *EditSnapshot) {
				s.Mode = EditEditing
				s.PostID = created.ID
			})
		}
	}

	vm.update(func(s *EditSnapshot) {
		s.Busy = false
		if err == nil || cancelled(err) {
			return
		}
		if apiErr, ok := posts.AsAPIError(err); ok {
			s.TitleErrors = nonNil(apiErr.FieldErrors(FieldTitle))
			s.ContentErrors = nonNil(apiErr.FieldErrors(FieldContent))
			s.ErrorMessage = apiErr.Detail()
			return
		}
		vm.logger.Error("save failed", "error", err)
		s.ErrorMessage = err.Error()
	})
	if err != nil {
		return true
	}

	if aerr := vm.dialogs.Alert(ctx, "Saved", "Saved successfully"); aerr != nil {
		vm.logger.Warn("alert failed", "error", aerr)
	}
	if nerr := vm.nav.GoBack(ctx); nerr != nil {
		vm.logger.Error("navigation back failed", "error", nerr)
	}
	return true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
