package viewmodel

import (
	"context"
	"fmt"
	"sync"

	"github.com/me/nekohub/pkg/model"
	"github.com/me/nekohub/pkg/posts"
)

// fakeAPI is a scripted PostsAPI. Unset hooks fail the call.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	paged     func(posts.PageOptions) (*model.PagedResponse[model.Post], error)
	get       func(int) (*model.Post, error)
	create    func(title, content string, published bool) (*model.Post, error)
	update    func(id int, title, content string, published bool) (*model.Post, error)
	del       func(int) error
	publish   func(int) (*model.Post, error)
	unpublish func(int) (*model.Post, error)
}

var _ posts.PostsAPI = (*fakeAPI)(nil)

func (f *fakeAPI) record(format string, args ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) List(ctx context.Context, opts posts.ListOptions) ([]model.Post, error) {
	f.record("list")
	return nil, fmt.Errorf("unexpected List")
}

func (f *fakeAPI) Paged(ctx context.Context, opts posts.PageOptions) (*model.PagedResponse[model.Post], error) {
	f.record("paged %s", posts.PagedPath(opts))
	if f.paged == nil {
		return nil, fmt.Errorf("unexpected Paged")
	}
	return f.paged(opts)
}

func (f *fakeAPI) Get(ctx context.Context, id int) (*model.Post, error) {
	f.record("get %d", id)
	if f.get == nil {
		return nil, fmt.Errorf("unexpected Get")
	}
	return f.get(id)
}

func (f *fakeAPI) Create(ctx context.Context, title, content string, published bool) (*model.Post, error) {
	f.record("create %q", title)
	if f.create == nil {
		return nil, fmt.Errorf("unexpected Create")
	}
	return f.create(title, content, published)
}

func (f *fakeAPI) Update(ctx context.Context, id int, title, content string, published bool) (*model.Post, error) {
	f.record("update %d %q", id, title)
	if f.update == nil {
		return nil, fmt.Errorf("unexpected Update")
	}
	return f.update(id, title, content, published)
}

func (f *fakeAPI) Patch(ctx context.Context, id int, patch model.PostPatchRequest) (*model.Post, error) {
	f.record("patch %d", id)
	return nil, fmt.Errorf("unexpected Patch")
}

func (f *fakeAPI) Delete(ctx context.Context, id int) error {
	f.record("delete %d", id)
	if f.del == nil {
		return fmt.Errorf("unexpected Delete")
	}
	return f.del(id)
}

func (f *fakeAPI) Publish(ctx context.Context, id int) (*model.Post, error) {
	f.record("publish %d", id)
	if f.publish == nil {
		return nil, fmt.Errorf("unexpected Publish")
	}
	return f.publish(id)
}

func (f *fakeAPI) Unpublish(ctx context.Context, id int) (*model.Post, error) {
	f.record("unpublish %d", id)
	if f.unpublish == nil {
		return nil, fmt.Errorf("unexpected Unpublish")
	}
	return f.unpublish(id)
}

func (f *fakeAPI) Stats(ctx context.Context) (*model.PostStats, error) {
	f.record("stats")
	return nil, fmt.Errorf("unexpected Stats")
}

// fakeUI records navigation and dialogs.
type fakeUI struct {
	mu      sync.Mutex
	events  []string
	confirm bool
	confErr error
}

func (u *fakeUI) add(e string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.events = append(u.events, e)
}

func (u *fakeUI) Events() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.events...)
}

func (u *fakeUI) GoBack(ctx context.Context) error {
	u.add("back")
	return nil
}

func (u *fakeUI) GoToDetail(ctx context.Context, id int) error {
	u.add(fmt.Sprintf("detail %d", id))
	return nil
}

func (u *fakeUI) GoToEdit(ctx context.Context, id int) error {
	u.add(fmt.Sprintf("edit %d", id))
	return nil
}

func (u *fakeUI) Alert(ctx context.Context, title, message string) error {
	u.add("alert " + title + ": " + message)
	return nil
}

func (u *fakeUI) Confirm(ctx context.Context, title, message, accept, cancel string) (bool, error) {
	u.add("confirm " + message)
	return u.confirm, u.confErr
}

// postsPage builds a page holding posts with the given ids.
func postsPage(ids ...int) *model.PagedResponse[model.Post] {
	items := make([]model.Post, 0, len(ids))
	for _, id := range ids {
		items = append(items, model.Post{ID: id, Title: fmt.Sprintf("post %d", id)})
	}
	return &model.PagedResponse[model.Post]{Items: items}
}

// validationError is what the client returns for a 400 with field errors.
func validationError(errs map[string][]string) *posts.APIError {
	return &posts.APIError{
		StatusCode: 400,
		Message:    "Bad Request",
		Validation: &model.ValidationProblemDetails{Errors: errs},
	}
}
