package viewmodel

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/me/nekohub/pkg/model"
	"github.com/me/nekohub/pkg/posts"
)

// Filter selects posts by publish state.
type Filter int

const (
	FilterAll Filter = iota
	FilterPublished
	FilterDrafts
)

// String returns the filter name as accepted by ParseFilter.
func (f Filter) String() string {
	switch f {
	case FilterPublished:
		return "published"
	case FilterDrafts:
		return "drafts"
	default:
		return "all"
	}
}

// IsPublished maps the filter to the API's optional isPublished parameter.
func (f Filter) IsPublished() *bool {
	var v bool
	switch f {
	case FilterPublished:
		v = true
	case FilterDrafts:
		v = false
	default:
		return nil
	}
	return &v
}

// ParseFilter converts "all", "published" or "drafts" to a Filter.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "published":
		return FilterPublished, nil
	case "drafts", "draft":
		return FilterDrafts, nil
	}
	return FilterAll, fmt.Errorf("unknown filter %q (want all, published or drafts)", s)
}

// Sort fields and directions understood by the API.
const (
	SortByUpdatedAt = "updatedAt"
	SortByCreatedAt = "createdAt"
	SortByTitle     = "title"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// SortPreset is a named sort field and direction pair.
type SortPreset struct {
	Label string
	By    string
	Order string
}

// SortPresets lists the sort choices offered on the list screen, default first.
var SortPresets = []SortPreset{
	{"Recently updated", SortByUpdatedAt, SortDesc},
	{"Least recently updated", SortByUpdatedAt, SortAsc},
	{"Newest", SortByCreatedAt, SortDesc},
	{"Oldest", SortByCreatedAt, SortAsc},
	{"Title A-Z", SortByTitle, SortAsc},
	{"Title Z-A", SortByTitle, SortDesc},
}

// DefaultPageSize is the number of posts requested per page.
const DefaultPageSize = 10

// ListState is the lifecycle state of the list screen.
type ListState string

const (
	ListIdle           ListState = "idle"
	ListLoadingInitial ListState = "loading-initial"
	ListLoadingMore    ListState = "loading-more"
	ListError          ListState = "error"
)

// ListSnapshot is the observable state of the list screen.
type ListSnapshot struct {
	State        ListState
	Items        []model.Post
	Filter       Filter
	SortBy       string
	SortOrder    string
	SearchText   string
	Page         int
	PageSize     int
	HasNext      bool
	Busy         bool
	Refreshing   bool
	ErrorMessage string
}

// CanLoadMore reports whether LoadMore would issue a request.
func (s ListSnapshot) CanLoadMore() bool {
	return !s.Busy && s.HasNext
}

func (s ListSnapshot) pageOptions() posts.PageOptions {
	return posts.PageOptions{
		Page:     s.Page,
		PageSize: s.PageSize,
		ListOptions: posts.ListOptions{
			IsPublished: s.Filter.IsPublished(),
			Keyword:     strings.TrimSpace(s.SearchText),
			SortBy:      s.SortBy,
			SortOrder:   s.SortOrder,
		},
	}
}

func cloneList(s ListSnapshot) ListSnapshot {
	s.Items = slices.Clone(s.Items)
	return s
}

// ListViewModel drives the paginated, filterable posts list.
//
// Only one load runs at a time: Reload and LoadMore return false without
// doing anything while another load is in flight, and filter/sort changes
// are refused while busy so the visible items always match the options of
// the last query.
type ListViewModel struct {
	*Store[ListSnapshot]
	api    posts.PostsAPI
	nav    Navigator
	logger *slog.Logger
}

// NewListViewModel creates a list view model sorted by most recent update.
func NewListViewModel(api posts.PostsAPI, nav Navigator, logger *slog.Logger, pageSize int) *ListViewModel {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &ListViewModel{
		Store: newStore(ListSnapshot{
			State:     ListIdle,
			Items:     []model.Post{},
			Filter:    FilterAll,
			SortBy:    SortPresets[0].By,
			SortOrder: SortPresets[0].Order,
			Page:      1,
			PageSize:  pageSize,
		}, cloneList),
		api:    api,
		nav:    nav,
		logger: logger.With("component", "list-viewmodel"),
	}
}

// Appear loads the first page if nothing has been loaded yet.
func (vm *ListViewModel) Appear(ctx context.Context) bool {
	if len(vm.Snapshot().Items) > 0 {
		return false
	}
	return vm.Reload(ctx)
}

// Reload clears the collection and fetches page 1 with the current options.
func (vm *ListViewModel) Reload(ctx context.Context) bool {
	var opts posts.PageOptions
	started := vm.updateIf(func(s *ListSnapshot) bool {
		if s.Busy {
			return false
		}
		s.Busy = true
		s.Refreshing = true
		s.State = ListLoadingInitial
		s.ErrorMessage = ""
		s.Items = []model.Post{}
		s.HasNext = false
		s.Page = 1
		opts = s.pageOptions()
		return true
	})
	if !started {
		vm.logger.Debug("reload ignored while busy")
		return false
	}

	page, err := vm.api.Paged(ctx, opts)
	vm.update(func(s *ListSnapshot) {
		s.Busy = false
		s.Refreshing = false
		if err != nil {
			vm.fail(s, err, "failed to refresh posts")
			return
		}
		s.Items = append(s.Items, page.Items...)
		s.HasNext = page.HasNext
		s.State = ListIdle
	})
	return true
}

// LoadMore appends the next page. It does nothing while busy or when the
// last response reported no further pages. A failed load keeps the items
// already shown and does not advance the page counter.
func (vm *ListViewModel) LoadMore(ctx context.Context) bool {
	var opts posts.PageOptions
	started := vm.updateIf(func(s *ListSnapshot) bool {
		if !s.CanLoadMore() {
			return false
		}
		s.Busy = true
		s.State = ListLoadingMore
		s.ErrorMessage = ""
		s.Page++
		opts = s.pageOptions()
		return true
	})
	if !started {
		return false
	}

	page, err := vm.api.Paged(ctx, opts)
	vm.update(func(s *ListSnapshot) {
		s.Busy = false
		if err != nil {
			s.Page--
			vm.fail(s, err, "failed to load more posts")
			return
		}
		s.Items = append(s.Items, page.Items...)
		s.HasNext = page.HasNext
		s.State = ListIdle
	})
	return true
}

func (vm *ListViewModel) fail(s *ListSnapshot, err error, msg string) {
	if cancelled(err) {
		vm.logger.Debug(msg, "error", err)
		s.State = ListIdle
		return
	}
	vm.logger.Error(msg, "error", err)
	s.ErrorMessage = describe(err)
	s.State = ListError
}

// setOptions changes query options and reloads when they actually changed.
// Changes are refused while a load is in flight.
func (vm *ListViewModel) setOptions(ctx context.Context, change func(*ListSnapshot) bool) bool {
	changed := vm.updateIf(func(s *ListSnapshot) bool {
		if s.Busy {
			return false
		}
		return change(s)
	})
	if !changed {
		return false
	}
	return vm.Reload(ctx)
}

// SetFilter changes the publish-state filter and reloads.
func (vm *ListViewModel) SetFilter(ctx context.Context, f Filter) bool {
	return vm.setOptions(ctx, func(s *ListSnapshot) bool {
		if s.Filter == f {
			return false
		}
		s.Filter = f
		return true
	})
}

// SetSort changes the sort field and direction together and reloads once.
func (vm *ListViewModel) SetSort(ctx context.Context, by, order string) bool {
	return vm.setOptions(ctx, func(s *ListSnapshot) bool {
		if s.SortBy == by && s.SortOrder == order {
			return false
		}
		s.SortBy = by
		s.SortOrder = order
		return true
	})
}

// SetSortBy changes the sort field and reloads.
func (vm *ListViewModel) SetSortBy(ctx context.Context, by string) bool {
	return vm.SetSort(ctx, by, vm.Snapshot().SortOrder)
}

// SetSortOrder changes the sort direction and reloads.
func (vm *ListViewModel) SetSortOrder(ctx context.Context, order string) bool {
	return vm.SetSort(ctx, vm.Snapshot().SortBy, order)
}

// SetSearchText edits the search box without querying.
func (vm *ListViewModel) SetSearchText(text string) {
	vm.update(func(s *ListSnapshot) {
		s.SearchText = text
	})
}

// Search reloads using the current search text.
func (vm *ListViewModel) Search(ctx context.Context) bool {
	return vm.Reload(ctx)
}

// ClearSearch empties the search text and reloads.
func (vm *ListViewModel) ClearSearch(ctx context.Context) bool {
	cleared := vm.updateIf(func(s *ListSnapshot) bool {
		if s.Busy {
			return false
		}
		s.SearchText = ""
		return true
	})
	if !cleared {
		return false
	}
	return vm.Reload(ctx)
}

// Open navigates to the detail screen for a post.
func (vm *ListViewModel) Open(ctx context.Context, id int) {
	if err := vm.nav.GoToDetail(ctx, id); err != nil {
		vm.logger.Error("navigation to detail failed", "post_id", id, "error", err)
	}
}

// New navigates to the editor for a new post.
func (vm *ListViewModel) New(ctx context.Context) {
	if err := vm.nav.GoToEdit(ctx, 0); err != nil {
		vm.logger.Error("navigation to editor failed", "error", err)
	}
}
