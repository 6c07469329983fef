package posts

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/me/nekohub/pkg/model"
)

// PostsAPI is the set of domain operations on posts. Reads are retried;
// writes fail on the first error.
type PostsAPI interface {
	List(ctx context.Context, opts ListOptions) ([]model.Post, error)
	Paged(ctx context.Context, opts PageOptions) (*model.PagedResponse[model.Post], error)
	Get(ctx context.Context, id int) (*model.Post, error)
	Create(ctx context.Context, title, content string, published bool) (*model.Post, error)
	Update(ctx context.Context, id int, title, content string, published bool) (*model.Post, error)
	Patch(ctx context.Context, id int, patch model.PostPatchRequest) (*model.Post, error)
	Delete(ctx context.Context, id int) error
	Publish(ctx context.Context, id int) (*model.Post, error)
	Unpublish(ctx context.Context, id int) (*model.Post, error)
	Stats(ctx context.Context) (*model.PostStats, error)
}

var _ PostsAPI = (*Client)(nil)

const postsPath = "api/posts"

// ListOptions filters and sorts a post listing. Empty strings and a nil
// IsPublished are left out of the query.
type ListOptions struct {
	IsPublished *bool
	Keyword     string
	SortBy      string
	SortOrder   string
}

func (o ListOptions) params() []QueryParam {
	return []QueryParam{
		BoolParam("isPublished", o.IsPublished),
		StringParam("keyword", o.Keyword),
		StringParam("sortBy", o.SortBy),
		StringParam("sortOrder", o.SortOrder),
	}
}

// PageOptions selects one page of a filtered listing. Page and PageSize are
// 1-based and must be at least 1.
type PageOptions struct {
	Page     int
	PageSize int
	ListOptions
}

// Validate checks the page bounds.
func (o PageOptions) Validate() error {
	if o.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidArgument, o.Page)
	}
	if o.PageSize < 1 {
		return fmt.Errorf("%w: page size must be >= 1, got %d", ErrInvalidArgument, o.PageSize)
	}
	return nil
}

// ListPath returns the request path for a full listing.
func ListPath(opts ListOptions) string {
	return postsPath + BuildQuery(opts.params()...)
}

// PagedPath returns the request path for a paged listing.
func PagedPath(opts PageOptions) string {
	params := append([]QueryParam{
		IntParam("page", opts.Page),
		IntParam("pageSize", opts.PageSize),
	}, opts.params()...)
	return postsPath + "/paged" + BuildQuery(params...)
}

func postPath(id int, suffix string) string {
	return postsPath + "/" + strconv.Itoa(id) + suffix
}

// List returns every post matching opts. An empty body yields an empty slice.
func (c *Client) List(ctx context.Context, opts ListOptions) ([]model.Post, error) {
	path := ListPath(opts)
	return retryRead(ctx, c, "list", func(ctx context.Context) ([]model.Post, error) {
		var posts []model.Post
		if err := c.do(ctx, http.MethodGet, path, nil, &posts); err != nil {
			return nil, err
		}
		if posts == nil {
			posts = []model.Post{}
		}
		return posts, nil
	})
}

// Paged returns one page of posts. Items is never nil.
func (c *Client) Paged(ctx context.Context, opts PageOptions) (*model.PagedResponse[model.Post], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	path := PagedPath(opts)
	return retryRead(ctx, c, "paged", func(ctx context.Context) (*model.PagedResponse[model.Post], error) {
		var page model.PagedResponse[model.Post]
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}
		page.Normalize()
		return &page, nil
	})
}

// Get returns a single post.
func (c *Client) Get(ctx context.Context, id int) (*model.Post, error) {
	path := postPath(id, "")
	return retryRead(ctx, c, "get", func(ctx context.Context) (*model.Post, error) {
		return c.sendPost(ctx, http.MethodGet, path, nil)
	})
}

// Stats returns aggregate post counts.
func (c *Client) Stats(ctx context.Context) (*model.PostStats, error) {
	path := postsPath + "/stats"
	return retryRead(ctx, c, "stats", func(ctx context.Context) (*model.PostStats, error) {
		var stats model.PostStats
		if err := c.do(ctx, http.MethodGet, path, nil, &stats); err != nil {
			return nil, err
		}
		return &stats, nil
	})
}

type createRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsPublished bool   `json:"isPublished"`
}

type updateRequest struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsPublished bool   `json:"isPublished"`
}

// Create adds a post. It is not retried.
func (c *Client) Create(ctx context.Context, title, content string, published bool) (*model.Post, error) {
	return c.sendPost(ctx, http.MethodPost, postsPath, createRequest{
		Title:       title,
		Content:     content,
		IsPublished: published,
	})
}

// Update replaces every editable field of a post. It is not retried.
func (c *Client) Update(ctx context.Context, id int, title, content string, published bool) (*model.Post, error) {
	return c.sendPost(ctx, http.MethodPut, postPath(id, ""), updateRequest{
		ID:          id,
		Title:       title,
		Content:     content,
		IsPublished: published,
	})
}

// Patch changes only the fields set in patch. It is not retried.
func (c *Client) Patch(ctx context.Context, id int, patch model.PostPatchRequest) (*model.Post, error) {
	return c.sendPost(ctx, http.MethodPatch, postPath(id, ""), patch)
}

// Delete removes a post. It is not retried.
func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, postPath(id, ""), nil, nil)
}

// Publish marks a post as published and returns the server's copy.
func (c *Client) Publish(ctx context.Context, id int) (*model.Post, error) {
	return c.sendPost(ctx, http.MethodPost, postPath(id, "/publish"), nil)
}

// Unpublish marks a post as a draft and returns the server's copy.
func (c *Client) Unpublish(ctx context.Context, id int) (*model.Post, error) {
	return c.sendPost(ctx, http.MethodPost, postPath(id, "/unpublish"), nil)
}

// sendPost performs a single request whose success body is a Post.
// An empty body yields a zero Post.
func (c *Client) sendPost(ctx context.Context, method, path string, body any) (*model.Post, error) {
	var post model.Post
	if err := c.do(ctx, method, path, body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}
