package store

import (
	"context"
	"errors"

	"github.com/me/nekohub/pkg/model"
)

// ErrNotFound is returned by updates and deletes of a post that does not exist.
var ErrNotFound = errors.New("post not found")

// Query filters and orders a listing.
type Query struct {
	IsPublished *bool
	Keyword     string // case-insensitive match against title or content
	SortBy      string // updatedAt (default), createdAt, title
	SortOrder   string // desc (default), asc
}

// Store defines the persistence layer for posts.
type Store interface {
	ListPosts(ctx context.Context, q Query) ([]model.Post, error)
	// GetPost returns nil, nil when the post does not exist.
	GetPost(ctx context.Context, id int) (*model.Post, error)
	// CreatePost inserts p and assigns p.ID.
	CreatePost(ctx context.Context, p *model.Post) error
	UpdatePost(ctx context.Context, p *model.Post) error
	DeletePost(ctx context.Context, id int) error
	PostStats(ctx context.Context) (model.PostStats, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
