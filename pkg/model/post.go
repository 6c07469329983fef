package model

import "time"

// Post is a single article as served by the posts API.
// ID and the timestamps are assigned by the server.
type Post struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	IsPublished bool      `json:"isPublished"`
	Author      *string   `json:"author,omitempty"`
}

// Status returns "Published" or "Draft".
func (p Post) Status() string {
	if p.IsPublished {
		return "Published"
	}
	return "Draft"
}

// PostPatchRequest is a sparse partial update. Nil fields are left unchanged.
type PostPatchRequest struct {
	Title       *string `json:"title,omitempty"`
	Content     *string `json:"content,omitempty"`
	IsPublished *bool   `json:"isPublished,omitempty"`
}

// IsEmpty reports whether the patch requests no change at all.
func (p PostPatchRequest) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.IsPublished == nil
}

// PagedResponse is one page of items plus a forward-only next-page flag.
type PagedResponse[T any] struct {
	Items   []T  `json:"items"`
	HasNext bool `json:"hasNext"`
}

// Normalize replaces a nil item slice with an empty one.
func (r *PagedResponse[T]) Normalize() {
	if r.Items == nil {
		r.Items = []T{}
	}
}

// PostStats holds aggregate post counts.
type PostStats struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Drafts    int `json:"drafts"`
}
