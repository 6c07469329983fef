package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/me/nekohub/pkg/model"
)

// MemoryStore implements Store in process memory. Data is lost on exit.
type MemoryStore struct {
	mu     sync.RWMutex
	posts  map[int]model.Post
	nextID int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		posts:  make(map[int]model.Post),
		nextID: 1,
	}
}

func (s *MemoryStore) Close() error { return nil }
func (s *MemoryStore) Migrate(ctx context.Context) error { return nil }

func (s *MemoryStore) ListPosts(ctx context.Context, q Query) ([]model.Post, error) {
	s.mu.RLock()
	out := make([]model.Post, 0, len(s.posts))
	kw := strings.ToLower(strings.TrimSpace(q.Keyword))
	for _, p := range s.posts {
		if q.IsPublished != nil && p.IsPublished != *q.IsPublished {
			continue
		}
		if kw != "" && !strings.Contains(strings.ToLower(p.Title), kw) && !strings.Contains(strings.ToLower(p.Content), kw) {
			continue
		}
		out = append(out, clonePost(p))
	}
	s.mu.RUnlock()

	desc := !strings.EqualFold(q.SortOrder, "asc")
	slices.SortFunc(out, func(a, b model.Post) int {
		var c int
		switch strings.ToLower(q.SortBy) {
		case "title":
			c = cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case "createdat":
			c = a.CreatedAt.Compare(b.CreatedAt)
		default:
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if desc {
			return -c
		}
		return c
	})
	return out, nil
}

func (s *MemoryStore) GetPost(ctx context.Context, id int) (*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	p = clonePost(p)
	return &p, nil
}

func (s *MemoryStore) CreatePost(ctx context.Context, p *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID
	s.nextID++
	s.posts[p.ID] = clonePost(*p)
	return nil
}

func (s *MemoryStore) UpdatePost(ctx context.Context, p *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[p.ID]; !ok {
		return fmt.Errorf("update post %d: %w", p.ID, ErrNotFound)
	}
	s.posts[p.ID] = clonePost(*p)
	return nil
}

func (s *MemoryStore) DeletePost(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return fmt.Errorf("delete post %d: %w", id, ErrNotFound)
	}
	delete(s.posts, id)
	return nil
}

func (s *MemoryStore) PostStats(ctx context.Context) (model.PostStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := model.PostStats{Total: len(s.posts)}
	for _, p := range s.posts {
		if p.IsPublished {
			st.Published++
		} else {
			st.Drafts++
		}
	}
	return st, nil
}

// clonePost detaches the author pointer from the stored copy.
func clonePost(p model.Post) model.Post {
	if p.Author != nil {
		a := *p.Author
		p.Author = &a
	}
	return p
}
