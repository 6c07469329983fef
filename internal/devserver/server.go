// Package devserver implements the posts REST API on top of a store.Store.
// It backs local development and the client's end-to-end tests.
package devserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/nekohub/internal/store"
	"github.com/me/nekohub/pkg/model"
)

// Server serves the posts API from a store.Store.
type Server struct {
	router chi.Router
	logger *slog.Logger
	store  store.Store
	now    func() time.Time

	// mu serializes read-modify-write updates of a post.
	mu sync.Mutex
}

// New creates a new Server with all routes registered.
func New(st store.Store, logger *slog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		logger: logger.With("component", "devserver"),
		store:  st,
		now:    func() time.Time { return time.Now().UTC() },
	}
	s.routes()
	return s
}

// Seed adds n sample posts, alternating drafts and published posts.
func (s *Server) Seed(ctx context.Context, n int) error {
	for i := 1; i <= n; i++ {
		p := s.newPost(
			fmt.Sprintf("Sample post %d", i),
			fmt.Sprintf("Body of sample post %d.", i),
			i%2 == 0,
		)
		if err := s.store.CreatePost(ctx, p); err != nil {
			return fmt.Errorf("seed post %d: %w", i, err)
		}
	}
	return nil
}

func (s *Server) newPost(title, content string, published bool) *model.Post {
	now := s.now()
	return &model.Post{
		Title:       title,
		Content:     content,
		IsPublished: published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// modify applies fn to an existing post, bumps its update time and stores it.
// It returns store.ErrNotFound when the post does not exist.
func (s *Server) modify(ctx context.Context, id int, fn func(*model.Post)) (*model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, store.ErrNotFound
	}
	fn(p)
	p.UpdatedAt = s.now()
	if err := s.store.UpdatePost(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/api/posts", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/paged", s.handlePaged)
		r.Get("/stats", s.handleStats)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Put("/", s.handleUpdate)
			r.Patch("/", s.handlePatch)
			r.Delete("/", s.handleDelete)
			r.Post("/publish", s.handlePublish(true))
			r.Post("/unpublish", s.handlePublish(false))
		})
	})
}
