package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/me/nekohub/internal/store"
	"github.com/me/nekohub/pkg/model"
)

const (
	maxTitleLength = 200
	maxPageSize    = 100
)

var sortFields = map[string]bool{"updatedat": true, "createdat": true, "title": true}

// parseQuery reads the shared filter parameters. Problems are added to errs.
func parseQuery(r *http.Request, errs map[string][]string) store.Query {
	v := r.URL.Query()
	q := store.Query{
		Keyword:   v.Get("keyword"),
		SortBy:    v.Get("sortBy"),
		SortOrder: v.Get("sortOrder"),
	}
	if raw := v.Get("isPublished"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs["isPublished"] = append(errs["isPublished"], "The value '"+raw+"' is not valid.")
		} else {
			q.IsPublished = &b
		}
	}
	if q.SortBy != "" && !sortFields[strings.ToLower(q.SortBy)] {
		errs["sortBy"] = append(errs["sortBy"], "sortBy must be one of updatedAt, createdAt, title.")
	}
	if q.SortOrder != "" && !strings.EqualFold(q.SortOrder, "asc") && !strings.EqualFold(q.SortOrder, "desc") {
		errs["sortOrder"] = append(errs["sortOrder"], "sortOrder must be asc or desc.")
	}
	return q
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	errs := map[string][]string{}
	q := parseQuery(r, errs)
	if len(errs) > 0 {
		respondValidation(w, errs)
		return
	}
	list, err := s.store.ListPosts(r.Context(), q)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handlePaged(w http.ResponseWriter, r *http.Request) {
	errs := map[string][]string{}
	q := parseQuery(r, errs)
	page := intParam(r, "page", 1, errs)
	pageSize := intParam(r, "pageSize", 10, errs)
	if page < 1 {
		errs["page"] = append(errs["page"], "page must be >= 1.")
	}
	if pageSize < 1 || pageSize > maxPageSize {
		errs["pageSize"] = append(errs["pageSize"], fmt.Sprintf("pageSize must be between 1 and %d.", maxPageSize))
	}
	if len(errs) > 0 {
		respondValidation(w, errs)
		return
	}

	all, err := s.store.ListPosts(r.Context(), q)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	start := min((page-1)*pageSize, len(all))
	end := min(start+pageSize, len(all))
	respondJSON(w, http.StatusOK, model.PagedResponse[model.Post]{
		Items:   all[start:end],
		HasNext: end < len(all),
	})
}

func intParam(r *http.Request, name string, def int, errs map[string][]string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs[name] = append(errs[name], "The value '"+raw+"' is not valid.")
		return def
	}
	return n
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.PostStats(r.Context())
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// postID parses the {id} URL parameter, writing a problem on failure.
func postID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		respondProblem(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("invalid post id %q", raw))
		return 0, false
	}
	return id, true
}

func notFound(w http.ResponseWriter, id int) {
	respondProblem(w, http.StatusNotFound, "Not Found", fmt.Sprintf("post %d does not exist", id))
}

// respondModified writes the result of a modify or delete call.
func (s *Server) respondModified(w http.ResponseWriter, r *http.Request, id int, p *model.Post, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		notFound(w, id)
	case err != nil:
		s.storeError(w, r, err)
	case p == nil:
		w.WriteHeader(http.StatusNoContent)
	default:
		respondJSON(w, http.StatusOK, p)
	}
}

func (s *Server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("store failed", "path", r.URL.Path, "error", err)
	respondProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	p, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	if p == nil {
		notFound(w, id)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

type postBody struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsPublished bool   `json:"isPublished"`
}

// validatePost checks title and content. Keys follow the server's
// PascalCase property names.
func validatePost(title, content *string) map[string][]string {
	errs := map[string][]string{}
	if title != nil {
		t := strings.TrimSpace(*title)
		switch {
		case t == "":
			errs["Title"] = append(errs["Title"], "The Title field is required.")
		case utf8.RuneCountInString(t) > maxTitleLength:
			errs["Title"] = append(errs["Title"], fmt.Sprintf("The Title field must be at most %d characters.", maxTitleLength))
		}
	}
	if content != nil && strings.TrimSpace(*content) == "" {
		errs["Content"] = append(errs["Content"], "The Content field is required.")
	}
	return errs
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondProblem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body postBody
	if !decodeBody(w, r, &body) {
		return
	}
	if errs := validatePost(&body.Title, &body.Content); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}
	p := s.newPost(strings.TrimSpace(body.Title), body.Content, body.IsPublished)
	if err := s.store.CreatePost(r.Context(), p); err != nil {
		s.storeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/posts/%d", p.ID))
	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	var body postBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.ID != 0 && body.ID != id {
		respondProblem(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("body id %d does not match path id %d", body.ID, id))
		return
	}
	if errs := validatePost(&body.Title, &body.Content); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}
	p, err := s.modify(r.Context(), id, func(p *model.Post) {
		p.Title = strings.TrimSpace(body.Title)
		p.Content = body.Content
		p.IsPublished = body.IsPublished
	})
	s.respondModified(w, r, id, p, err)
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	var patch model.PostPatchRequest
	if !decodeBody(w, r, &patch) {
		return
	}
	if errs := validatePost(patch.Title, patch.Content); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}
	p, err := s.modify(r.Context(), id, func(p *model.Post) {
		if patch.Title != nil {
			p.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Content != nil {
			p.Content = *patch.Content
		}
		if patch.IsPublished != nil {
			p.IsPublished = *patch.IsPublished
		}
	})
	s.respondModified(w, r, id, p, err)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	err := s.store.DeletePost(r.Context(), id)
	s.respondModified(w, r, id, nil, err)
}

func (s *Server) handlePublish(published bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := postID(w, r)
		if !ok {
			return
		}
		p, err := s.modify(r.Context(), id, func(p *model.Post) {
			p.IsPublished = published
		})
		s.respondModified(w, r, id, p, err)
	}
}
