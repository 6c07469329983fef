package posts

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/me/nekohub/pkg/model"
)

// recordSleep returns a sleep func that records requested delays without waiting.
func recordSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	var mu sync.Mutex
	return func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		*delays = append(*delays, d)
		mu.Unlock()
		return ctx.Err()
	}
}

func newTestClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(DefaultConfig().WithBaseURL(srv.URL), discardLogger(), opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestClient_PagedQueryAndDecode(t *testing.T) {
	var mu sync.Mutex
	var gotURI string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotURI = r.URL.RequestURI()
		mu.Unlock()
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Write([]byte(`{"items":[{"id":1,"title":"a"},{"id":2,"title":"b"}],"hasNext":true}`))
	}))

	page, err := c.Paged(context.Background(), PageOptions{
		Page:        2,
		PageSize:    10,
		ListOptions: ListOptions{IsPublished: ptr(true), SortBy: "title", SortOrder: "asc"},
	})
	if err != nil {
		t.Fatalf("Paged: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if want := "/api/posts/paged?page=2&pageSize=10&isPublished=true&sortBy=title&sortOrder=asc"; gotURI != want {
		t.Errorf("request URI = %q, want %q", gotURI, want)
	}
	if len(page.Items) != 2 || !page.HasNext {
		t.Errorf("page = %+v", page)
	}
}

func TestClient_PagedNullItems(t *testing.T) {
	for _, body := range []string{`{"hasNext":false}`, `{"items":null,"hasNext":false}`, ``} {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		page, err := c.Paged(context.Background(), PageOptions{Page: 1, PageSize: 10})
		if err != nil {
			t.Fatalf("Paged(%q): %v", body, err)
		}
		if page.Items == nil {
			t.Errorf("Paged(%q): Items is nil", body)
		}
	}
}

func TestClient_PagedRejectsBadBounds(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	_, err := c.Paged(context.Background(), PageOptions{Page: 0, PageSize: 10})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	_, err = c.Paged(context.Background(), PageOptions{Page: 1, PageSize: 0})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("server hit %d times, want 0", hits.Load())
	}
}

func TestClient_ListEmptyBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RequestURI() != "/api/posts?keyword=neko" {
			t.Errorf("request URI = %q", r.URL.RequestURI())
		}
		w.WriteHeader(http.StatusOK)
	}))
	posts, err := c.List(context.Background(), ListOptions{Keyword: "neko", SortBy: " "})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Errorf("posts = %#v, want empty non-nil slice", posts)
	}
}

func TestClient_ReadRetriesThenSucceeds(t *testing.T) {
	var hits atomic.Int32
	var delays []time.Duration
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, model.Post{ID: 5, Title: "third time"})
	}), WithSleep(recordSleep(&delays)))

	post, err := c.Get(context.Background(), 5)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if post.ID != 5 {
		t.Errorf("ID = %d, want 5", post.ID)
	}
	if hits.Load() != 3 {
		t.Errorf("attempts = %d, want 3", hits.Load())
	}
	want := []time.Duration{200 * time.Millisecond, 400 * time.Millisecond}
	if len(delays) != len(want) || delays[0] != want[0] || delays[1] != want[1] {
		t.Errorf("delays = %v, want %v", delays, want)
	}
}

func TestClient_ReadRetryWaitsRealTime(t *testing.T) {
	var mu sync.Mutex
	var stamps []time.Time
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		n := len(stamps)
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, model.PostStats{Total: 3, Published: 2, Drafts: 1})
	}))

	stats, err := c.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 || stats.Published != 2 || stats.Drafts != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if len(stamps) != 3 {
		t.Fatalf("attempts = %d, want 3", len(stamps))
	}
	if gap := stamps[1].Sub(stamps[0]); gap < 200*time.Millisecond {
		t.Errorf("wait before second attempt = %v, want >= 200ms", gap)
	}
	if gap := stamps[2].Sub(stamps[1]); gap < 400*time.Millisecond {
		t.Errorf("wait before third attempt = %v, want >= 400ms", gap)
	}
}

func TestClient_ReadExhaustsAttempts(t *testing.T) {
	var hits atomic.Int32
	var delays []time.Duration
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"title": "boom " + string(rune('0'+n)),
		})
	}), WithSleep(recordSleep(&delays)))

	_, err := c.List(context.Background(), ListOptions{})
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Message != "boom 3" {
		t.Errorf("Message = %q, want last failure %q", apiErr.Message, "boom 3")
	}
	if hits.Load() != 3 {
		t.Errorf("attempts = %d, want 3", hits.Load())
	}
	if len(delays) != 2 {
		t.Errorf("delays = %v, want no wait after final attempt", delays)
	}
}

func TestClient_ReadRetriesTransportFailure(t *testing.T) {
	var hits atomic.Int32
	var delays []time.Duration
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			// Drop the connection without a response.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Error("hijacking not supported")
				return
			}
			conn, _, _ := hj.Hijack()
			conn.Close()
			return
		}
		writeJSON(w, http.StatusOK, []model.Post{{ID: 1}})
	}), WithSleep(recordSleep(&delays)))

	posts, err := c.List(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(posts) != 1 || hits.Load() != 2 {
		t.Errorf("posts = %v, attempts = %d", posts, hits.Load())
	}
}

func TestClient_CancelDuringBackoff(t *testing.T) {
	var hits atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}), WithSleep(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	_, err := c.Get(ctx, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, ok := AsAPIError(err); ok {
		t.Error("cancellation should not surface the previous APIError")
	}
	if hits.Load() != 1 {
		t.Errorf("attempts = %d, want 1", hits.Load())
	}
}

func TestClient_CancelDuringRequest(t *testing.T) {
	var hits atomic.Int32
	var delays []time.Duration
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		cancel()
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}), WithSleep(recordSleep(&delays)))

	_, err := c.Stats(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("attempts = %d, want 1", hits.Load())
	}
	if len(delays) != 0 {
		t.Errorf("delays = %v, want none", delays)
	}
}

func TestClient_AlreadyCancelled(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Paged(ctx, PageOptions{Page: 1, PageSize: 10}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("server hit %d times, want 0", hits.Load())
	}
}

func TestClient_WritesFailFast(t *testing.T) {
	tests := []struct {
		name string
		call func(c *Client) error
	}{
		{"create", func(c *Client) error {
			_, err := c.Create(context.Background(), "t", "c", false)
			return err
		}},
		{"update", func(c *Client) error {
			_, err := c.Update(context.Background(), 1, "t", "c", true)
			return err
		}},
		{"patch", func(c *Client) error {
			_, err := c.Patch(context.Background(), 1, model.PostPatchRequest{Title: ptr("t")})
			return err
		}},
		{"delete", func(c *Client) error {
			return c.Delete(context.Background(), 1)
		}},
		{"publish", func(c *Client) error {
			_, err := c.Publish(context.Background(), 1)
			return err
		}},
		{"unpublish", func(c *Client) error {
			_, err := c.Unpublish(context.Background(), 1)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			var delays []time.Duration
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(http.StatusServiceUnavailable)
			}), WithSleep(recordSleep(&delays)))

			err := tt.call(c)
			apiErr, ok := AsAPIError(err)
			if !ok {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.StatusCode != http.StatusServiceUnavailable {
				t.Errorf("StatusCode = %d", apiErr.StatusCode)
			}
			if hits.Load() != 1 {
				t.Errorf("attempts = %d, want 1", hits.Load())
			}
			if len(delays) != 0 {
				t.Errorf("delays = %v, want none", delays)
			}
		})
	}
}

func TestClient_WriteRequests(t *testing.T) {
	type seen struct {
		method string
		path   string
		body   map[string]any
	}
	var mu sync.Mutex
	var got []seen
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := seen{method: r.Method, path: r.URL.Path}
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			if err := json.Unmarshal(data, &s.body); err != nil {
				t.Errorf("decode body: %v", err)
			}
		}
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, model.Post{ID: 42, Title: "ok", IsPublished: r.URL.Path == "/api/posts/42/publish"})
	}))
	ctx := context.Background()

	created, err := c.Create(ctx, "Hello", "World", true)
	if err != nil || created.ID != 42 {
		t.Fatalf("Create: %v %+v", err, created)
	}
	if _, err := c.Update(ctx, 42, "Hello", "Again", false); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := c.Patch(ctx, 42, model.PostPatchRequest{IsPublished: ptr(false)}); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	published, err := c.Publish(ctx, 42)
	if err != nil || !published.IsPublished {
		t.Fatalf("Publish: %v %+v", err, published)
	}
	if _, err := c.Unpublish(ctx, 42); err != nil {
		t.Fatalf("Unpublish: %v", err)
	}
	if err := c.Delete(ctx, 42); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []struct {
		method string
		path   string
		keys   []string
	}{
		{"POST", "/api/posts", []string{"title", "content", "isPublished"}},
		{"PUT", "/api/posts/42", []string{"id", "title", "content", "isPublished"}},
		{"PATCH", "/api/posts/42", []string{"isPublished"}},
		{"POST", "/api/posts/42/publish", nil},
		{"POST", "/api/posts/42/unpublish", nil},
		{"DELETE", "/api/posts/42", nil},
	}
	if len(got) != len(want) {
		t.Fatalf("requests = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].method != w.method || got[i].path != w.path {
			t.Errorf("request %d = %s %s, want %s %s", i, got[i].method, got[i].path, w.method, w.path)
		}
		if len(got[i].body) != len(w.keys) {
			t.Errorf("request %d body = %v, want keys %v", i, got[i].body, w.keys)
		}
		for _, k := range w.keys {
			if _, ok := got[i].body[k]; !ok {
				t.Errorf("request %d body missing %q: %v", i, k, got[i].body)
			}
		}
	}
}

func TestClient_ValidationFailureSurfaced(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"title":  "One or more validation errors occurred.",
			"errors": map[string][]string{"Title": {"required"}},
		})
	}))

	_, err := c.Create(context.Background(), "", "body", false)
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	apiErr, _ := AsAPIError(err)
	if apiErr.Body == nil {
		t.Error("raw body should be kept")
	}
	if got := apiErr.FieldErrors("title"); len(got) != 1 || got[0] != "required" {
		t.Errorf("FieldErrors(title) = %v", got)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.httpClient.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", c.httpClient.Timeout)
	}
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), DefaultBaseURL)
	}

	if _, err := NewClient(DefaultConfig().WithBaseURL("not a url"), nil); err == nil {
		t.Error("expected error for invalid base URL")
	}
}
