package posts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// QueryParam is a single query-string entry. A nil or blank Value is omitted.
type QueryParam struct {
	Name  string
	Value *string
}

// StringParam builds a QueryParam from a plain string; "" is treated as absent.
func StringParam(name, value string) QueryParam {
	return QueryParam{Name: name, Value: &value}
}

// IntParam builds a QueryParam from an integer.
func IntParam(name string, value int) QueryParam {
	return StringParam(name, strconv.Itoa(value))
}

// BoolParam builds a QueryParam serialized as lowercase "true"/"false".
// A nil value is omitted.
func BoolParam(name string, value *bool) QueryParam {
	if value == nil {
		return QueryParam{Name: name}
	}
	return StringParam(name, strconv.FormatBool(*value))
}

// BuildQuery renders params in order as "?k=v&k2=v2", percent-encoding keys
// and values. Returns "" when every value is absent or blank.
func BuildQuery(params ...QueryParam) string {
	var parts []string
	for _, p := range params {
		if p.Value == nil || strings.TrimSpace(*p.Value) == "" {
			continue
		}
		parts = append(parts, escape(p.Name)+"="+escape(*p.Value))
	}
	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}

// escape percent-encodes s for a query component, using %20 for spaces.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// newRequest builds a request for path (relative to base) with an optional
// JSON body. Any method is accepted, including PATCH.
func newRequest(ctx context.Context, base *url.URL, method, path string, body any) (*http.Request, error) {
	rel, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, base.ResolveReference(rel).String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", "req_"+uuid.New().String()[:8])
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// parseBaseURL parses the API root and makes sure relative paths resolve
// beneath it rather than replacing its last segment.
func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base URL %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}
