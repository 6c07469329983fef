package devserver

import (
	"encoding/json"
	"net/http"

	"github.com/me/nekohub/pkg/model"
)

const problemContentType = "application/problem+json"

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondProblem writes an RFC 7807 problem body.
func respondProblem(w http.ResponseWriter, status int, title, detail string) {
	p := model.ProblemDetails{
		Type:   strPtr("about:blank"),
		Title:  strPtr(title),
		Status: &status,
	}
	if detail != "" {
		p.Detail = &detail
	}
	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(p)
}

// respondValidation writes a 400 problem carrying per-field messages.
func respondValidation(w http.ResponseWriter, errs map[string][]string) {
	status := http.StatusBadRequest
	v := model.ValidationProblemDetails{
		ProblemDetails: model.ProblemDetails{
			Type:   strPtr("https://tools.ietf.org/html/rfc9110#section-15.5.1"),
			Title:  strPtr("One or more validation errors occurred."),
			Status: &status,
		},
		Errors: errs,
	}
	w.Header().Set("Content-Type", problemContentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func strPtr(s string) *string { return &s }
