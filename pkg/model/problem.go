package model

import (
	"slices"
	"strings"
)

// ProblemDetails is the RFC 7807 problem shape returned on failures.
type ProblemDetails struct {
	Type   *string `json:"type,omitempty"`
	Title  *string `json:"title,omitempty"`
	Status *int    `json:"status,omitempty"`
	Detail *string `json:"detail,omitempty"`
}

// ValidationProblemDetails is a ProblemDetails carrying per-field messages.
type ValidationProblemDetails struct {
	ProblemDetails
	Errors map[string][]string `json:"errors,omitempty"`
}

// HasErrors reports whether the errors map has any entries.
func (v *ValidationProblemDetails) HasErrors() bool {
	return v != nil && len(v.Errors) > 0
}

// FieldErrors returns the messages for a field. Keys are trimmed and matched
// case-insensitively; keys folding to the same name are merged in key order.
func (v *ValidationProblemDetails) FieldErrors(field string) []string {
	if v == nil {
		return nil
	}
	keys := make([]string, 0, len(v.Errors))
	for key := range v.Errors {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	var out []string
	for _, key := range keys {
		if strings.EqualFold(strings.TrimSpace(key), field) {
			out = append(out, v.Errors[key]...)
		}
	}
	return out
}
