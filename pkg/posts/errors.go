package posts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/me/nekohub/pkg/model"
)

// fallbackMessage is used when neither a problem title nor a reason phrase
// is available.
const fallbackMessage = "API Error"

// ErrInvalidArgument is returned, wrapped, for inputs rejected before any
// request is sent.
var ErrInvalidArgument = errors.New("invalid argument")

// APIError is a non-success response from the posts API.
// At most one of Validation and Problem is set.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Message is the problem title, the reason phrase, or "API Error".
	Message string

	// Body is the raw response body, nil when it was empty or unreadable.
	Body *string

	// Validation is set when the body carried a non-empty errors map.
	Validation *model.ValidationProblemDetails

	// Problem is set when the body parsed as a plain problem description.
	Problem *model.ProblemDetails
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Detail returns the problem detail when present, else the message.
func (e *APIError) Detail() string {
	if e.Problem != nil && e.Problem.Detail != nil && *e.Problem.Detail != "" {
		return *e.Problem.Detail
	}
	return e.Message
}

// FieldErrors returns the validation messages for a field (case-insensitive).
func (e *APIError) FieldErrors(field string) []string {
	return e.Validation.FieldErrors(field)
}

// AsAPIError unwraps err to an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsValidation returns true if err carries field-level validation messages.
func IsValidation(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Validation != nil
}

// IsNotFound returns true if err is a 404 from the API.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

// classifyResponse builds the APIError for a non-success response. It is the
// only place an APIError is constructed.
func classifyResponse(resp *http.Response, logger *slog.Logger) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn("failed reading error response body", "status", resp.StatusCode, "error", err)
		data = nil
	}
	if len(data) > 0 {
		body := string(data)
		apiErr.Body = &body
	}

	if strings.TrimSpace(string(data)) != "" {
		var validation model.ValidationProblemDetails
		if json.Unmarshal(data, &validation) == nil && validation.HasErrors() {
			apiErr.Validation = &validation
		} else {
			var problem model.ProblemDetails
			if json.Unmarshal(data, &problem) == nil {
				apiErr.Problem = &problem
			}
		}
	}

	switch {
	case apiErr.Problem != nil && apiErr.Problem.Title != nil:
		apiErr.Message = *apiErr.Problem.Title
	case reasonPhrase(resp) != "":
		apiErr.Message = reasonPhrase(resp)
	default:
		apiErr.Message = fallbackMessage
	}
	return apiErr
}

// reasonPhrase extracts the reason from a status line such as "404 Not Found".
func reasonPhrase(resp *http.Response) string {
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
}
