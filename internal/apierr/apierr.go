// Package apierr maps domain errors to the stable codes carried in API error
// bodies, and back again on the client side.
package apierr

import (
	"errors"
	"net/http"

	"github.com/nick-dorsch/taskboard/internal/generate"
	"github.com/nick-dorsch/taskboard/internal/service"
	"github.com/nick-dorsch/taskboard/pkg/models"
)

const (
	// CodeInvalidRequest marks a body that could not be bound at all.
	CodeInvalidRequest = "invalid_request"
	CodeInternal       = "internal"
)

type entry struct {
	code   string
	status int
	err    error
}

// Order matters: the first sentinel an error matches wins.
var table = []entry{
	{"task_not_found", http.StatusNotFound, models.ErrTaskNotFound},
	{"invalid_status", http.StatusBadRequest, models.ErrInvalidStatus},
	{"empty_title", http.StatusBadRequest, models.ErrEmptyTitle},
	{"empty_prompt", http.StatusBadRequest, service.ErrEmptyPrompt},
	{"not_configured", http.StatusServiceUnavailable, generate.ErrNotConfigured},
	{"upstream", http.StatusBadGateway, generate.ErrUpstream},
	{"malformed_output", http.StatusBadGateway, generate.ErrMalformedOutput},
	{"invalid_shape", http.StatusBadGateway, generate.ErrInvalidShape},
}

// Classify returns the code and HTTP status for err. Unknown errors are
// internal failures.
func Classify(err error) (code string, status int) {
	for _, e := range table {
		if errors.Is(err, e.err) {
			return e.code, e.status
		}
	}
	return CodeInternal, http.StatusInternalServerError
}

// Lookup returns the sentinel behind code, or nil for codes that have none.
func Lookup(code string) error {
	for _, e := range table {
		if e.code == code {
			return e.err
		}
	}
	return nil
}
