package generate

import "errors"

var (
	// ErrNotConfigured is returned when no model credential is available.
	ErrNotConfigured = errors.New("task generation is not configured: set GEMINI_API_KEY")
	// ErrUpstream wraps failures of the model call itself.
	ErrUpstream = errors.New("model request failed")
	// ErrMalformedOutput means the model text was not valid JSON.
	ErrMalformedOutput = errors.New("model returned invalid JSON")
	// ErrInvalidShape means the JSON was valid but not an array.
	ErrInvalidShape = errors.New("invalid response format: expected a JSON array")
)
