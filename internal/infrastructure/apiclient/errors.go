package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Errors returned by the API client.
var (
	// ErrUnauthorized is returned for any 401 response, after the
	// unauthorized handler has run.
	ErrUnauthorized = errors.New("apiclient: unauthorized")
	// ErrNotAuthenticated is returned when a request that requires a session
	// is attempted without a token. Nothing is sent.
	ErrNotAuthenticated = errors.New("apiclient: not authenticated")
	// ErrMalformedResponse is returned when a response body does not match
	// the expected schema.
	ErrMalformedResponse = errors.New("apiclient: malformed response")
	// ErrUnsuccessful is returned when the server answers 2xx with success:false.
	ErrUnsuccessful = errors.New("apiclient: request unsuccessful")
)

// APIError describes a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
	Body       []byte
}

// Error implements error
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap maps 401 onto ErrUnauthorized so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// UnsuccessfulError carries the server message of a success:false envelope.
type UnsuccessfulError struct {
	Message string
}

func (e *UnsuccessfulError) Error() string {
	if e.Message == "" {
		return ErrUnsuccessful.Error()
	}
	return ErrUnsuccessful.Error() + ": " + e.Message
}

func (e *UnsuccessfulError) Unwrap() error { return ErrUnsuccessful }

// Message extracts the message to show a user for err, or fallback when err
// carries none. Server-supplied messages win.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var unsuccessful *UnsuccessfulError
	if errors.As(err, &unsuccessful) && unsuccessful.Message != "" {
		return unsuccessful.Message
	}
	return fallback
}
