package pipeline

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a 2xx response whose body is not the expected JSON.
var ErrMalformedResponse = errors.New("malformed response")

// ServerError is a non-2xx response.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string { return fmt.Sprintf("server error: status %d", e.Status) }

// TransportError is a request that never produced a response.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("request %s: %v", e.URL, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }
