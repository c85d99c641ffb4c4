package datasvc

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatusCode is the sentinel error wrapped by [UnexpectedStatusError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrDecodeFailed is the sentinel error wrapped by [DecodeError].
	ErrDecodeFailed = errors.New("decoding response failed")
	// ErrInvalidTarget is wrapped by errors from URL composition. It is
	// surfaced before any request is sent, distinguishing a bad root or
	// path from a transport failure.
	ErrInvalidTarget = errors.New("invalid target url")
	// ErrFieldMissing is wrapped by [SelfResponse.First] when the self
	// response does not carry the requested field.
	ErrFieldMissing = errors.New("field missing from self response")
	// ErrEmptyResponse is wrapped by [Client.WriteFolder] when the write
	// endpoint echoes an empty metadata sequence.
	ErrEmptyResponse = errors.New("empty response sequence")
)

// UnexpectedStatusError is returned when the HTTP response status code
// falls outside the 2xx class. Body holds the response body read in
// full; the service's error bodies are the diagnostic, so they are
// never truncated.
type UnexpectedStatusError struct {
	URI        string
	StatusCode int
	Body       string
	Err        error
}

func (e *UnexpectedStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%v: %s returned %d", e.Err, e.URI, e.StatusCode)
	}

	return fmt.Sprintf("%v: %s returned %d, body: %s", e.Err, e.URI, e.StatusCode, e.Body)
}

func (e *UnexpectedStatusError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when a 2xx response body does not match the
// expected shape. Body holds the raw response text and Err the
// underlying cause, wrapping [ErrDecodeFailed].
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v, body: %s", e.Err, e.Body)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// UserFolderError is returned by [Client.UserFolder] for every failure
// mode: a failed self call, an invalid configuration, or a missing
// field. Err holds the cause, so callers can still distinguish the
// modes with [errors.Is] when they care.
type UserFolderError struct {
	Err error
}

func (e *UserFolderError) Error() string {
	return fmt.Sprintf("there was an error hitting the self endpoint: %v", e.Err)
}

func (e *UserFolderError) Unwrap() error {
	return e.Err
}
