package invoke

import "errors"

var (
	// ErrProcessFailed indicates an external collaborator produced no usable output:
	// a non-zero exit, empty output, a timeout, a cancellation, or a transport failure.
	ErrProcessFailed = errors.New("external process failure")
	// ErrMalformedOutput indicates output was received but does not match the expected schema.
	ErrMalformedOutput = errors.New("malformed output")
)
