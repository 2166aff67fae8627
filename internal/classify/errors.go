package classify

import "errors"

// ErrUnknownBackend indicates a classifier backend name with no implementation.
var ErrUnknownBackend = errors.New("unknown classifier backend")
