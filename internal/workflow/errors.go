package workflow

import "errors"

// Sentinel errors for workflow stages. Each wraps the collaborator's
// invoke.ErrProcessFailed or invoke.ErrMalformedOutput cause.
var (
	ErrClassifyFailed = errors.New("classification failed")
	ErrEstimateFailed = errors.New("mass estimation failed")
)
